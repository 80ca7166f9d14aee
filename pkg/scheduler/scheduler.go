// Package scheduler builds the clinic's daily staff grid from the weekly
// template, the ideal-day overrides and the day's exceptions.
package scheduler

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/arnavshah/clinic-scheduler-api/pkg/approval"
	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
	"github.com/arnavshah/clinic-scheduler-api/pkg/exceptions"
	"github.com/arnavshah/clinic-scheduler-api/pkg/logger"
	"github.com/arnavshah/clinic-scheduler-api/pkg/lunch"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/roster"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
	"github.com/arnavshah/clinic-scheduler-api/pkg/training"
)

// Input is one day's computation request. AsOf is "today" for every
// date-relative rule.
type Input struct {
	Exceptions   []models.Exception   `json:"exceptions"`
	Data         models.EngineData    `json:"data"`
	ApprovedSubs []models.ApprovedSub `json:"approved_subs,omitempty"`
	DayOfWeek    time.Weekday         `json:"day_of_week"`
	AsOf         time.Time            `json:"as_of"`
}

// Result is the generated day.
type Result struct {
	Schedule               []models.StaffSchedule         `json:"schedule"`
	PendingApprovals       []models.ApprovalRequest       `json:"pending_approvals"`
	LunchCoverageErrors    []models.LunchCoverageError    `json:"lunch_coverage_errors"`
	TrainingSessionUpdates []models.TrainingSessionUpdate `json:"training_session_updates"`
	Cancellations          []models.CancelDecision        `json:"cancellations"`
	UnfilledGaps           []models.CoverageGap           `json:"unfilled_gaps"`
	// SkipConsumed lists clients whose one-time cancellation skip was used.
	SkipConsumed []string           `json:"skip_consumed,omitempty"`
	Lunches      []lunch.StaffLunch `json:"lunches"`
	LunchGroups  []lunch.Group      `json:"lunch_groups"`
	Stats        Stats              `json:"stats"`
}

// Finalizable reports whether nothing blocks publishing the schedule.
func (r Result) Finalizable() bool {
	return len(r.LunchCoverageErrors) == 0 && !approval.Blocking(r.PendingApprovals)
}

// Scheduler generates daily schedules. It holds no per-day state, so one
// instance can serve concurrent calls.
type Scheduler struct {
	policy config.Policy
	log    logger.Logger
	lunch  *lunch.Solver
}

// NewScheduler creates a new scheduler instance
func NewScheduler(policy config.Policy, log logger.Logger) *Scheduler {
	log = logger.OrNop(log)
	return &Scheduler{policy: policy, log: log, lunch: lunch.NewSolver(policy, log)}
}

// Policy returns the rules the scheduler runs with.
func (s *Scheduler) Policy() config.Policy { return s.policy }

// GenerateDailySchedule runs the whole pipeline: repair, approvals,
// cancellations, lunch and grid assembly.
func (s *Scheduler) GenerateDailySchedule(in Input) Result {
	d := newDay(in, s.policy)

	rep := s.repair(d, in.ApprovedSubs)
	reqs := append(rep.approvals, allDayApprovals(d, rep.repairs)...)
	canc := s.cancel(d, rep.gaps)

	assignments, stranded := d.lateArrivals(d.lunchRoster(rep.repairs, canc), canc)
	plan := s.lunch.Solve(lunch.Input{
		Day:             in.DayOfWeek,
		Staff:           in.Data.Staff,
		Clients:         in.Data.Clients,
		Assignments:     assignments,
		Overlay:         d.lunchOverlay(canc),
		Schools:         in.Data.Schools,
		ClientLocations: in.Data.ClientLocations,
	})
	plan.Errors = append(plan.Errors, stranded...)

	res := Result{
		Schedule:               buildGrid(d, rep, canc, plan),
		PendingApprovals:       dedupe(reqs),
		LunchCoverageErrors:    plan.Errors,
		TrainingSessionUpdates: training.Propagate(in.Data.TrainingSessions, d.overlay, in.AsOf),
		Cancellations:          canc.decisions,
		UnfilledGaps:           canc.unfilled,
		SkipConsumed:           canc.consumed,
		Lunches:                plan.Lunches,
		LunchGroups:            plan.Groups,
	}
	res.Stats = computeStats(d, rep, canc, plan)
	s.log.Infof("schedule %s: %d staff, %d repaired, %d canceled, %d unfilled, %d lunch error(s), %d approval(s)",
		in.DayOfWeek, len(res.Schedule), len(rep.repairs), len(canc.decisions), len(canc.unfilled),
		len(res.LunchCoverageErrors), len(res.PendingApprovals))
	return res
}

// day is the resolved, read-only view of one computation.
type day struct {
	in       Input
	policy   config.Policy
	overlay  exceptions.Overlay
	resolved []roster.Assignment
	index    roster.Index
	dir      directory
	// staff holds the active staff, by name.
	staff []models.Staff
}

func newDay(in Input, policy config.Policy) *day {
	lunchWindow := timeutil.Window{Start: policy.LunchWindowStart, End: policy.LunchWindowEnd}
	resolved := roster.Resolve(in.Data.Template, in.Data.IdealDay, in.DayOfWeek)
	d := &day{
		in:       in,
		policy:   policy,
		overlay:  exceptions.Build(in.Exceptions, lunchWindow),
		resolved: resolved,
		index:    roster.NewIndex(resolved),
		dir:      newDirectory(in.Data, policy),
	}
	for _, s := range in.Data.Staff {
		if s.Active {
			d.staff = append(d.staff, s)
		}
	}
	slices.SortFunc(d.staff, func(a, b models.Staff) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return d
}

// staffAway reports whether the staff member cannot work during w: out,
// inactive or unknown.
func (d *day) staffAway(staffID string, w timeutil.Window) bool {
	s, ok := d.dir.staff[staffID]
	if !ok || !s.Active {
		return true
	}
	return d.overlay.StaffOutDuring(staffID, w)
}

// clientPresent reports whether the client attends today. Unknown clients
// are assumed present.
func (d *day) clientPresent(clientID string) bool {
	if d.overlay.ClientUnavailable(clientID) {
		return false
	}
	c, ok := d.dir.clients[clientID]
	return !ok || c.Active
}

// clientLocation resolves where a client is served in a block.
func (d *day) clientLocation(clientID string, b models.Block, seg *roster.Segment) string {
	if id, ok := d.overlay.LocationOverrides[clientID]; ok {
		return id
	}
	if seg != nil && seg.LocationID != nil {
		return *seg.LocationID
	}
	var fallback string
	for _, cl := range d.in.Data.ClientLocations {
		if cl.ClientID != clientID {
			continue
		}
		if cl.Block == b {
			return cl.LocationID
		}
		if cl.Block == "" && fallback == "" {
			fallback = cl.LocationID
		}
	}
	if fallback != "" {
		return fallback
	}
	return d.policy.DefaultLocationID
}

// lunchRoster is the post-repair, post-cancellation roster the lunch solver
// plans against.
func (d *day) lunchRoster(repairs []repairAssignment, canc cancelOutcome) []roster.Assignment {
	var out []roster.Assignment
	for _, a := range d.resolved {
		if d.staffAway(a.StaffID, a.Window()) {
			continue
		}
		block := a.Block
		kept, ok := a.Without(func(clientID string) bool { return canc.canceled(clientID, block) })
		if ok {
			out = append(out, kept)
		}
	}
	for _, r := range repairs {
		out = append(out, roster.Assignment{
			Weekday:    d.in.DayOfWeek,
			Block:      r.block,
			StaffID:    r.staffID,
			ClientID:   models.StringPtr(r.clientID),
			LocationID: models.StringPtr(r.locationID),
			Start:      r.window.Start,
			End:        r.window.End,
			Source:     roster.SourceTemplate,
		})
	}
	return out
}

// lateArrivals gives every client whose morning was canceled until 11:30 to
// their afternoon staff from arrival until the afternoon session starts. A
// client still present after 11:30 with nobody to take them is reported as a
// lunch coverage error.
func (d *day) lateArrivals(out []roster.Assignment, canc cancelOutcome) ([]roster.Assignment, []models.LunchCoverageError) {
	ids := slices.Sorted(maps.Keys(canc.byClient))
	arrival := timeutil.Slot1130.Start()
	var stranded []models.LunchCoverageError
	for _, id := range ids {
		if canc.byClient[id].timing != models.TimingUntil1130 || !d.clientPresent(id) {
			continue
		}
		owner, seg, ok := afternoonOwner(out, id)
		if !ok {
			if d.attendsAfter(id, arrival) {
				stranded = append(stranded, models.LunchCoverageError{
					ClientID:   id,
					ClientName: d.dir.clientName(id),
					Slot:       timeutil.FormatClock(arrival),
					Reason:     lunch.ReasonNoCoverage,
				})
			}
			continue
		}
		if seg.Start <= arrival {
			continue
		}
		late := roster.Segment{
			RowID:      "late-" + id,
			ClientID:   models.StringPtr(id),
			LocationID: models.StringPtr(d.clientLocation(id, models.BlockPM, &seg)),
			Start:      arrival,
			End:        seg.Start,
		}
		out = withMorningSegment(out, owner, late, d.in.DayOfWeek)
	}
	return out, stranded
}

// afternoonOwner finds the staff member serving the client in the afternoon
// and the client's first afternoon segment.
func afternoonOwner(assignments []roster.Assignment, clientID string) (string, roster.Segment, bool) {
	for _, a := range assignments {
		if a.Block != models.BlockPM {
			continue
		}
		for _, seg := range a.Parts() {
			if models.StringValue(seg.ClientID) == clientID {
				return a.StaffID, seg, true
			}
		}
	}
	return "", roster.Segment{}, false
}

// attendsAfter reports whether any resolved morning session of the client
// runs past minute.
func (d *day) attendsAfter(clientID string, minute int) bool {
	for _, a := range d.index.Client(clientID, models.BlockAM) {
		if w, ok := a.ClientWindow(clientID); ok && w.End > minute {
			return true
		}
	}
	return false
}

// withMorningSegment appends seg to the staff member's morning, creating the
// morning when they have none.
func withMorningSegment(assignments []roster.Assignment, staffID string, seg roster.Segment, weekday time.Weekday) []roster.Assignment {
	for i, a := range assignments {
		if a.StaffID != staffID || a.Block != models.BlockAM {
			continue
		}
		merged := a.Clone()
		merged.Segments = append(slices.Clone(a.Parts()), seg)
		if merged.ClientID == nil {
			merged.ClientID = seg.ClientID
			merged.LocationID = seg.LocationID
		}
		merged.End = max(merged.End, seg.End)
		assignments[i] = merged
		return assignments
	}
	return append(assignments, roster.Assignment{
		Weekday:    weekday,
		Block:      models.BlockAM,
		StaffID:    staffID,
		ClientID:   seg.ClientID,
		LocationID: seg.LocationID,
		Start:      seg.Start,
		End:        seg.End,
		Source:     roster.SourceTemplate,
	})
}

// lunchOverlay adds clients sent home before lunch by a cancellation.
func (d *day) lunchOverlay(canc cancelOutcome) exceptions.Overlay {
	o := d.overlay.Clone()
	for id, c := range canc.byClient {
		if c.timing == models.TimingAllDay || c.timing == models.TimingAt1130 {
			o.LunchUnavailableClients[id] = true
		}
	}
	return o
}

func dedupe(reqs []models.ApprovalRequest) []models.ApprovalRequest {
	seen := make(map[string]bool, len(reqs))
	out := make([]models.ApprovalRequest, 0, len(reqs))
	for _, r := range reqs {
		if !seen[r.ID] {
			seen[r.ID] = true
			out = append(out, r)
		}
	}
	return out
}

// directory resolves ids to records, falling back to safe defaults.
type directory struct {
	staff     map[string]models.Staff
	clients   map[string]models.Client
	locations map[string]models.Location
}

func newDirectory(data models.EngineData, policy config.Policy) directory {
	d := directory{
		staff:     make(map[string]models.Staff, len(data.Staff)),
		clients:   make(map[string]models.Client, len(data.Clients)),
		locations: make(map[string]models.Location, len(data.Locations)),
	}
	for _, s := range data.Staff {
		d.staff[s.ID] = s
	}
	for _, c := range data.Clients {
		d.clients[c.ID] = c
	}
	for _, l := range data.Locations {
		d.locations[l.ID] = l
	}
	if _, ok := d.locations[policy.DefaultLocationID]; !ok {
		d.locations[policy.DefaultLocationID] = models.Location{ID: policy.DefaultLocationID, Name: policy.DefaultLocationID, Kind: models.LocationClinic}
	}
	return d
}

func (d directory) staffName(id string) string {
	if s, ok := d.staff[id]; ok && s.Name != "" {
		return s.Name
	}
	return "Unknown"
}

func (d directory) clientName(id string) string {
	if c, ok := d.clients[id]; ok && c.Name != "" {
		return c.Name
	}
	return "Unknown"
}

func (d directory) locationName(id string) string {
	if l, ok := d.locations[id]; ok && l.Name != "" {
		return l.Name
	}
	return id
}
