// Package lunch assigns every working staff member a lunch time and finds a
// legal covering staff member for each client whose own staff is eating.
//
// The solver runs as a fixed pipeline of phases. Each phase receives the
// previous phase's state, copies it, and returns the copy, so phases can be
// exercised on their own.
package lunch

import (
	"cmp"
	"slices"
	"time"

	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
	"github.com/arnavshah/clinic-scheduler-api/pkg/eligibility"
	"github.com/arnavshah/clinic-scheduler-api/pkg/exceptions"
	"github.com/arnavshah/clinic-scheduler-api/pkg/logger"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/roster"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

// lunchSpan is the part of the day a staff member must be present for to
// take part in lunch planning.
var lunchSpan = timeutil.Window{Start: 11 * 60, End: 13 * 60}

// Input is everything one lunch computation reads.
type Input struct {
	Day             time.Weekday
	Staff           []models.Staff
	Clients         []models.Client
	Assignments     []roster.Assignment
	Overlay         exceptions.Overlay
	Schools         []models.School
	ClientLocations []models.ClientLocation
}

// Solver plans lunches and lunch coverage.
type Solver struct {
	policy config.Policy
	log    logger.Logger
}

// NewSolver returns a Solver using the given policy.
func NewSolver(policy config.Policy, log logger.Logger) *Solver {
	return &Solver{policy: policy, log: logger.OrNop(log)}
}

type phase struct {
	name string
	run  func(*problem, state) state
}

var phases = []phase{
	{"schools", assignSchools},
	{"fixed", assignFixed},
	{"owners", balanceOwners},
	{"helpers", balanceHelpers},
	{"match", matchCoverage},
}

// Solve runs every phase and returns the plan.
func (s *Solver) Solve(in Input) Plan {
	p := newProblem(in, s.policy)
	st := newState()
	for _, ph := range phases {
		st = ph.run(p, st)
		s.log.Debugw("lunch phase done", map[string]any{
			"phase":   ph.name,
			"lunches": len(st.lunch),
			"groups":  len(st.groups),
			"errors":  len(st.errors),
		})
	}
	plan := p.plan(st)
	if len(plan.Errors) > 0 {
		s.log.Warnf("lunch: %d client(s) without legal coverage on %s", len(plan.Errors), in.Day)
	}
	return plan
}

type staffKind int

const (
	kindFlexible staffKind = iota
	kindNoLunch
	kindMandatory
	kindLead
	kindSchool
)

type staffInfo struct {
	staff    models.Staff
	kind     staffKind
	hasAM    bool
	pmStart  int
	location string
	school   string
	// own lists the staff member's AM clients that stay through lunch.
	own []string
}

type need struct {
	client   models.Client
	ownerID  string
	location string
	split    bool
	school   string
}

type schoolSite struct {
	school        models.School
	first, second timeutil.Window
	staff         []string
	clients       []string
}

// problem is the read-only view shared by every phase.
type problem struct {
	policy    config.Policy
	staff     []*staffInfo
	staffByID map[string]*staffInfo
	rank      map[string]int
	clients   map[string]models.Client
	needs     map[string]need
	generic   []string
	splits    []string
	sites     []*schoolSite
	// coverers is the eligibility matrix: for each client needing coverage,
	// the present staff allowed to supervise it, ignoring lunch timing.
	coverers map[string][]string
}

func newProblem(in Input, policy config.Policy) *problem {
	p := &problem{
		policy:    policy,
		staffByID: make(map[string]*staffInfo),
		rank:      make(map[string]int),
		clients:   make(map[string]models.Client),
		needs:     make(map[string]need),
		coverers:  make(map[string][]string),
	}
	for _, c := range in.Clients {
		p.clients[c.ID] = c
	}
	idx := roster.NewIndex(in.Assignments)
	loc := locator{in: in, policy: policy, idx: idx}

	sites := make(map[string]*schoolSite)
	for _, sc := range in.Schools {
		if !sc.HasLunchWindow() {
			continue
		}
		w := timeutil.Window{Start: *sc.LunchStart, End: *sc.LunchEnd}
		first, second := w.Bisect()
		sites[sc.LocationID] = &schoolSite{school: sc, first: first, second: second}
	}

	staff := slices.Clone(in.Staff)
	slices.SortFunc(staff, func(a, b models.Staff) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	for _, s := range staff {
		if !s.Active || in.Overlay.StaffOutDuring(s.ID, lunchSpan) {
			continue
		}
		info := &staffInfo{staff: s, location: policy.DefaultLocationID}
		p.rank[s.ID] = len(p.staff)
		p.staff = append(p.staff, info)
		p.staffByID[s.ID] = info

		if a, ok := idx.Staff(s.ID, models.BlockAM); ok {
			info.location = loc.staffLocation(a)
			p.collectNeeds(in, loc, info, a, sites)
		}
		if a, ok := idx.Staff(s.ID, models.BlockPM); ok {
			for _, seg := range a.Parts() {
				if p.available(in, seg.ClientID) && (info.pmStart == 0 || seg.Start < info.pmStart) {
					info.pmStart = seg.Start
				}
			}
		}
		p.classify(info, sites)
	}

	for _, site := range sites {
		if len(site.staff) > 0 || len(site.clients) > 0 {
			p.sites = append(p.sites, site)
		}
	}
	slices.SortFunc(p.sites, func(a, b *schoolSite) int { return cmp.Compare(a.school.LocationID, b.school.LocationID) })

	byName := func(a, b string) int {
		if c := cmp.Compare(p.needs[a].client.Name, p.needs[b].client.Name); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	}
	slices.SortFunc(p.generic, byName)
	slices.SortFunc(p.splits, byName)

	for id, n := range p.needs {
		for _, x := range p.staff {
			if x.location == n.location && eligibility.CanCoverLunch(n.client, x.staff, n.ownerID) {
				p.coverers[id] = append(p.coverers[id], x.staff.ID)
			}
		}
	}
	return p
}

func (p *problem) available(in Input, clientID *string) bool {
	if clientID == nil {
		return false
	}
	c, ok := p.clients[*clientID]
	return ok && c.Active && !in.Overlay.ClientUnavailable(c.ID)
}

// collectNeeds records the staff member's AM clients that stay through lunch.
func (p *problem) collectNeeds(in Input, loc locator, info *staffInfo, a roster.Assignment, sites map[string]*schoolSite) {
	for _, seg := range a.Parts() {
		if !p.available(in, seg.ClientID) {
			continue
		}
		info.hasAM = true
		cid := *seg.ClientID
		if _, seen := p.needs[cid]; seen || in.Overlay.LunchUnavailableClients[cid] {
			continue
		}
		w, _ := a.ClientWindow(cid)
		if w.End < p.policy.CoverageThreshold {
			continue
		}
		n := need{client: p.clients[cid], ownerID: info.staff.ID, location: loc.clientLocation(cid, a, seg)}

		if pmLoc, ok := loc.pmLocation(cid); ok && pmLoc != n.location {
			day, _ := n.client.DayFor(in.Day)
			if models.IntValue(day.PMStart, p.policy.DefaultPMStart) <= p.policy.SplitPresenceCutoff {
				n.split = true
				n.location = pmLoc
				p.needs[cid] = n
				p.splits = append(p.splits, cid)
			}
			continue
		}
		if site, ok := sites[n.location]; ok {
			n.school = n.location
			site.clients = append(site.clients, cid)
		} else {
			p.generic = append(p.generic, cid)
		}
		p.needs[cid] = n
		info.own = append(info.own, cid)
	}
}

func (p *problem) classify(info *staffInfo, sites map[string]*schoolSite) {
	s := info.staff
	switch {
	case sites[info.location] != nil:
		info.kind = kindSchool
		info.school = info.location
		sites[info.location].staff = append(sites[info.location].staff, s.ID)
	case s.SkipsLunch():
		info.kind = kindNoLunch
	case info.pmStart > 0 && info.pmStart <= p.policy.MandatoryLateLunchCutoff && !s.NoLateLunch:
		info.kind = kindMandatory
	case s.Role.IsLead():
		info.kind = kindLead
	default:
		info.kind = kindFlexible
	}
}

// blocked reports whether the staff member may not eat in slot.
func (info *staffInfo) blocked(slot timeutil.LunchSlot) bool {
	switch slot {
	case timeutil.Slot1100:
		return info.hasAM
	case timeutil.Slot1230:
		return info.staff.NoLateLunch
	}
	return false
}

// preference is the soft slot order for staff placed by rule.
func (info *staffInfo) preference() []timeutil.LunchSlot {
	if info.hasAM {
		return []timeutil.LunchSlot{timeutil.Slot1130, timeutil.Slot1200, timeutil.Slot1230}
	}
	return []timeutil.LunchSlot{timeutil.Slot1200, timeutil.Slot1130, timeutil.Slot1100}
}

// tieBreak is the flexible slot chosen when balancing finds no difference.
func (info *staffInfo) tieBreak() timeutil.LunchSlot {
	if info.hasAM {
		return timeutil.Slot1130
	}
	return timeutil.Slot1200
}

// locator resolves where clients and staff are during lunch.
type locator struct {
	in     Input
	policy config.Policy
	idx    roster.Index
}

func (l locator) clientLocation(clientID string, a roster.Assignment, seg roster.Segment) string {
	if id, ok := l.in.Overlay.LocationOverrides[clientID]; ok {
		return id
	}
	if seg.LocationID != nil {
		return *seg.LocationID
	}
	if a.LocationID != nil {
		return *a.LocationID
	}
	if id, ok := l.registered(clientID, models.BlockAM); ok {
		return id
	}
	return l.policy.DefaultLocationID
}

// pmLocation returns where the client is served in the afternoon, when known.
func (l locator) pmLocation(clientID string) (string, bool) {
	if id, ok := l.in.Overlay.LocationOverrides[clientID]; ok {
		return id, true
	}
	for _, a := range l.idx.Client(clientID, models.BlockPM) {
		for _, seg := range a.Parts() {
			if models.StringValue(seg.ClientID) != clientID {
				continue
			}
			if seg.LocationID != nil {
				return *seg.LocationID, true
			}
			if a.LocationID != nil {
				return *a.LocationID, true
			}
		}
	}
	return l.registered(clientID, models.BlockPM)
}

func (l locator) registered(clientID string, b models.Block) (string, bool) {
	for _, cl := range l.in.ClientLocations {
		if cl.ClientID == clientID && cl.Block == b {
			return cl.LocationID, true
		}
	}
	return "", false
}

func (l locator) staffLocation(a roster.Assignment) string {
	for _, seg := range a.Parts() {
		if seg.ClientID != nil {
			return l.clientLocation(*seg.ClientID, a, seg)
		}
	}
	if a.LocationID != nil {
		return *a.LocationID
	}
	return l.policy.DefaultLocationID
}
