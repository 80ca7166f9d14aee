package scheduler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arnavshah/clinic-scheduler-api/pkg/lunch"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/roster"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

// Grid values with a fixed meaning.
const (
	ValueLunch = "LUNCH"
	ValueOut   = "OUT"
	ValuePrep  = "BCBA PREP"
)

// blockRule is how a grid column is named and what it says when empty.
type blockRule struct {
	name string
	idle string
}

var blockRules = map[timeutil.DayBlock]blockRule{
	timeutil.BlockEarly:       {name: "early", idle: "Before sessions"},
	timeutil.BlockMorning:     {name: "morning", idle: "No AM assignment"},
	timeutil.BlockLunchFirst:  {name: "lunch_1", idle: "No lunch duty"},
	timeutil.BlockLunchSecond: {name: "lunch_2", idle: "No lunch duty"},
	timeutil.BlockAfternoon:   {name: "afternoon", idle: "No PM assignment"},
	timeutil.BlockLate:        {name: "late", idle: "After sessions"},
}

// priority settles overlapping activities; the highest wins.
type priority int

const (
	prioTemplate priority = iota
	prioClientOut
	prioGroup
	prioRepair
	prioPrep
	prioLunch
	prioOut
	prioNeedsCoverage
)

// activity is one thing a staff member does over a window of the day.
type activity struct {
	window   timeutil.Window
	value    string
	source   models.SlotSource
	reason   string
	clientID *string
	location string
	prio     priority
}

type gridBuilder struct {
	d    *day
	rep  repairOutcome
	canc cancelOutcome
	plan lunch.Plan
}

func buildGrid(d *day, rep repairOutcome, canc cancelOutcome, plan lunch.Plan) []models.StaffSchedule {
	g := gridBuilder{d: d, rep: rep, canc: canc, plan: plan}
	out := make([]models.StaffSchedule, 0, len(d.staff))
	for _, st := range d.staff {
		acts := g.activities(st)
		row := models.StaffSchedule{StaffID: st.ID, StaffName: st.Name, Slots: make([]models.Slot, 0, len(timeutil.DayBlocks))}
		for _, b := range timeutil.DayBlocks {
			row.Slots = append(row.Slots, assemble(b, acts))
		}
		out = append(out, row)
	}
	return out
}

func (g gridBuilder) activities(st models.Staff) []activity {
	d := g.d
	var acts []activity
	for _, b := range []models.Block{models.BlockAM, models.BlockPM} {
		a, ok := d.index.Staff(st.ID, b)
		if !ok {
			continue
		}
		acts = append(acts, g.assignment(a)...)
	}

	for _, w := range d.overlay.OutStaff[st.ID] {
		acts = append(acts, activity{window: w, value: ValueOut, source: models.SourceOffSchedule, reason: "Staff out", prio: prioOut})
	}

	for _, r := range g.rep.repairs {
		if r.staffID != st.ID {
			continue
		}
		reason := "Extra session"
		if r.outStaffID != "" {
			reason = "Covering for " + d.dir.staffName(r.outStaffID)
		}
		for _, req := range r.approvals {
			reason += fmt.Sprintf("; needs %s approval", req.Type)
		}
		acts = append(acts, activity{
			window:   r.window,
			value:    d.dir.clientName(r.clientID),
			source:   models.SourceRepair,
			reason:   reason,
			clientID: models.StringPtr(r.clientID),
			location: d.dir.locationName(r.locationID),
			prio:     prioRepair,
		})
	}

	if b, ok := st.HasPrepOn(d.in.DayOfWeek); ok {
		acts = append(acts, activity{window: roster.DefaultWindow(b), value: ValuePrep, source: models.SourceTemplate, reason: "Protected BCBA prep", prio: prioPrep})
	}

	if l, ok := g.plan.LunchFor(st.ID); ok {
		acts = append(acts, activity{window: l.Window, value: ValueLunch, source: models.SourceTemplate, reason: "Lunch", prio: prioLunch})
	}

	for _, grp := range g.plan.GroupsFor(st.ID) {
		var names, owners []string
		for _, m := range grp.Members {
			names = append(names, m.ClientName)
			if !m.Own && !slices.Contains(owners, d.dir.staffName(m.OwnerID)) {
				owners = append(owners, d.dir.staffName(m.OwnerID))
			}
		}
		reason := ""
		if len(owners) > 0 {
			reason = "Lunch coverage for " + strings.Join(owners, ", ")
		}
		acts = append(acts, activity{
			window:   grp.Window,
			value:    strings.Join(names, " + "),
			source:   models.SourceTemplate,
			reason:   reason,
			clientID: models.StringPtr(grp.Members[0].ClientID),
			prio:     prioGroup,
		})
	}
	return acts
}

// assignment renders one template half, applying the day's exceptions and
// cancellations to each of its segments.
func (g gridBuilder) assignment(a roster.Assignment) []activity {
	d := g.d
	away := d.staffAway(a.StaffID, a.Window())
	var acts []activity
	for _, seg := range a.Parts() {
		w := seg.Window()
		if seg.ClientID == nil {
			if !away {
				acts = append(acts, activity{window: w, value: segmentLabel(seg), source: models.SourceTemplate, prio: prioTemplate})
			}
			continue
		}
		cid := *seg.ClientID
		base := activity{
			window:   w,
			value:    d.dir.clientName(cid),
			clientID: models.StringPtr(cid),
			location: d.dir.locationName(d.clientLocation(cid, a.Block, &seg)),
		}
		switch {
		case g.canc.canceled(cid, a.Block):
			base.source = models.SourceCancel
			base.reason = g.canc.byClient[cid].reason
			base.prio = prioClientOut
			if away {
				base.prio = prioNeedsCoverage
			}
		case !d.clientPresent(cid):
			if away {
				continue
			}
			base.source = models.SourceUnfilled
			base.reason = "Client out"
			if r := d.overlay.UnavailableClients[cid]; r != "" {
				base.reason = "Client out: " + r
			}
			base.prio = prioClientOut
		case away:
			base.prio = prioNeedsCoverage
			if r, ok := g.rep.repairFor(cid, a.Block); ok {
				base.value = ValueOut
				base.source = models.SourceOffSchedule
				base.reason = fmt.Sprintf("%s covered by %s", d.dir.clientName(cid), d.dir.staffName(r.staffID))
			} else {
				base.source = models.SourceUnfilled
				base.reason = "Needs coverage"
				for _, gap := range g.canc.unfilled {
					if gap.ClientID == cid && gap.Block == a.Block {
						base.reason += ": " + strings.Join(gap.Reasons, "; ")
					}
				}
			}
		default:
			base.source = models.SourceTemplate
			if a.Source == roster.SourceIdealDay {
				base.reason = "Ideal day"
			}
			base.prio = prioTemplate
			for _, out := range d.overlay.ClientOutWindows[cid] {
				if c, ok := out.Clip(w); ok {
					acts = append(acts, activity{
						window:   c,
						value:    base.value,
						source:   models.SourceUnfilled,
						reason:   "Client out",
						clientID: base.clientID,
						location: base.location,
						prio:     prioClientOut,
					})
				}
			}
		}
		acts = append(acts, base)
	}
	return acts
}

func segmentLabel(seg roster.Segment) string {
	if seg.Label != "" {
		return seg.Label
	}
	return "Support"
}

// piece is a maximal run of one activity inside a block.
type piece struct {
	window timeutil.Window
	act    *activity
}

// assemble clips the activities into one grid column. A column covered by
// a single activity is flat; otherwise it carries ordered segments.
func assemble(b timeutil.DayBlock, acts []activity) models.Slot {
	w := b.Window()
	rule := blockRules[b]
	slot := models.Slot{Block: rule.name, Start: w.Start, End: w.End}

	points := []int{w.Start, w.End}
	for _, a := range acts {
		if c, ok := a.window.Clip(w); ok {
			points = append(points, c.Start, c.End)
		}
	}
	slices.Sort(points)
	points = slices.Compact(points)

	var pieces []piece
	for i := 0; i+1 < len(points); i++ {
		iv := timeutil.Window{Start: points[i], End: points[i+1]}
		var best *activity
		for j := range acts {
			a := &acts[j]
			if a.window.Start <= iv.Start && a.window.End >= iv.End && (best == nil || a.prio > best.prio) {
				best = a
			}
		}
		if n := len(pieces); n > 0 && pieces[n-1].act == best {
			pieces[n-1].window.End = iv.End
			continue
		}
		pieces = append(pieces, piece{window: iv, act: best})
	}

	if len(pieces) == 1 {
		if p := pieces[0]; p.act != nil {
			slot.Value = p.act.value
			slot.Source = p.act.source
			slot.Reason = p.act.reason
			slot.ClientID = p.act.clientID
			slot.Location = p.act.location
			return slot
		}
		slot.Source = models.SourceOffSchedule
		slot.Reason = rule.idle
		return slot
	}

	var values, reasons []string
	slot.Source = models.SourceOffSchedule
	for _, p := range pieces {
		seg := models.SlotSegment{Start: p.window.Start, End: p.window.End, Source: models.SourceOffSchedule}
		if a := p.act; a != nil {
			seg.Value = a.value
			seg.Source = a.source
			seg.ClientID = a.clientID
			seg.Location = a.location
			values = append(values, a.value)
			if a.reason != "" && !slices.Contains(reasons, a.reason) {
				reasons = append(reasons, a.reason)
			}
			if slot.ClientID == nil && a.clientID != nil {
				slot.ClientID = a.clientID
				slot.Location = a.location
			}
			if severity(seg.Source) > severity(slot.Source) {
				slot.Source = seg.Source
			}
		}
		slot.Segments = append(slot.Segments, seg)
	}
	slot.Value = strings.Join(values, " / ")
	slot.Reason = strings.Join(reasons, "; ")
	return slot
}

// severity orders sources for summarizing a split column.
func severity(s models.SlotSource) int {
	switch s {
	case models.SourceUnfilled:
		return 4
	case models.SourceCancel:
		return 3
	case models.SourceRepair:
		return 2
	case models.SourceTemplate:
		return 1
	}
	return 0
}
