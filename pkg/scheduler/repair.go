package scheduler

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/arnavshah/clinic-scheduler-api/pkg/approval"
	"github.com/arnavshah/clinic-scheduler-api/pkg/eligibility"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/roster"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

// need is one client session without a working staff member.
type need struct {
	clientID   string
	block      models.Block
	window     timeutil.Window
	locationID string
	// outStaffID is the template staff member who is out, or "" when the
	// client came in on a day they are not scheduled.
	outStaffID string
}

type repairAssignment struct {
	need
	staffID   string
	approvals []models.ApprovalRequest
}

type repairOutcome struct {
	repairs   []repairAssignment
	gaps      []models.CoverageGap
	approvals []models.ApprovalRequest
	// needs keeps every need by client and block, repaired or not.
	needs map[sessionKey]need
}

type sessionKey struct {
	clientID string
	block    models.Block
}

func (o repairOutcome) repairFor(clientID string, b models.Block) (repairAssignment, bool) {
	for _, r := range o.repairs {
		if r.clientID == clientID && r.block == b {
			return r, true
		}
	}
	return repairAssignment{}, false
}

// repair offers every uncovered session to a free, eligible staff member.
// Candidates rank focus, trained, allowed float, then allowed lead; ties go
// to the first by name. A session nobody can take becomes a gap carrying
// the reasons each candidate was turned away.
func (s *Scheduler) repair(d *day, approved []models.ApprovedSub) repairOutcome {
	out := repairOutcome{needs: make(map[sessionKey]need)}
	needs := d.coverageNeeds()
	used := make(map[models.Block]map[string]bool)

	for _, n := range needs {
		out.needs[sessionKey{n.clientID, n.block}] = n
		c, ok := d.dir.clients[n.clientID]
		if !ok {
			c = models.Client{ID: n.clientID, Name: "Unknown"}
		}

		var best *models.Staff
		bestRank := eligibility.RankNone
		outCount, busyCount, excludedCount, untrainedCount := 0, 0, 0, 0
		for i := range d.staff {
			st := d.staff[i]
			if st.ID == n.outStaffID {
				continue
			}
			if d.staffAway(st.ID, n.window) {
				outCount++
				continue
			}
			if used[n.block][st.ID] || !d.free(st, n.block) {
				busyCount++
				continue
			}
			r := eligibility.SubRank(c, st)
			if r == eligibility.RankNone {
				if eligibility.IsExcluded(c, st.ID) {
					excludedCount++
				} else {
					untrainedCount++
				}
				continue
			}
			if r < bestRank {
				best, bestRank = &d.staff[i], r
			}
		}

		if best == nil {
			var reasons []string
			if outCount > 0 {
				reasons = append(reasons, fmt.Sprintf("%d staff were out", outCount))
			}
			if busyCount > 0 {
				reasons = append(reasons, fmt.Sprintf("%d staff were already assigned", busyCount))
			}
			if excludedCount > 0 {
				reasons = append(reasons, fmt.Sprintf("%d staff were excluded for this client", excludedCount))
			}
			if untrainedCount > 0 {
				reasons = append(reasons, fmt.Sprintf("%d staff were not trained on this client", untrainedCount))
			}
			if len(reasons) == 0 {
				reasons = append(reasons, "no staff available")
			}
			out.gaps = append(out.gaps, models.CoverageGap{
				ClientID: n.clientID,
				Block:    n.block,
				StaffID:  n.outStaffID,
				Reasons:  reasons,
			})
			continue
		}

		rep := repairAssignment{need: n, staffID: best.ID}
		if chk := approval.CheckSubApproval(c, best.ID, approved); chk.NeedsApproval {
			rep.approvals = append(rep.approvals, approval.NewRequest(chk, n.clientID, n.block, best.ID))
		}
		if chk := approval.CheckLeadApproval(*best, d.availableLeads(n, used), s.policy); chk.NeedsApproval {
			rep.approvals = append(rep.approvals, approval.NewRequest(chk, n.clientID, n.block, best.ID))
		}
		if used[n.block] == nil {
			used[n.block] = make(map[string]bool)
		}
		used[n.block][best.ID] = true
		out.repairs = append(out.repairs, rep)
		out.approvals = append(out.approvals, rep.approvals...)
		s.log.Debugw("repaired session", map[string]any{
			"client": n.clientID,
			"block":  n.block,
			"staff":  best.ID,
			"rank":   bestRank,
		})
	}
	return out
}

// coverageNeeds lists sessions whose staff is away, plus sessions for
// clients attending on a day they have no template row. AM comes first,
// then clients by name.
func (d *day) coverageNeeds() []need {
	var out []need
	for _, a := range d.resolved {
		if !d.staffAway(a.StaffID, a.Window()) {
			continue
		}
		for _, seg := range a.Parts() {
			if seg.ClientID == nil || !d.clientPresent(*seg.ClientID) {
				continue
			}
			cid := *seg.ClientID
			if slices.ContainsFunc(out, func(n need) bool { return n.clientID == cid && n.block == a.Block }) {
				continue
			}
			w, _ := a.ClientWindow(cid)
			out = append(out, need{
				clientID:   cid,
				block:      a.Block,
				window:     w,
				locationID: d.clientLocation(cid, a.Block, &seg),
				outStaffID: a.StaffID,
			})
		}
	}

	extra := make([]string, 0, len(d.overlay.ClientsIn))
	for id := range d.overlay.ClientsIn {
		extra = append(extra, id)
	}
	slices.Sort(extra)
	for _, id := range extra {
		if !d.clientPresent(id) || len(d.index.Client(id, models.BlockAM))+len(d.index.Client(id, models.BlockPM)) > 0 {
			continue
		}
		for b, w := range d.attendance(id) {
			out = append(out, need{clientID: id, block: b, window: w, locationID: d.clientLocation(id, b, nil)})
		}
	}

	slices.SortStableFunc(out, func(a, b need) int {
		if c := cmp.Compare(a.block, b.block); c != 0 {
			return c
		}
		if c := cmp.Compare(d.dir.clientName(a.clientID), d.dir.clientName(b.clientID)); c != 0 {
			return c
		}
		return cmp.Compare(a.clientID, b.clientID)
	})
	return out
}

// attendance returns the blocks a client attends from their weekly hours,
// assuming a full day when none are recorded.
func (d *day) attendance(clientID string) map[models.Block]timeutil.Window {
	am := roster.DefaultWindow(models.BlockAM)
	pm := roster.DefaultWindow(models.BlockPM)
	c := d.dir.clients[clientID]
	ds, ok := c.DayFor(d.in.DayOfWeek)
	if !ok {
		return map[models.Block]timeutil.Window{models.BlockAM: am, models.BlockPM: pm}
	}
	am = timeutil.Window{Start: models.IntValue(ds.Start, am.Start), End: models.IntValue(ds.AMEnd, am.End)}
	pm = timeutil.Window{Start: models.IntValue(ds.PMStart, pm.Start), End: models.IntValue(ds.End, pm.End)}
	out := make(map[models.Block]timeutil.Window, 2)
	if ds.Start == nil || *ds.Start < pm.Start {
		out[models.BlockAM] = am
	}
	if ds.End == nil || *ds.End > am.End {
		out[models.BlockPM] = pm
	}
	return out
}

// free reports whether the staff member has nothing to do in the block:
// no prep, and no assignment with a client who is present.
func (d *day) free(st models.Staff, b models.Block) bool {
	if prep, ok := st.HasPrepOn(d.in.DayOfWeek); ok && prep == b {
		return false
	}
	a, ok := d.index.Staff(st.ID, b)
	if !ok {
		return true
	}
	for _, id := range a.ClientIDs() {
		if d.clientPresent(id) {
			return false
		}
	}
	return true
}

// availableLeads counts leads who could still take a session in n's block.
func (d *day) availableLeads(n need, used map[models.Block]map[string]bool) int {
	count := 0
	for _, st := range d.staff {
		if st.Role.IsLead() && !d.staffAway(st.ID, n.window) && !used[n.block][st.ID] && d.free(st, n.block) {
			count++
		}
	}
	return count
}

// allDayApprovals flags staff who have the same client AM and PM, from the
// template or through repair.
func allDayApprovals(d *day, repairs []repairAssignment) []models.ApprovalRequest {
	staffFor := make(map[sessionKey][]string)
	add := func(clientID string, b models.Block, staffID string) {
		k := sessionKey{clientID, b}
		if !slices.Contains(staffFor[k], staffID) {
			staffFor[k] = append(staffFor[k], staffID)
		}
	}
	for _, a := range d.resolved {
		if d.staffAway(a.StaffID, a.Window()) {
			continue
		}
		for _, id := range a.ClientIDs() {
			add(id, a.Block, a.StaffID)
		}
	}
	for _, r := range repairs {
		add(r.clientID, r.block, r.staffID)
	}

	var clients []string
	for k := range staffFor {
		if k.block == models.BlockAM && d.clientPresent(k.clientID) {
			clients = append(clients, k.clientID)
		}
	}
	slices.Sort(clients)

	var out []models.ApprovalRequest
	for _, id := range clients {
		for _, am := range staffFor[sessionKey{id, models.BlockAM}] {
			for _, pm := range staffFor[sessionKey{id, models.BlockPM}] {
				if chk := approval.CheckAllDayStaffingApproval(am, pm); chk.NeedsApproval {
					out = append(out, approval.NewRequest(chk, id, models.BlockAllDay, am))
				}
			}
		}
	}
	return out
}
