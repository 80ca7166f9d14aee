package lunch

import (
	"cmp"
	"maps"
	"slices"

	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

type groupKey struct {
	window  timeutil.Window
	staffID string
}

// state is the snapshot passed between phases.
type state struct {
	lunch map[string]timeutil.Window
	// groups holds the clients each staff member covers per window, not
	// counting their own clients.
	groups map[groupKey][]string
	errors []models.LunchCoverageError
}

func newState() state {
	return state{
		lunch:  make(map[string]timeutil.Window),
		groups: make(map[groupKey][]string),
	}
}

func (st state) clone() state {
	out := state{
		lunch:  maps.Clone(st.lunch),
		groups: make(map[groupKey][]string, len(st.groups)),
		errors: slices.Clone(st.errors),
	}
	for k, ids := range st.groups {
		out.groups[k] = slices.Clone(ids)
	}
	return out
}

func (st state) eatsDuring(staffID string, w timeutil.Window) bool {
	l, ok := st.lunch[staffID]
	return ok && l.Overlaps(w)
}

// slotNeed is one client needing a coverer during one window.
type slotNeed struct {
	clientID string
	window   timeutil.Window
	half     timeutil.Half
}

// assignSchools gives school staff one half of their school's lunch window.
func assignSchools(p *problem, prev state) state {
	st := prev.clone()
	for _, site := range p.sites {
		var withAM, without []string
		for _, id := range site.staff {
			info := p.staffByID[id]
			if info.staff.SkipsLunch() {
				continue
			}
			if info.hasAM {
				withAM = append(withAM, id)
			} else {
				without = append(without, id)
			}
		}
		for _, id := range without {
			st.lunch[id] = site.first
		}
		for i, id := range withAM {
			// With nobody free to take the first half, alternate so the
			// halves can cover each other.
			if len(without) == 0 && i%2 == 1 {
				st.lunch[id] = site.first
			} else {
				st.lunch[id] = site.second
			}
		}
	}
	return st
}

// assignFixed places staff whose slot follows from rules alone.
func assignFixed(p *problem, prev state) state {
	st := prev.clone()
	for _, info := range p.staff {
		switch info.kind {
		case kindMandatory:
			st.lunch[info.staff.ID] = timeutil.Slot1230.Window()
		case kindLead:
			for _, slot := range info.preference() {
				if !info.blocked(slot) {
					st.lunch[info.staff.ID] = slot.Window()
					break
				}
			}
		}
	}
	return st
}

// balanceOwners places staff whose own clients need coverage, sending each
// to the slot where more potential coverers are still free. Owners with the
// fewest coverers choose first.
func balanceOwners(p *problem, prev state) state {
	st := prev.clone()
	var owners []*staffInfo
	for _, info := range p.staff {
		if info.kind == kindFlexible && len(info.own) > 0 {
			if _, done := st.lunch[info.staff.ID]; !done {
				owners = append(owners, info)
			}
		}
	}
	slices.SortStableFunc(owners, func(a, b *staffInfo) int {
		return cmp.Compare(p.coverCount(a), p.coverCount(b))
	})
	for _, info := range owners {
		slot := pick(info, func(s timeutil.LunchSlot) int { return p.potential(st, info, s) })
		st.lunch[info.staff.ID] = slot.Window()
	}
	return st
}

// balanceHelpers places the remaining flexible staff where their free half
// helps the most clients that nobody placed so far can cover.
func balanceHelpers(p *problem, prev state) state {
	st := prev.clone()
	for _, info := range p.staff {
		if info.kind != kindFlexible {
			continue
		}
		if _, done := st.lunch[info.staff.ID]; done {
			continue
		}
		slot := pick(info, func(eat timeutil.LunchSlot) int {
			free := timeutil.Slot1200
			if eat == timeutil.Slot1200 {
				free = timeutil.Slot1130
			}
			n := 0
			for _, sn := range p.uncovered(st, free.Window()) {
				if slices.Contains(p.coverers[sn.clientID], info.staff.ID) {
					n++
				}
			}
			return n
		})
		st.lunch[info.staff.ID] = slot.Window()
	}
	return st
}

// matchCoverage assigns coverers, most restricted clients first.
func matchCoverage(p *problem, prev state) state {
	st := prev.clone()
	needs := p.slotNeeds(st)
	byID := make(map[string]slotNeed, len(needs))
	counts := make(map[string]int, len(needs))
	for _, sn := range needs {
		byID[sn.clientID] = sn
		counts[sn.clientID] = len(p.candidates(st, sn))
	}
	slices.SortStableFunc(needs, func(a, b slotNeed) int {
		if c := cmp.Compare(counts[a.clientID], counts[b.clientID]); c != 0 {
			return c
		}
		return cmp.Compare(a.window.Start, b.window.Start)
	})

	for _, sn := range needs {
		if p.place(&st, sn) || p.relocate(&st, sn, byID) {
			continue
		}
		n := p.needs[sn.clientID]
		st.errors = append(st.errors, models.LunchCoverageError{
			ClientID:   sn.clientID,
			ClientName: n.client.Name,
			StaffID:    n.ownerID,
			Slot:       timeutil.FormatClock(sn.window.Start),
			Reason:     ReasonNoCoverage,
		})
	}
	return st
}

// pick chooses between the two flexible slots by score.
func pick(info *staffInfo, score func(timeutil.LunchSlot) int) timeutil.LunchSlot {
	early, late := score(timeutil.Slot1130), score(timeutil.Slot1200)
	switch {
	case early > late:
		return timeutil.Slot1130
	case late > early:
		return timeutil.Slot1200
	}
	return info.tieBreak()
}

func (p *problem) coverCount(info *staffInfo) int {
	n := 0
	for _, id := range info.own {
		n += len(p.coverers[id])
	}
	return n
}

// potential counts coverers of the owner's clients not eating in slot. A
// staff member eligible for several clients is counted once per client.
func (p *problem) potential(st state, info *staffInfo, slot timeutil.LunchSlot) int {
	n := 0
	for _, id := range info.own {
		for _, x := range p.coverers[id] {
			if !st.eatsDuring(x, slot.Window()) {
				n++
			}
		}
	}
	return n
}

// slotNeeds lists the client windows needing a coverer under st's lunches,
// in problem order.
func (p *problem) slotNeeds(st state) []slotNeed {
	var out []slotNeed
	for _, id := range p.generic {
		w, ok := st.lunch[p.needs[id].ownerID]
		if !ok {
			continue
		}
		if slot := timeutil.SlotAt(w.Start); slot.IsCoverageSlot() && w == slot.Window() {
			out = append(out, slotNeed{clientID: id, window: w, half: timeutil.HalfOf(slot)})
		}
	}
	for _, id := range p.splits {
		out = append(out, slotNeed{clientID: id, window: timeutil.Slot1200.Window(), half: timeutil.SecondHalf})
	}
	for _, site := range p.sites {
		for _, id := range site.clients {
			w, ok := st.lunch[p.needs[id].ownerID]
			if !ok {
				continue
			}
			half := timeutil.SecondHalf
			if w == site.first {
				half = timeutil.FirstHalf
			}
			out = append(out, slotNeed{clientID: id, window: w, half: half})
		}
	}
	return out
}

// uncovered returns the needs in w that no already placed staff member can
// take alongside their own clients.
func (p *problem) uncovered(st state, w timeutil.Window) []slotNeed {
	var out []slotNeed
	for _, sn := range p.slotNeeds(st) {
		if sn.window != w {
			continue
		}
		client := p.needs[sn.clientID].client
		covered := false
		for _, x := range p.coverers[sn.clientID] {
			if p.committedFree(st, x, w) && CanJoin(p.group(st, x, w), client, sn.half) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, sn)
		}
	}
	return out
}

func (p *problem) committedFree(st state, staffID string, w timeutil.Window) bool {
	if p.staffByID[staffID].staff.SkipsLunch() {
		return true
	}
	l, ok := st.lunch[staffID]
	return ok && !l.Overlaps(w)
}

// candidates returns the eligible coverers not eating during the need.
func (p *problem) candidates(st state, sn slotNeed) []string {
	var out []string
	for _, x := range p.coverers[sn.clientID] {
		if !st.eatsDuring(x, sn.window) {
			out = append(out, x)
		}
	}
	return out
}

// group returns the clients a staff member supervises during w: their own
// clients first, then those they cover.
func (p *problem) group(st state, staffID string, w timeutil.Window) []models.Client {
	var out []models.Client
	for _, id := range p.staffByID[staffID].own {
		out = append(out, p.needs[id].client)
	}
	for _, id := range st.groups[groupKey{window: w, staffID: staffID}] {
		out = append(out, p.needs[id].client)
	}
	return out
}

func (p *problem) place(st *state, sn slotNeed) bool {
	cands := p.candidates(*st, sn)
	slices.SortStableFunc(cands, func(a, b string) int {
		return cmp.Compare(len(p.group(*st, a, sn.window)), len(p.group(*st, b, sn.window)))
	})
	client := p.needs[sn.clientID].client
	for _, x := range cands {
		if CanJoin(p.group(*st, x, sn.window), client, sn.half) {
			k := groupKey{window: sn.window, staffID: x}
			st.groups[k] = append(st.groups[k], sn.clientID)
			return true
		}
	}
	return false
}

// relocate frees room for sn by moving one already covered client to
// another coverer.
func (p *problem) relocate(st *state, sn slotNeed, byID map[string]slotNeed) bool {
	client := p.needs[sn.clientID].client
	for _, x := range p.candidates(*st, sn) {
		k := groupKey{window: sn.window, staffID: x}
		placed := st.groups[k]
		for i, y := range placed {
			st.groups[k] = slices.Delete(slices.Clone(placed), i, i+1)
			if !CanJoin(p.group(*st, x, sn.window), client, sn.half) {
				st.groups[k] = placed
				continue
			}
			yn := byID[y]
			for _, z := range p.candidates(*st, yn) {
				if z == x || !CanJoin(p.group(*st, z, yn.window), p.needs[y].client, yn.half) {
					continue
				}
				zk := groupKey{window: yn.window, staffID: z}
				st.groups[zk] = append(st.groups[zk], y)
				st.groups[k] = append(st.groups[k], sn.clientID)
				return true
			}
			st.groups[k] = placed
		}
	}
	return false
}
