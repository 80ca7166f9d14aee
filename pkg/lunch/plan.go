package lunch

import (
	"cmp"
	"slices"

	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

// ReasonNoCoverage is reported for every client left without a coverer.
const ReasonNoCoverage = "No legal lunch coverage available"

// StaffLunch is when one staff member eats.
type StaffLunch struct {
	StaffID string             `json:"staff_id"`
	Slot    timeutil.LunchSlot `json:"-"`
	Label   string             `json:"slot"`
	Window  timeutil.Window    `json:"window"`
	// SchoolID is set when the lunch follows a school's own window.
	SchoolID string `json:"school_id,omitempty"`
}

// Member is one client in a coverage group.
type Member struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
	OwnerID    string `json:"owner_id"`
	// Own marks the covering staff member's own client.
	Own bool `json:"own"`
}

// Group is the set of clients one staff member supervises during a lunch
// window: their own clients plus any they cover for staff who are eating.
type Group struct {
	StaffID string          `json:"staff_id"`
	Window  timeutil.Window `json:"window"`
	Members []Member        `json:"members"`
}

// Covered returns the members that belong to other staff.
func (g Group) Covered() []Member {
	var out []Member
	for _, m := range g.Members {
		if !m.Own {
			out = append(out, m)
		}
	}
	return out
}

// Plan is the solver output.
type Plan struct {
	Lunches []StaffLunch                `json:"lunches"`
	Groups  []Group                     `json:"groups"`
	Errors  []models.LunchCoverageError `json:"errors"`
}

// LunchFor returns the staff member's lunch, if they take one.
func (p Plan) LunchFor(staffID string) (StaffLunch, bool) {
	for _, l := range p.Lunches {
		if l.StaffID == staffID {
			return l, true
		}
	}
	return StaffLunch{}, false
}

// GroupsFor returns the coverage groups a staff member supervises, by window.
func (p Plan) GroupsFor(staffID string) []Group {
	var out []Group
	for _, g := range p.Groups {
		if g.StaffID == staffID {
			out = append(out, g)
		}
	}
	return out
}

// CoveringStaff returns who supervises the client during w.
func (p Plan) CoveringStaff(clientID string, w timeutil.Window) (string, bool) {
	for _, g := range p.Groups {
		if g.Window != w {
			continue
		}
		for _, m := range g.Members {
			if m.ClientID == clientID && !m.Own {
				return g.StaffID, true
			}
		}
	}
	return "", false
}

func (p *problem) plan(st state) Plan {
	out := Plan{Errors: slices.Clone(st.errors)}
	for _, info := range p.staff {
		w, ok := st.lunch[info.staff.ID]
		if !ok {
			continue
		}
		l := StaffLunch{StaffID: info.staff.ID, Window: w, Label: timeutil.FormatClock(w.Start)}
		if info.kind == kindSchool {
			l.SchoolID = info.school
		} else {
			l.Slot = timeutil.SlotAt(w.Start)
		}
		out.Lunches = append(out.Lunches, l)
	}

	seen := make(map[groupKey]bool, len(st.groups))
	var keys []groupKey
	addKey := func(k groupKey) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k, ids := range st.groups {
		if len(ids) > 0 {
			addKey(k)
		}
	}
	for _, info := range p.staff {
		if len(info.own) == 0 {
			continue
		}
		for _, w := range p.supervisionWindows(info) {
			if !st.eatsDuring(info.staff.ID, w) {
				addKey(groupKey{window: w, staffID: info.staff.ID})
			}
		}
	}
	slices.SortFunc(keys, func(a, b groupKey) int {
		if c := cmp.Compare(a.window.Start, b.window.Start); c != 0 {
			return c
		}
		return cmp.Compare(p.rank[a.staffID], p.rank[b.staffID])
	})
	for _, k := range keys {
		g := Group{StaffID: k.staffID, Window: k.window}
		for _, id := range p.staffByID[k.staffID].own {
			c := p.clients[id]
			g.Members = append(g.Members, Member{ClientID: id, ClientName: c.Name, OwnerID: k.staffID, Own: true})
		}
		for _, id := range st.groups[k] {
			n := p.needs[id]
			g.Members = append(g.Members, Member{ClientID: id, ClientName: n.client.Name, OwnerID: n.ownerID})
		}
		out.Groups = append(out.Groups, g)
	}
	return out
}

// supervisionWindows are the lunch windows in which a staff member keeps
// their own clients unless they are eating.
func (p *problem) supervisionWindows(info *staffInfo) []timeutil.Window {
	if info.kind == kindSchool {
		for _, site := range p.sites {
			if site.school.LocationID == info.school {
				return []timeutil.Window{site.first, site.second}
			}
		}
	}
	return []timeutil.Window{timeutil.Slot1130.Window(), timeutil.Slot1200.Window()}
}
