// Package exceptions turns same-day staff/client exceptions into the
// unavailability sets consumed by every later stage.
package exceptions

import (
	"maps"
	"slices"

	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

// FullDay spans the whole calendar day.
var FullDay = timeutil.Window{Start: 0, End: 24 * 60}

// Overlay is the set view of one day's exceptions. Build always returns
// fresh maps.
type Overlay struct {
	// UnavailableClients are fully excluded from the day (all-day out or
	// cancelled), mapped to the reason recorded on the exception.
	UnavailableClients map[string]string
	// OutStaff maps every staff member with an out exception to the windows
	// they are out.
	OutStaff map[string][]timeutil.Window
	// LunchUnavailableClients adds clients whose partial absence touches the
	// lunch window.
	LunchUnavailableClients map[string]bool
	// ClientOutWindows holds partial client absences.
	ClientOutWindows map[string][]timeutil.Window
	// ClientsIn are clients attending although not normally scheduled.
	ClientsIn map[string]bool
	// LocationOverrides moves a client to another location for today.
	LocationOverrides map[string]string
}

// Build derives the overlay from exceptions. lunch is the window in which a
// partial client absence removes the client from lunch coverage.
func Build(list []models.Exception, lunch timeutil.Window) Overlay {
	o := Overlay{
		UnavailableClients:      make(map[string]string),
		OutStaff:                make(map[string][]timeutil.Window),
		LunchUnavailableClients: make(map[string]bool),
		ClientOutWindows:        make(map[string][]timeutil.Window),
		ClientsIn:               make(map[string]bool),
		LocationOverrides:       make(map[string]string),
	}
	for _, ex := range list {
		switch ex.Type {
		case models.ExceptionStaff:
			if ex.Mode == models.ModeOut {
				o.OutStaff[ex.EntityID] = append(o.OutStaff[ex.EntityID], window(ex))
			}
		case models.ExceptionClient:
			o.addClient(ex)
		}
	}
	for id, windows := range o.ClientOutWindows {
		for _, w := range windows {
			if w.Overlaps(lunch) {
				o.LunchUnavailableClients[id] = true
			}
		}
	}
	for id := range o.UnavailableClients {
		o.LunchUnavailableClients[id] = true
	}
	return o
}

func (o *Overlay) addClient(ex models.Exception) {
	switch ex.Mode {
	case models.ModeCancelled:
		o.UnavailableClients[ex.EntityID] = reasonOr(ex.Reason, "Cancelled")
	case models.ModeOut:
		w := window(ex)
		if w == FullDay {
			o.UnavailableClients[ex.EntityID] = reasonOr(ex.Reason, "Out")
			return
		}
		o.ClientOutWindows[ex.EntityID] = append(o.ClientOutWindows[ex.EntityID], w)
	case models.ModeIn:
		o.ClientsIn[ex.EntityID] = true
	case models.ModeLocation:
		if ex.LocationID != nil {
			o.LocationOverrides[ex.EntityID] = *ex.LocationID
		}
	}
}

func window(ex models.Exception) timeutil.Window {
	if ex.AllDay || ex.StartMinute == nil || ex.EndMinute == nil {
		return FullDay
	}
	return timeutil.Window{Start: *ex.StartMinute, End: *ex.EndMinute}
}

func reasonOr(reason, def string) string {
	if reason != "" {
		return reason
	}
	return def
}

// ClientUnavailable reports whether the client is excluded from the day.
func (o Overlay) ClientUnavailable(id string) bool {
	_, ok := o.UnavailableClients[id]
	return ok
}

// ClientOutDuring reports whether the client is absent for any part of w.
func (o Overlay) ClientOutDuring(id string, w timeutil.Window) bool {
	if o.ClientUnavailable(id) {
		return true
	}
	for _, out := range o.ClientOutWindows[id] {
		if out.Overlaps(w) {
			return true
		}
	}
	return false
}

// StaffOut reports whether the staff member has any out exception today.
func (o Overlay) StaffOut(id string) bool {
	return len(o.OutStaff[id]) > 0
}

// StaffOutDuring reports whether the staff member is out for any part of w.
func (o Overlay) StaffOutDuring(id string, w timeutil.Window) bool {
	for _, out := range o.OutStaff[id] {
		if out.Overlaps(w) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy that can be extended without touching o.
func (o Overlay) Clone() Overlay {
	out := Overlay{
		UnavailableClients:      maps.Clone(o.UnavailableClients),
		OutStaff:                make(map[string][]timeutil.Window, len(o.OutStaff)),
		LunchUnavailableClients: maps.Clone(o.LunchUnavailableClients),
		ClientOutWindows:        make(map[string][]timeutil.Window, len(o.ClientOutWindows)),
		ClientsIn:               maps.Clone(o.ClientsIn),
		LocationOverrides:       maps.Clone(o.LocationOverrides),
	}
	for id, ws := range o.OutStaff {
		out.OutStaff[id] = slices.Clone(ws)
	}
	for id, ws := range o.ClientOutWindows {
		out.ClientOutWindows[id] = slices.Clone(ws)
	}
	if out.LunchUnavailableClients == nil {
		out.LunchUnavailableClients = make(map[string]bool)
	}
	return out
}
