// Package roster resolves the recurring weekly template and the day-specific
// ideal-day overrides into one day's AM/PM assignment list.
package roster

import (
	"cmp"
	"slices"
	"time"

	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

// Source tells where a resolved assignment came from.
type Source string

const (
	SourceTemplate Source = "template"
	SourceIdealDay Source = "ideal_day"
)

// Segment is one ordered piece of a multi-segment half day.
type Segment struct {
	RowID      string  `json:"row_id"`
	ClientID   *string `json:"client_id,omitempty"`
	LocationID *string `json:"location_id,omitempty"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Label      string  `json:"label,omitempty"`
}

// Window returns the segment's time range.
func (s Segment) Window() timeutil.Window { return timeutil.Window{Start: s.Start, End: s.End} }

// Assignment is one staff member's resolved AM or PM block.
type Assignment struct {
	Weekday    time.Weekday `json:"weekday"`
	Block      models.Block `json:"block"`
	StaffID    string       `json:"staff_id"`
	ClientID   *string      `json:"client_id,omitempty"`
	LocationID *string      `json:"location_id,omitempty"`
	Start      int          `json:"start"`
	End        int          `json:"end"`
	Label      string       `json:"label,omitempty"`
	Source     Source       `json:"source"`
	// Segments is set only when several rows were merged.
	Segments []Segment `json:"segments,omitempty"`
}

// Window returns the assignment's overall time range.
func (a Assignment) Window() timeutil.Window { return timeutil.Window{Start: a.Start, End: a.End} }

// HasClient reports whether any part of the block serves a client.
func (a Assignment) HasClient() bool {
	return len(a.ClientIDs()) > 0
}

// ClientIDs lists the distinct clients served in the block, in time order.
func (a Assignment) ClientIDs() []string {
	var ids []string
	for _, seg := range a.Parts() {
		if seg.ClientID != nil && !slices.Contains(ids, *seg.ClientID) {
			ids = append(ids, *seg.ClientID)
		}
	}
	return ids
}

// Parts returns the ordered segments, or the assignment itself as a single
// segment when it was not merged.
func (a Assignment) Parts() []Segment {
	if len(a.Segments) > 0 {
		return a.Segments
	}
	return []Segment{{
		ClientID:   a.ClientID,
		LocationID: a.LocationID,
		Start:      a.Start,
		End:        a.End,
		Label:      a.Label,
	}}
}

// ClientWindow returns the span a client occupies within the block.
func (a Assignment) ClientWindow(clientID string) (timeutil.Window, bool) {
	w := timeutil.Window{Start: -1}
	for _, seg := range a.Parts() {
		if models.StringValue(seg.ClientID) != clientID {
			continue
		}
		if w.Start < 0 || seg.Start < w.Start {
			w.Start = seg.Start
		}
		if seg.End > w.End {
			w.End = seg.End
		}
	}
	return w, w.Start >= 0
}

// Clone returns a deep copy.
func (a Assignment) Clone() Assignment {
	out := a
	out.ClientID = cloneString(a.ClientID)
	out.LocationID = cloneString(a.LocationID)
	if a.Segments != nil {
		out.Segments = make([]Segment, len(a.Segments))
		for i, s := range a.Segments {
			s.ClientID = cloneString(s.ClientID)
			s.LocationID = cloneString(s.LocationID)
			out.Segments[i] = s
		}
	}
	return out
}

// DefaultWindow returns the session window assumed for a block when rows
// carry no explicit times.
func DefaultWindow(b models.Block) timeutil.Window {
	if b == models.BlockPM {
		return timeutil.DefaultPM
	}
	return timeutil.DefaultAM
}

type groupKey struct {
	staffID string
	block   models.Block
}

// Resolve returns the assignments for day. Ideal-day rows for that weekday
// replace the template rows for it entirely. The result shares no memory
// with the inputs.
func Resolve(rows []models.TemplateAssignment, overrides []models.IdealDaySegment, day time.Weekday) []Assignment {
	source := SourceTemplate
	var dayRows []models.TemplateAssignment
	for _, o := range overrides {
		if o.Weekday == day {
			dayRows = append(dayRows, models.TemplateAssignment(o))
		}
	}
	if len(dayRows) > 0 {
		source = SourceIdealDay
	} else {
		for _, r := range rows {
			if r.Weekday == day {
				dayRows = append(dayRows, r)
			}
		}
	}

	groups := make(map[groupKey][]models.TemplateAssignment)
	var keys []groupKey
	for _, r := range dayRows {
		k := groupKey{staffID: r.StaffID, block: r.Block}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	slices.SortFunc(keys, func(a, b groupKey) int {
		if c := cmp.Compare(a.staffID, b.staffID); c != 0 {
			return c
		}
		return cmp.Compare(a.block, b.block)
	})

	out := make([]Assignment, 0, len(keys))
	for _, k := range keys {
		out = append(out, merge(groups[k], source))
	}
	return out
}

func merge(rows []models.TemplateAssignment, source Source) Assignment {
	def := DefaultWindow(rows[0].Block)
	if len(rows) == 1 {
		r := rows[0]
		return Assignment{
			Weekday:    r.Weekday,
			Block:      r.Block,
			StaffID:    r.StaffID,
			ClientID:   cloneString(r.ClientID),
			LocationID: cloneString(r.LocationID),
			Start:      models.IntValue(r.StartMinute, def.Start),
			End:        models.IntValue(r.EndMinute, def.End),
			Label:      r.Label,
			Source:     source,
		}
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b models.TemplateAssignment) int {
		if c := cmp.Compare(models.IntValue(a.StartMinute, def.Start), models.IntValue(b.StartMinute, def.Start)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	primary := sorted[0]
	for _, r := range sorted {
		if r.ClientID != nil {
			primary = r
			break
		}
	}

	a := Assignment{
		Weekday:    primary.Weekday,
		Block:      primary.Block,
		StaffID:    primary.StaffID,
		ClientID:   cloneString(primary.ClientID),
		LocationID: cloneString(primary.LocationID),
		Label:      primary.Label,
		Source:     source,
		Start:      -1,
	}
	for _, r := range sorted {
		seg := Segment{
			RowID:      r.ID,
			ClientID:   cloneString(r.ClientID),
			LocationID: cloneString(r.LocationID),
			Start:      models.IntValue(r.StartMinute, def.Start),
			End:        models.IntValue(r.EndMinute, def.End),
			Label:      r.Label,
		}
		if a.Start < 0 || seg.Start < a.Start {
			a.Start = seg.Start
		}
		if seg.End > a.End {
			a.End = seg.End
		}
		a.Segments = append(a.Segments, seg)
	}
	return a
}

// ScheduledWeekdays returns the distinct weekdays on which the client appears
// in the template, in weekday order.
func ScheduledWeekdays(rows []models.TemplateAssignment, clientID string) []time.Weekday {
	var days []time.Weekday
	for _, r := range rows {
		if models.StringValue(r.ClientID) == clientID && !slices.Contains(days, r.Weekday) {
			days = append(days, r.Weekday)
		}
	}
	slices.Sort(days)
	return days
}

// Index gives block-level lookups over a resolved day.
type Index struct {
	byStaff  map[string]map[models.Block]Assignment
	byClient map[string]map[models.Block][]Assignment
}

// NewIndex indexes assignments by staff and by client.
func NewIndex(assignments []Assignment) Index {
	idx := Index{
		byStaff:  make(map[string]map[models.Block]Assignment),
		byClient: make(map[string]map[models.Block][]Assignment),
	}
	for _, a := range assignments {
		if idx.byStaff[a.StaffID] == nil {
			idx.byStaff[a.StaffID] = make(map[models.Block]Assignment)
		}
		idx.byStaff[a.StaffID][a.Block] = a
		for _, cid := range a.ClientIDs() {
			if idx.byClient[cid] == nil {
				idx.byClient[cid] = make(map[models.Block][]Assignment)
			}
			idx.byClient[cid][a.Block] = append(idx.byClient[cid][a.Block], a)
		}
	}
	return idx
}

// Staff returns the staff member's assignment for a block.
func (i Index) Staff(staffID string, b models.Block) (Assignment, bool) {
	a, ok := i.byStaff[staffID][b]
	return a, ok
}

// Client returns the assignments serving the client in a block.
func (i Index) Client(clientID string, b models.Block) []Assignment {
	return i.byClient[clientID][b]
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Without returns a copy of the assignment with the segments of every client
// for which drop returns true removed. ok is false when nothing remains.
func (a Assignment) Without(drop func(clientID string) bool) (Assignment, bool) {
	var kept []Segment
	for _, seg := range a.Clone().Parts() {
		if seg.ClientID != nil && drop(*seg.ClientID) {
			continue
		}
		kept = append(kept, seg)
	}
	if len(kept) == 0 {
		return Assignment{}, false
	}
	out := a.Clone()
	if len(a.Segments) == 0 {
		return out, true
	}
	out.Segments = kept
	out.ClientID = nil
	out.LocationID = nil
	for _, seg := range kept {
		if seg.ClientID != nil {
			out.ClientID = cloneString(seg.ClientID)
			out.LocationID = cloneString(seg.LocationID)
			break
		}
	}
	return out, true
}
