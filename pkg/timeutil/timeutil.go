// Package timeutil converts between clock strings and minutes since midnight
// and defines the canonical lunch slots and the six daily blocks.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Minutes returns the minutes since midnight of h:m.
func Minutes(h, m int) int { return h*60 + m }

// ParseClock parses "13:05", "1:05 PM" or "1:05pm" into minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, fmt.Errorf("timeutil: empty clock value")
	}
	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
		}
	}
	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		return 0, fmt.Errorf("timeutil: bad clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timeutil: bad hour in %q: %w", s, err)
	}
	m := 0
	if len(parts) == 2 {
		if m, err = strconv.Atoi(parts[1]); err != nil {
			return 0, fmt.Errorf("timeutil: bad minute in %q: %w", s, err)
		}
	}
	if meridiem != "" && (h < 1 || h > 12) {
		return 0, fmt.Errorf("timeutil: hour out of range %q", s)
	}
	switch meridiem {
	case "AM":
		if h == 12 {
			h = 0
		}
	case "PM":
		if h < 12 {
			h += 12
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("timeutil: clock value out of range %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "13:05".
func FormatClock(min int) string {
	return fmt.Sprintf("%d:%02d", min/60, min%60)
}

// FormatClock12 renders minutes since midnight as "1:05 PM".
func FormatClock12(min int) string {
	h, m := min/60, min%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	if h > 12 {
		h -= 12
	}
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

// FormatRange renders a window as "8:30-11:30" on a 12-hour face without suffix.
func FormatRange(start, end int) string {
	return shortClock(start) + "-" + shortClock(end)
}

func shortClock(min int) string {
	h, m := min/60, min%60
	if h > 12 {
		h -= 12
	}
	return fmt.Sprintf("%d:%02d", h, m)
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// Window is a half-open [Start, End) interval in minutes since midnight.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether w and o intersect.
func (w Window) Overlaps(o Window) bool { return Overlaps(w.Start, w.End, o.Start, o.End) }

// Contains reports whether minute m falls inside w.
func (w Window) Contains(m int) bool { return m >= w.Start && m < w.End }

// Clip returns the intersection of w and o.
func (w Window) Clip(o Window) (Window, bool) {
	c := Window{Start: max(w.Start, o.Start), End: min(w.End, o.End)}
	return c, c.End > c.Start
}

// String renders the window as "11:30-12:00".
func (w Window) String() string { return FormatRange(w.Start, w.End) }

// Bisect splits w at its midpoint minute.
func (w Window) Bisect() (Window, Window) {
	mid := (w.Start + w.End) / 2
	return Window{Start: w.Start, End: mid}, Window{Start: mid, End: w.End}
}

// DayStart truncates t to midnight in its own location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from a to b, ignoring the
// time of day. It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
