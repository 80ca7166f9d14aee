package timeutil

// LunchSlot is one of the four canonical 30-minute lunch windows.
type LunchSlot int

const (
	SlotNone LunchSlot = iota
	Slot1100
	Slot1130
	Slot1200
	Slot1230
)

// CanonicalSlots lists the four lunch slots in clock order.
var CanonicalSlots = []LunchSlot{Slot1100, Slot1130, Slot1200, Slot1230}

var slotStarts = map[LunchSlot]int{
	Slot1100: 11 * 60,
	Slot1130: 11*60 + 30,
	Slot1200: 12 * 60,
	Slot1230: 12*60 + 30,
}

// Start returns the first minute of the slot.
func (s LunchSlot) Start() int { return slotStarts[s] }

// End returns the minute after the slot.
func (s LunchSlot) End() int {
	if s == SlotNone {
		return 0
	}
	return slotStarts[s] + 30
}

// Window returns the slot as a Window.
func (s LunchSlot) Window() Window { return Window{Start: s.Start(), End: s.End()} }

// Label returns the canonical "11:30" label.
func (s LunchSlot) Label() string {
	if s == SlotNone {
		return ""
	}
	return FormatClock(s.Start())
}

// String implements fmt.Stringer.
func (s LunchSlot) String() string {
	if s == SlotNone {
		return "none"
	}
	return s.Label()
}

// IsCoverageSlot reports whether clients need coverage while staff eat in s.
func (s LunchSlot) IsCoverageSlot() bool { return s == Slot1130 || s == Slot1200 }

// SlotAt returns the canonical slot starting at minute m.
func SlotAt(m int) LunchSlot {
	for s, start := range slotStarts {
		if start == m {
			return s
		}
	}
	return SlotNone
}

// ParseSlot parses a "11:30" style label.
func ParseSlot(label string) LunchSlot {
	m, err := ParseClock(label)
	if err != nil {
		return SlotNone
	}
	return SlotAt(m)
}

// Half distinguishes the first and second half of the lunch hour for
// slot-specific pairing rules.
type Half int

const (
	FirstHalf Half = iota + 1
	SecondHalf
)

// HalfOf maps the coverage slots to their lunch half.
func HalfOf(s LunchSlot) Half {
	if s == Slot1200 || s == Slot1230 {
		return SecondHalf
	}
	return FirstHalf
}
