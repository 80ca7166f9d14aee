package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"8:30", 510},
		{"13:00", 780},
		{"1:00 PM", 780},
		{"12:30pm", 750},
		{"12:15 AM", 15},
		{"11", 660},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClockErrors(t *testing.T) {
	for _, in := range []string{"", "25:00", "10:75", "13:00 PM", "a:b", "1:2:3"} {
		_, err := ParseClock(in)
		assert.Error(t, err, in)
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "11:30", FormatClock(690))
	assert.Equal(t, "12:30 PM", FormatClock12(750))
	assert.Equal(t, "12:00 AM", FormatClock12(0))
	assert.Equal(t, "12:30-4:00", FormatRange(750, 960))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(510, 690, 600, 700))
	assert.False(t, Overlaps(510, 690, 690, 720), "touching windows do not overlap")
	assert.True(t, Window{660, 750}.Overlaps(Window{700, 710}))
}

func TestWindowClipAndBisect(t *testing.T) {
	c, ok := Window{600, 800}.Clip(Window{690, 720})
	require.True(t, ok)
	assert.Equal(t, Window{690, 720}, c)
	_, ok = Window{600, 690}.Clip(Window{690, 720})
	assert.False(t, ok)

	first, second := Window{675, 735}.Bisect()
	assert.Equal(t, Window{675, 705}, first)
	assert.Equal(t, Window{705, 735}, second)
}

func TestLunchSlots(t *testing.T) {
	assert.Equal(t, "11:00", Slot1100.Label())
	assert.Equal(t, 780, Slot1230.End())
	assert.Equal(t, Slot1200, ParseSlot("12:00"))
	assert.Equal(t, Slot1130, ParseSlot("11:30 AM"))
	assert.Equal(t, SlotNone, ParseSlot("10:00"))
	assert.True(t, Slot1130.IsCoverageSlot())
	assert.False(t, Slot1230.IsCoverageSlot())
	assert.Equal(t, FirstHalf, HalfOf(Slot1130))
	assert.Equal(t, SecondHalf, HalfOf(Slot1200))
}

func TestDayBlocks(t *testing.T) {
	require.Len(t, DayBlocks, 6)
	prev := 0
	for _, b := range DayBlocks {
		w := b.Window()
		assert.GreaterOrEqual(t, w.Start, prev)
		assert.Greater(t, w.End, w.Start)
		prev = w.End
	}
	assert.Equal(t, "11:30-12:00", BlockLunchFirst.Label())
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 9, 17, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 10, 17, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 30, DaysBetween(a, b))
	assert.Equal(t, -30, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}
