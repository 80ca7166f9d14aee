package timeutil

// DayBlock names one of the six fixed grid columns.
type DayBlock int

const (
	BlockEarly DayBlock = iota
	BlockMorning
	BlockLunchFirst
	BlockLunchSecond
	BlockAfternoon
	BlockLate
)

// DayBlocks lists the grid columns in order.
var DayBlocks = []DayBlock{BlockEarly, BlockMorning, BlockLunchFirst, BlockLunchSecond, BlockAfternoon, BlockLate}

var blockWindows = [...]Window{
	BlockEarly:       {Start: 7 * 60, End: 8*60 + 30},
	BlockMorning:     {Start: 8*60 + 30, End: 11*60 + 30},
	BlockLunchFirst:  {Start: 11*60 + 30, End: 12 * 60},
	BlockLunchSecond: {Start: 12 * 60, End: 12*60 + 30},
	BlockAfternoon:   {Start: 12*60 + 30, End: 16 * 60},
	BlockLate:        {Start: 16 * 60, End: 17*60 + 30},
}

// Window returns the block's fixed time range.
func (b DayBlock) Window() Window { return blockWindows[b] }

// Label renders the block as "8:30-11:30".
func (b DayBlock) Label() string { return b.Window().String() }

// Default AM/PM session windows used when template rows omit times.
var (
	DefaultAM = Window{Start: 8*60 + 30, End: 11*60 + 30}
	DefaultPM = Window{Start: 12*60 + 30, End: 16 * 60}
)
