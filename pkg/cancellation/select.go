package cancellation

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
)

// SelectCancelTarget picks the next client to cancel, or nil when every
// candidate is protected or skipped. Candidates with no blocks to cancel are
// ignored unless they can only be canceled all day.
//
// Candidates rotate by last cancellation: never-canceled clients go first,
// then the longest ago. With preferFullDay, a candidate missing both blocks
// (or only cancelable all day) wins over the rotation order.
func SelectCancelTarget(candidates []models.CancelCandidate, preferFullDay bool) *models.CancelDecision {
	var eligible, skipped []models.CancelCandidate
	var consumed []string
	for _, c := range candidates {
		switch {
		case c.IsProtected:
		case c.IsSkipped:
			skipped = append(skipped, c)
			if c.UsesSkip {
				consumed = append(consumed, c.ClientID)
			}
		case len(c.Blocks) == 0 && !c.CancelAllDayOnly:
		default:
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	slices.SortStableFunc(eligible, byRotation)

	target := eligible[0]
	if preferFullDay {
		for _, c := range eligible {
			if isFullDay(c) {
				target = c
				break
			}
		}
	}

	d := &models.CancelDecision{
		ClientID:     target.ClientID,
		ClientName:   target.ClientName,
		SiblingIDs:   slices.Clone(target.SiblingIDs),
		Skipped:      skipped,
		SkipConsumed: consumed,
	}
	if isFullDay(target) {
		d.FullDay = true
		d.Block = models.BlockAllDay
		d.Blocks = []models.Block{models.BlockAM, models.BlockPM}
	} else {
		d.Block = target.Blocks[0]
		d.Blocks = slices.Clone(target.Blocks)
	}
	d.Timing = Timing(d.Block, target.CanBeGrouped)
	d.Reason = reason(target, d.Block)
	return d
}

func isFullDay(c models.CancelCandidate) bool {
	return c.CancelAllDayOnly || (c.HasBlock(models.BlockAM) && c.HasBlock(models.BlockPM))
}

func byRotation(a, b models.CancelCandidate) int {
	switch {
	case a.LastCanceledDate == nil && b.LastCanceledDate != nil:
		return -1
	case a.LastCanceledDate != nil && b.LastCanceledDate == nil:
		return 1
	case a.LastCanceledDate != nil && b.LastCanceledDate != nil:
		if c := a.LastCanceledDate.Compare(*b.LastCanceledDate); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.ClientName, b.ClientName); c != 0 {
		return c
	}
	return cmp.Compare(a.ClientID, b.ClientID)
}

// Timing labels when a partially canceled client is not seen.
func Timing(block models.Block, groupable bool) models.CancelTiming {
	switch block {
	case models.BlockAM:
		if groupable {
			return models.TimingUntil1130
		}
		return models.TimingUntil1230
	case models.BlockPM:
		if groupable {
			return models.TimingAt1230
		}
		return models.TimingAt1130
	}
	return models.TimingAllDay
}

func reason(c models.CancelCandidate, block models.Block) string {
	last := "never canceled"
	if c.LastCanceledDate != nil {
		last = "last canceled " + c.LastCanceledDate.Format(time.DateOnly)
	}
	if block == models.BlockAllDay {
		return fmt.Sprintf("No coverage for the full day (%s)", last)
	}
	return fmt.Sprintf("No coverage for %s (%s)", block, last)
}
