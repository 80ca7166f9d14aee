package scheduler

import (
	"fmt"
	"slices"

	"github.com/arnavshah/clinic-scheduler-api/pkg/cancellation"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
)

// canceledClient records why a client's blocks were canceled.
type canceledClient struct {
	blocks    []models.Block
	timing    models.CancelTiming
	reason    string
	siblingOf string
}

type cancelOutcome struct {
	decisions []models.CancelDecision
	byClient  map[string]canceledClient
	unfilled  []models.CoverageGap
	consumed  []string
}

func (c cancelOutcome) canceled(clientID string, b models.Block) bool {
	cc, ok := c.byClient[clientID]
	return ok && slices.Contains(cc.blocks, b)
}

// cancel hands unrepaired gaps to the cancellation policy until it has no
// more targets. Linked siblings are canceled with the target. Gaps left
// over stay unfilled, annotated with their protection or skip reason.
func (s *Scheduler) cancel(d *day, gaps []models.CoverageGap) cancelOutcome {
	out := cancelOutcome{byClient: make(map[string]canceledClient)}
	candidates := cancellation.BuildCandidates(gaps, cancellation.CandidateInput{
		AsOf:             d.in.AsOf,
		Clients:          d.in.Data.Clients,
		Staff:            d.in.Data.Staff,
		Template:         d.in.Data.Template,
		ClientLocations:  d.in.Data.ClientLocations,
		TrainingSessions: d.in.Data.TrainingSessions,
		CancelLinks:      d.in.Data.CancelLinks,
		Policy:           s.policy,
	})
	notes := make(map[string]string, len(candidates))
	for _, c := range candidates {
		switch {
		case c.IsProtected:
			notes[c.ClientID] = "Protected: " + c.ProtectedReason
		case c.IsSkipped:
			notes[c.ClientID] = "Skipped: " + c.SkipReason
			if c.UsesSkip {
				out.consumed = append(out.consumed, c.ClientID)
			}
		}
	}

	remaining := candidates
	for {
		dec := cancellation.SelectCancelTarget(remaining, s.policy.PreferFullDay)
		if dec == nil {
			break
		}
		out.decisions = append(out.decisions, *dec)
		out.byClient[dec.ClientID] = canceledClient{blocks: dec.Blocks, timing: dec.Timing, reason: dec.Reason}
		for _, sib := range dec.SiblingIDs {
			if _, done := out.byClient[sib]; done {
				continue
			}
			out.byClient[sib] = canceledClient{
				blocks:    dec.Blocks,
				timing:    dec.Timing,
				reason:    fmt.Sprintf("Canceled with sibling %s", dec.ClientName),
				siblingOf: dec.ClientID,
			}
		}
		// Protected and skipped candidates are reported with the first
		// decision only.
		remaining = slices.DeleteFunc(slices.Clone(remaining), func(c models.CancelCandidate) bool {
			_, done := out.byClient[c.ClientID]
			return done || c.IsProtected || c.IsSkipped
		})
		s.log.Debugw("canceled client", map[string]any{
			"client":   dec.ClientID,
			"block":    dec.Block,
			"timing":   dec.Timing,
			"siblings": dec.SiblingIDs,
		})
	}

	for _, g := range gaps {
		if out.canceled(g.ClientID, g.Block) {
			continue
		}
		if note, ok := notes[g.ClientID]; ok {
			g.Reasons = append(slices.Clone(g.Reasons), note)
		}
		out.unfilled = append(out.unfilled, g)
	}
	return out
}
