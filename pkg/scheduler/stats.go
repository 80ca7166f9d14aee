package scheduler

import (
	"math"

	"github.com/arnavshah/clinic-scheduler-api/pkg/lunch"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

// Stats summarizes a generated day.
type Stats struct {
	Sessions int `json:"sessions"`
	Staffed  int `json:"staffed"`
	Repaired int `json:"repaired"`
	Canceled int `json:"canceled"`
	Unfilled int `json:"unfilled"`
	// CoverageRate is the percentage of sessions that have a staff member.
	CoverageRate float64 `json:"coverage_rate"`
	// LunchBalance is 100 when the 11:30 and 12:00 slots hold the same
	// number of staff.
	LunchBalance float64 `json:"lunch_balance"`
}

func computeStats(d *day, rep repairOutcome, canc cancelOutcome, plan lunch.Plan) Stats {
	st := Stats{Repaired: len(rep.repairs), Unfilled: len(canc.unfilled)}

	sessions := make(map[sessionKey]bool)
	for _, a := range d.resolved {
		for _, id := range a.ClientIDs() {
			if d.clientPresent(id) {
				sessions[sessionKey{id, a.Block}] = true
			}
		}
	}
	for k := range rep.needs {
		sessions[k] = true
	}
	st.Sessions = len(sessions)
	for k := range sessions {
		if canc.canceled(k.clientID, k.block) {
			st.Canceled++
		}
	}
	st.Staffed = st.Sessions - st.Canceled - st.Unfilled
	st.CoverageRate = 100
	if st.Sessions > 0 {
		st.CoverageRate = float64(st.Staffed) / float64(st.Sessions) * 100
	}

	counts := map[timeutil.LunchSlot]float64{timeutil.Slot1130: 0, timeutil.Slot1200: 0}
	for _, l := range plan.Lunches {
		if l.SchoolID == "" && l.Slot.IsCoverageSlot() {
			counts[l.Slot]++
		}
	}
	st.LunchBalance = balance([]float64{counts[timeutil.Slot1130], counts[timeutil.Slot1200]})
	return st
}

// balance returns a percentage (0-100) of how evenly values are spread.
// 100% means the standard deviation is 0.
func balance(values []float64) float64 {
	if len(values) == 0 {
		return 100.0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	if sum == 0 {
		return 100.0
	}
	mean := sum / float64(len(values))

	var varianceSum float64
	for _, v := range values {
		diff := v - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(values)))

	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
