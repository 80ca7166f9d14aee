package lunch

import (
	"github.com/arnavshah/clinic-scheduler-api/pkg/eligibility"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

// MaxGroupSize is the hard cap on clients sharing one staff member.
const MaxGroupSize = 4

// CanJoin reports whether candidate may be added to group for the given
// lunch half. Every pairwise rule must pass against every current member,
// and groups larger than two need each member's consent.
func CanJoin(group []models.Client, candidate models.Client, half timeutil.Half) bool {
	if len(group) == 0 {
		return true
	}
	size := len(group) + 1
	if size > MaxGroupSize {
		return false
	}
	if size >= 3 && !allAllow(group, candidate, func(c models.Client) bool { return c.AllowGroupOf3 }) {
		return false
	}
	if size == 4 && !allAllow(group, candidate, func(c models.Client) bool { return c.AllowGroupOf4 }) {
		return false
	}
	for _, member := range group {
		if member.ID == candidate.ID {
			return false
		}
		if !eligibility.CanPair(member, candidate, half) {
			return false
		}
	}
	return true
}

func allAllow(group []models.Client, candidate models.Client, flag func(models.Client) bool) bool {
	if !flag(candidate) {
		return false
	}
	for _, member := range group {
		if !flag(member) {
			return false
		}
	}
	return true
}
