// Package eligibility holds the staff/client predicates every stage of the
// engine shares. All functions are pure reads of the typed records.
package eligibility

import (
	"slices"

	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

// IsExcluded reports whether the client refuses the staff member outright,
// either by exclusion or because training lapsed.
func IsExcluded(c models.Client, staffID string) bool {
	return slices.Contains(c.ExcludedStaffIDs, staffID) || slices.Contains(c.NoLongerTrainedIDs, staffID)
}

// IsTrained reports whether the staff member is trained on the client.
func IsTrained(c models.Client, staffID string) bool {
	return slices.Contains(c.TrainedStaffIDs, staffID)
}

// IsFocus reports whether the staff member is one of the client's focus staff.
func IsFocus(c models.Client, staffID string) bool {
	return slices.Contains(c.FocusStaffIDs, staffID)
}

// IsAllowedFloat reports whether a float may work with the client.
func IsAllowedFloat(c models.Client, s models.Staff) bool {
	return s.Role == models.RoleFloat && slices.Contains(c.AllowedFloatIDs, s.ID)
}

// IsAllowedLead reports whether a lead may work with the client.
func IsAllowedLead(c models.Client, s models.Staff) bool {
	return s.Role.IsLead() && slices.Contains(c.AllowedLeadIDs, s.ID)
}

// Substitute ranks, best first. RankNone means not eligible.
const (
	RankFocus = iota
	RankTrained
	RankFloat
	RankLead
	RankNone
)

// SubRank ranks how well the staff member fits as the client's session staff.
func SubRank(c models.Client, s models.Staff) int {
	switch {
	case !s.Active || IsExcluded(c, s.ID):
		return RankNone
	case IsFocus(c, s.ID):
		return RankFocus
	case IsTrained(c, s.ID):
		return RankTrained
	case IsAllowedFloat(c, s):
		return RankFloat
	case IsAllowedLead(c, s):
		return RankLead
	}
	return RankNone
}

// CanStaff reports whether the staff member may run a session with the client.
func CanStaff(c models.Client, s models.Staff) bool {
	return SubRank(c, s) != RankNone
}

// CanCoverLunch reports whether the staff member may supervise the client
// while ownerID (the client's own staff) is at lunch.
func CanCoverLunch(c models.Client, s models.Staff, ownerID string) bool {
	if !s.Active || s.ID == ownerID || IsExcluded(c, s.ID) {
		return false
	}
	if slices.Contains(c.LunchCoverageExcludedIDs, s.ID) {
		return false
	}
	if len(c.AllowedLunchCoverageIDs) > 0 && !slices.Contains(c.AllowedLunchCoverageIDs, s.ID) {
		return false
	}
	return true
}

// AllowsPeer honors a one-sided allow-list: when a declares peers, b must be one.
func AllowsPeer(a, b models.Client) bool {
	return len(a.AllowedPeerIDs) == 0 || slices.Contains(a.AllowedPeerIDs, b.ID)
}

// ForbidsPairing reports whether a refuses b for the given lunch half.
func ForbidsPairing(a, b models.Client, half timeutil.Half) bool {
	if half == timeutil.SecondHalf {
		return slices.Contains(a.NoPairSecondHalf, b.ID)
	}
	return slices.Contains(a.NoPairFirstHalf, b.ID)
}

// IsDisallowedCombo reports whether either side lists the other as a banned combo.
func IsDisallowedCombo(a, b models.Client) bool {
	return slices.Contains(a.DisallowedComboIDs, b.ID) || slices.Contains(b.DisallowedComboIDs, a.ID)
}

// CanPair reports whether two clients may share one staff member during the
// given lunch half. Group size is checked separately.
func CanPair(a, b models.Client, half timeutil.Half) bool {
	if !a.CanBeGrouped || !b.CanBeGrouped {
		return false
	}
	if !AllowsPeer(a, b) || !AllowsPeer(b, a) {
		return false
	}
	if ForbidsPairing(a, b, half) || ForbidsPairing(b, a, half) {
		return false
	}
	return !IsDisallowedCombo(a, b)
}
