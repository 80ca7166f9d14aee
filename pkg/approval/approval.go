// Package approval classifies staffing decisions that need a coordinator's
// sign-off and gives each one a stable identity across recomputation.
package approval

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
)

// namespace scopes request ids so they never collide with other SHA-1 uuids.
var namespace = uuid.MustParse("7d6f1c52-3b8e-5a0c-9e41-2f7b8c0d9a13")

// Check is the outcome of one approval predicate.
type Check struct {
	NeedsApproval bool                `json:"needs_approval"`
	ApprovalType  models.ApprovalType `json:"approval_type,omitempty"`
	Reason        string              `json:"reason,omitempty"`
}

// CheckSubApproval requires sign-off when the client does not accept
// substitutes and the pairing was not approved before.
func CheckSubApproval(c models.Client, staffID string, approved []models.ApprovedSub) Check {
	if c.AllowSub {
		return Check{}
	}
	for _, a := range approved {
		if a.ClientID == c.ID && a.StaffID == staffID {
			return Check{}
		}
	}
	return Check{
		NeedsApproval: true,
		ApprovalType:  models.ApprovalSub,
		Reason:        fmt.Sprintf("%s does not allow substitutes", c.Name),
	}
}

// CheckLeadApproval requires sign-off for assigning a lead. availableLeads
// counts the leads free before the assignment; when the assignment would
// leave the reserve threshold or fewer, the stricter reserve class applies.
func CheckLeadApproval(s models.Staff, availableLeads int, policy config.Policy) Check {
	if !s.Role.IsLead() {
		return Check{}
	}
	left := availableLeads - 1
	if left <= policy.LeadReserveThreshold {
		return Check{
			NeedsApproval: true,
			ApprovalType:  models.ApprovalLeadReserve,
			Reason:        fmt.Sprintf("Assigning %s leaves %d lead(s) available", s.Name, max(left, 0)),
		}
	}
	return Check{
		NeedsApproval: true,
		ApprovalType:  models.ApprovalLead,
		Reason:        fmt.Sprintf("Assigning lead %s", s.Name),
	}
}

// CheckAllDayStaffingApproval requires sign-off when one staff member has
// the same client both AM and PM.
func CheckAllDayStaffingApproval(amStaffID, pmStaffID string) Check {
	if amStaffID == "" || amStaffID != pmStaffID {
		return Check{}
	}
	return Check{
		NeedsApproval: true,
		ApprovalType:  models.ApprovalAllDay,
		Reason:        "Same staff assigned AM and PM",
	}
}

// RequestID derives the deterministic id of a decision.
func RequestID(t models.ApprovalType, clientID string, block models.Block, staffID string) string {
	key := strings.Join([]string{string(t), clientID, string(block), staffID}, "|")
	return uuid.NewSHA1(namespace, []byte(key)).String()
}

// NewRequest turns a positive check into a pending request.
func NewRequest(c Check, clientID string, block models.Block, staffID string) models.ApprovalRequest {
	return models.ApprovalRequest{
		ID:       RequestID(c.ApprovalType, clientID, block, staffID),
		Type:     c.ApprovalType,
		Status:   models.StatusPending,
		ClientID: clientID,
		StaffID:  staffID,
		Block:    block,
		Reason:   c.Reason,
	}
}

// Merge applies previously recorded decisions to a fresh computation.
// Requests still present keep an approved or denied status, requests no
// longer produced are dropped, and new ones stay pending.
func Merge(previous, current []models.ApprovalRequest) []models.ApprovalRequest {
	decided := make(map[string]models.ApprovalStatus, len(previous))
	for _, p := range previous {
		if p.Status == models.StatusApproved || p.Status == models.StatusDenied {
			decided[p.ID] = p.Status
		}
	}
	seen := make(map[string]bool, len(current))
	out := make([]models.ApprovalRequest, 0, len(current))
	for _, r := range current {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		if s, ok := decided[r.ID]; ok {
			r.Status = s
		} else {
			r.Status = models.StatusPending
		}
		out = append(out, r)
	}
	return out
}

// Blocking reports whether any request still waits for a decision.
func Blocking(reqs []models.ApprovalRequest) bool {
	for _, r := range reqs {
		if r.Status == models.StatusPending {
			return true
		}
	}
	return false
}
