package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
)

func TestCheckSubApproval(t *testing.T) {
	strict := models.Client{ID: "c1", Name: "Ava"}
	open := models.Client{ID: "c2", Name: "Ben", AllowSub: true}

	got := CheckSubApproval(strict, "s1", nil)
	assert.True(t, got.NeedsApproval)
	assert.Equal(t, models.ApprovalSub, got.ApprovalType)

	assert.False(t, CheckSubApproval(open, "s1", nil).NeedsApproval)
	assert.False(t, CheckSubApproval(strict, "s1", []models.ApprovedSub{{ClientID: "c1", StaffID: "s1"}}).NeedsApproval)
	assert.True(t, CheckSubApproval(strict, "s2", []models.ApprovedSub{{ClientID: "c1", StaffID: "s1"}}).NeedsApproval)
}

func TestCheckLeadApproval(t *testing.T) {
	policy := config.DefaultPolicy()
	lead := models.Staff{ID: "l1", Name: "Lee", Role: models.RoleLead}

	tests := []struct {
		name      string
		staff     models.Staff
		available int
		want      Check
	}{
		{"not a lead", models.Staff{Role: models.RoleRBT}, 5, Check{}},
		{"plenty of leads", lead, 6, Check{NeedsApproval: true, ApprovalType: models.ApprovalLead, Reason: "Assigning lead Lee"}},
		{"five to four escalates", lead, 5, Check{NeedsApproval: true, ApprovalType: models.ApprovalLeadReserve, Reason: "Assigning Lee leaves 4 lead(s) available"}},
		{"senior lead counts", models.Staff{Name: "Sam", Role: models.RoleSeniorLead}, 2, Check{NeedsApproval: true, ApprovalType: models.ApprovalLeadReserve, Reason: "Assigning Sam leaves 1 lead(s) available"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckLeadApproval(tt.staff, tt.available, policy))
		})
	}
}

func TestCheckAllDayStaffingApproval(t *testing.T) {
	got := CheckAllDayStaffingApproval("s1", "s1")
	assert.True(t, got.NeedsApproval)
	assert.Equal(t, models.ApprovalAllDay, got.ApprovalType)
	assert.False(t, CheckAllDayStaffingApproval("s1", "s2").NeedsApproval)
	assert.False(t, CheckAllDayStaffingApproval("", "").NeedsApproval)
}

func TestRequestIDStable(t *testing.T) {
	a := RequestID(models.ApprovalSub, "c1", models.BlockAM, "s1")
	assert.Equal(t, a, RequestID(models.ApprovalSub, "c1", models.BlockAM, "s1"))
	assert.NotEqual(t, a, RequestID(models.ApprovalSub, "c1", models.BlockPM, "s1"))
	assert.NotEqual(t, a, RequestID(models.ApprovalLead, "c1", models.BlockAM, "s1"))
	assert.Len(t, a, 36)
}

func TestMerge(t *testing.T) {
	req := func(staff string, status models.ApprovalStatus) models.ApprovalRequest {
		r := NewRequest(Check{NeedsApproval: true, ApprovalType: models.ApprovalSub}, "c1", models.BlockAM, staff)
		r.Status = status
		return r
	}
	previous := []models.ApprovalRequest{
		req("kept", models.StatusApproved),
		req("denied", models.StatusDenied),
		req("gone", models.StatusApproved),
		req("waiting", models.StatusPending),
	}
	current := []models.ApprovalRequest{
		req("kept", models.StatusPending),
		req("denied", models.StatusPending),
		req("waiting", models.StatusPending),
		req("new", models.StatusPending),
		req("new", models.StatusPending),
	}

	got := Merge(previous, current)
	status := map[string]models.ApprovalStatus{}
	for _, r := range got {
		status[r.StaffID] = r.Status
	}
	assert.Equal(t, map[string]models.ApprovalStatus{
		"kept":    models.StatusApproved,
		"denied":  models.StatusDenied,
		"waiting": models.StatusPending,
		"new":     models.StatusPending,
	}, status)
	assert.Len(t, got, 4)
	assert.True(t, Blocking(got))
	assert.False(t, Blocking(got[:2]))
}
