package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/scheduler"
)

func TestPromSinkRecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}

	res := scheduler.Result{
		Schedule: []models.StaffSchedule{{
			StaffID: "ana",
			Slots: []models.Slot{
				{Block: "early", Source: models.SourceOffSchedule},
				{Block: "morning", Source: models.SourceTemplate},
				{Block: "afternoon", Source: models.SourceTemplate},
			},
		}},
		PendingApprovals: []models.ApprovalRequest{{ID: "a", Type: models.ApprovalSub, Status: models.StatusPending}},
	}
	sink.RecordRun(res, 20*time.Millisecond)

	expected := `
# HELP clinic_schedule_runs_total Total number of generated daily schedules
# TYPE clinic_schedule_runs_total counter
clinic_schedule_runs_total{finalizable="false"} 1
`
	if err := testutil.CollectAndCompare(sink.runs, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if got := testutil.ToFloat64(sink.slots.WithLabelValues("TEMPLATE")); got != 2 {
		t.Errorf("template slots = %v, want 2", got)
	}
	if got := testutil.ToFloat64(sink.approvals.WithLabelValues("sub_staffing")); got != 1 {
		t.Errorf("sub approvals = %v, want 1", got)
	}
	if c := testutil.CollectAndCount(sink.duration); c == 0 {
		t.Errorf("duration not recorded")
	}
}

func TestNewPromSinkReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSink(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	second, err := NewPromSink(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	if first.runs != second.runs {
		t.Errorf("expected the registered counter to be reused")
	}
}
