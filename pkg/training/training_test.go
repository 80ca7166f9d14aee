package training

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arnavshah/clinic-scheduler-api/pkg/exceptions"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

var monday = time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)

func session(id string) models.TrainingSession {
	return models.TrainingSession{
		ID:        id,
		TraineeID: "trainee",
		TrainerID: "trainer",
		ClientID:  "c1",
		Status:    models.TrainingActive,
		StartDate: monday.AddDate(0, 0, -7),
	}
}

func TestScheduledOn(t *testing.T) {
	ended := monday.AddDate(0, 0, -1)
	tests := []struct {
		name   string
		mutate func(*models.TrainingSession)
		want   bool
	}{
		{"active", func(*models.TrainingSession) {}, true},
		{"scheduled", func(s *models.TrainingSession) { s.Status = models.TrainingScheduled }, true},
		{"completed", func(s *models.TrainingSession) { s.Status = models.TrainingCompleted }, false},
		{"not started", func(s *models.TrainingSession) { s.StartDate = monday.AddDate(0, 0, 1) }, false},
		{"starts today", func(s *models.TrainingSession) { s.StartDate = monday }, true},
		{"ended", func(s *models.TrainingSession) { s.EndDate = &ended }, false},
		{"ends today", func(s *models.TrainingSession) { s.EndDate = &monday }, true},
		{"weekday match", func(s *models.TrainingSession) { s.Weekdays = []time.Weekday{time.Monday} }, true},
		{"weekday miss", func(s *models.TrainingSession) { s.Weekdays = []time.Weekday{time.Tuesday} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session("t1")
			tt.mutate(&s)
			assert.Equal(t, tt.want, ScheduledOn(s, monday))
		})
	}
}

func TestPropagate(t *testing.T) {
	out := func(kind models.ExceptionType, id string) models.Exception {
		return models.Exception{Type: kind, EntityID: id, Mode: models.ModeOut, AllDay: true}
	}
	lunch := timeutil.Window{Start: 660, End: 750}

	tests := []struct {
		name string
		ex   []models.Exception
		want []models.TrainingSessionUpdate
	}{
		{"no exceptions", nil, nil},
		{
			"trainee out",
			[]models.Exception{out(models.ExceptionStaff, "trainee"), out(models.ExceptionStaff, "trainer")},
			[]models.TrainingSessionUpdate{{SessionID: "t1", Status: models.TrainingBlocked, Reason: "Trainee is out"}},
		},
		{
			"client out",
			[]models.Exception{out(models.ExceptionClient, "c1")},
			[]models.TrainingSessionUpdate{{SessionID: "t1", Status: models.TrainingBlocked, Reason: "Client is unavailable"}},
		},
		{
			"trainer out",
			[]models.Exception{out(models.ExceptionStaff, "trainer")},
			[]models.TrainingSessionUpdate{{SessionID: "t1", Status: models.TrainingDisrupted, Reason: "Trainer is out"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := exceptions.Build(tt.ex, lunch)
			assert.Equal(t, tt.want, Propagate([]models.TrainingSession{session("t1")}, o, monday))
		})
	}
}

func TestPropagateSkipsUnscheduled(t *testing.T) {
	s := session("t1")
	s.Weekdays = []time.Weekday{time.Friday}
	o := exceptions.Build([]models.Exception{{Type: models.ExceptionStaff, EntityID: "trainee", Mode: models.ModeOut, AllDay: true}}, timeutil.Window{Start: 660, End: 750})
	assert.Empty(t, Propagate([]models.TrainingSession{s}, o, monday))
}
