// Package training flags training sessions disrupted by the day's exceptions.
package training

import (
	"slices"
	"time"

	"github.com/arnavshah/clinic-scheduler-api/pkg/exceptions"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

// ScheduledOn reports whether the session runs on asOf: it must be active or
// scheduled, within its date range, and on one of its weekdays (any weekday
// when none are listed).
func ScheduledOn(ts models.TrainingSession, asOf time.Time) bool {
	if ts.Status != models.TrainingActive && ts.Status != models.TrainingScheduled {
		return false
	}
	if timeutil.DaysBetween(ts.StartDate, asOf) < 0 {
		return false
	}
	if ts.EndDate != nil && timeutil.DaysBetween(asOf, *ts.EndDate) < 0 {
		return false
	}
	return len(ts.Weekdays) == 0 || slices.Contains(ts.Weekdays, asOf.Weekday())
}

// Propagate returns at most one status update per session scheduled on asOf.
// A missing trainee or client blocks the session; a missing trainer only
// disrupts it.
func Propagate(sessions []models.TrainingSession, o exceptions.Overlay, asOf time.Time) []models.TrainingSessionUpdate {
	var out []models.TrainingSessionUpdate
	for _, ts := range sessions {
		if !ScheduledOn(ts, asOf) {
			continue
		}
		switch {
		case o.StaffOut(ts.TraineeID):
			out = append(out, models.TrainingSessionUpdate{SessionID: ts.ID, Status: models.TrainingBlocked, Reason: "Trainee is out"})
		case o.ClientUnavailable(ts.ClientID):
			out = append(out, models.TrainingSessionUpdate{SessionID: ts.ID, Status: models.TrainingBlocked, Reason: "Client is unavailable"})
		case o.StaffOut(ts.TrainerID):
			out = append(out, models.TrainingSessionUpdate{SessionID: ts.ID, Status: models.TrainingDisrupted, Reason: "Trainer is out"})
		}
	}
	return out
}
