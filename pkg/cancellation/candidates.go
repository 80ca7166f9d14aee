// Package cancellation decides which client to cancel when a coverage gap
// cannot be filled.
package cancellation

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/roster"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

// CandidateInput is the reference data BuildCandidates reads.
type CandidateInput struct {
	AsOf             time.Time
	Clients          []models.Client
	Staff            []models.Staff
	Template         []models.TemplateAssignment
	ClientLocations  []models.ClientLocation
	TrainingSessions []models.TrainingSession
	CancelLinks      []models.CancelLink
	Policy           config.Policy
}

// BuildCandidates rolls gaps up into one candidate per client, flagging
// protection and skip rules. Candidates are ordered by client name.
func BuildCandidates(gaps []models.CoverageGap, in CandidateInput) []models.CancelCandidate {
	clients := make(map[string]models.Client, len(in.Clients))
	for _, c := range in.Clients {
		clients[c.ID] = c
	}

	blocks := make(map[string][]models.Block)
	var ids []string
	for _, g := range gaps {
		if _, ok := blocks[g.ClientID]; !ok {
			ids = append(ids, g.ClientID)
		}
		if !slices.Contains(blocks[g.ClientID], g.Block) {
			blocks[g.ClientID] = append(blocks[g.ClientID], g.Block)
		}
	}

	out := make([]models.CancelCandidate, 0, len(ids))
	for _, id := range ids {
		c, ok := clients[id]
		if !ok {
			c = models.Client{ID: id, Name: "Unknown"}
		}
		bs := blocks[id]
		slices.Sort(bs)
		cand := models.CancelCandidate{
			ClientID:         id,
			ClientName:       c.Name,
			Blocks:           bs,
			CancelAllDayOnly: c.CancelAllDayOnly,
			CanBeGrouped:     c.CanBeGrouped,
			LastCanceledDate: c.LastCanceledDate,
			SiblingIDs:       Siblings(in.CancelLinks, id),
		}
		if reason, ok := protection(c, in); ok {
			cand.IsProtected = true
			cand.ProtectedReason = reason
		}
		if reason, usesSkip, ok := skip(c, in); ok {
			cand.IsSkipped = true
			cand.SkipReason = reason
			cand.UsesSkip = usesSkip
		}
		out = append(out, cand)
	}
	slices.SortFunc(out, func(a, b models.CancelCandidate) int {
		if c := cmp.Compare(a.ClientName, b.ClientName); c != 0 {
			return c
		}
		return cmp.Compare(a.ClientID, b.ClientID)
	})
	return out
}

// protection reports whether the client is in a grace period. A location
// that started exactly ProtectionDays ago is no longer protected; one that
// starts in the future is.
func protection(c models.Client, in CandidateInput) (string, bool) {
	for _, cl := range in.ClientLocations {
		if cl.ClientID != c.ID || cl.ServiceStartDate == nil {
			continue
		}
		if timeutil.DaysBetween(*cl.ServiceStartDate, in.AsOf) < in.Policy.ProtectionDays {
			return fmt.Sprintf("New service at %s since %s", cl.LocationID, cl.ServiceStartDate.Format(time.DateOnly)), true
		}
	}

	hired := make(map[string]*time.Time, len(in.Staff))
	for _, s := range in.Staff {
		hired[s.ID] = s.HireDate
	}
	for _, ts := range in.TrainingSessions {
		if ts.ClientID != c.ID || !ts.NewHire || ts.Status != models.TrainingActive {
			continue
		}
		hire := hired[ts.TraineeID]
		if hire != nil && timeutil.DaysBetween(*hire, in.AsOf) < in.Policy.NewHireDays {
			return fmt.Sprintf("New-hire training with %s in progress", ts.TraineeID), true
		}
	}
	return "", false
}

// skip applies the two deferral rules. usesSkip is true when the one-time
// skip for infrequent clients is spent.
func skip(c models.Client, in CandidateInput) (reason string, usesSkip, ok bool) {
	days := roster.ScheduledWeekdays(in.Template, c.ID)
	if len(days) <= in.Policy.SkipMaxWeekdays && !c.CancelSkipUsed {
		return fmt.Sprintf("Attends %d day(s) a week; first cancellation skipped", len(days)), true, true
	}
	if c.ConsecutiveAbsentDays >= in.Policy.AbsentDaysThreshold && c.ReturnAttendanceDays < in.Policy.ReturnDaysRequired {
		return fmt.Sprintf("Returning after %d absent day(s); %d of %d return days attended",
			c.ConsecutiveAbsentDays, c.ReturnAttendanceDays, in.Policy.ReturnDaysRequired), false, true
	}
	return "", false, false
}

// Siblings returns the clients linked to id in either direction.
func Siblings(links []models.CancelLink, id string) []string {
	var out []string
	for _, l := range links {
		var other string
		switch id {
		case l.ClientID:
			other = l.LinkedClientID
		case l.LinkedClientID:
			other = l.ClientID
		default:
			continue
		}
		if other != id && !slices.Contains(out, other) {
			out = append(out, other)
		}
	}
	slices.Sort(out)
	return out
}
