package cancellation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
)

var asOf = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := asOf.AddDate(0, 0, -n)
	return &t
}

func weekly(clientID string, days ...time.Weekday) []models.TemplateAssignment {
	var rows []models.TemplateAssignment
	for _, d := range days {
		rows = append(rows, models.TemplateAssignment{Weekday: d, Block: models.BlockAM, StaffID: "s", ClientID: models.StringPtr(clientID)})
	}
	return rows
}

var fullWeek = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

func TestSelectCancelTargetPrefersFullDay(t *testing.T) {
	d := models.CancelCandidate{ClientID: "D", ClientName: "D", CancelAllDayOnly: true, Blocks: []models.Block{models.BlockAM, models.BlockPM}}
	e := models.CancelCandidate{ClientID: "E", ClientName: "E", Blocks: []models.Block{models.BlockAM}, LastCanceledDate: daysAgo(3)}

	got := SelectCancelTarget([]models.CancelCandidate{e, d}, true)
	require.NotNil(t, got)
	assert.Equal(t, "D", got.ClientID)
	assert.Equal(t, models.BlockAllDay, got.Block)
	assert.True(t, got.FullDay)
	assert.Equal(t, models.TimingAllDay, got.Timing)
}

func TestSelectCancelTargetRotation(t *testing.T) {
	older := models.CancelCandidate{ClientID: "a", ClientName: "Ann", Blocks: []models.Block{models.BlockPM}, LastCanceledDate: daysAgo(40)}
	recent := models.CancelCandidate{ClientID: "b", ClientName: "Ben", Blocks: []models.Block{models.BlockAM}, LastCanceledDate: daysAgo(2)}
	never := models.CancelCandidate{ClientID: "c", ClientName: "Cal", Blocks: []models.Block{models.BlockAM}, CanBeGrouped: true}

	got := SelectCancelTarget([]models.CancelCandidate{older, recent, never}, false)
	require.NotNil(t, got)
	assert.Equal(t, "c", got.ClientID, "never canceled goes first")
	assert.Equal(t, models.TimingUntil1130, got.Timing)

	got = SelectCancelTarget([]models.CancelCandidate{recent, older}, false)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ClientID)
	assert.Equal(t, models.BlockPM, got.Block)
	assert.Equal(t, models.TimingAt1130, got.Timing)
}

func TestSelectCancelTargetFiltersProtectedAndSkipped(t *testing.T) {
	protected := models.CancelCandidate{ClientID: "p", ClientName: "P", Blocks: []models.Block{models.BlockAM}, IsProtected: true}
	skipped := models.CancelCandidate{ClientID: "s", ClientName: "S", Blocks: []models.Block{models.BlockAM}, IsSkipped: true, UsesSkip: true, SkipReason: "x"}

	assert.Nil(t, SelectCancelTarget([]models.CancelCandidate{protected, skipped}, true))

	ok := models.CancelCandidate{ClientID: "o", ClientName: "O", Blocks: []models.Block{models.BlockAM}, SiblingIDs: []string{"sib"}}
	got := SelectCancelTarget([]models.CancelCandidate{protected, skipped, ok}, true)
	require.NotNil(t, got)
	assert.Equal(t, "o", got.ClientID)
	assert.Equal(t, []string{"sib"}, got.SiblingIDs)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, "s", got.Skipped[0].ClientID)
	assert.Equal(t, []string{"s"}, got.SkipConsumed)
}

func TestSelectCancelTargetWithoutBlocks(t *testing.T) {
	empty := models.CancelCandidate{ClientID: "x", ClientName: "X"}
	am := models.CancelCandidate{ClientID: "y", ClientName: "Y", Blocks: []models.Block{models.BlockAM}}
	allDay := models.CancelCandidate{ClientID: "z", ClientName: "Z", CancelAllDayOnly: true}

	tests := []struct {
		name       string
		candidates []models.CancelCandidate
		want       string
		block      models.Block
	}{
		{"only block-less", []models.CancelCandidate{empty}, "", ""},
		{"block-less is passed over", []models.CancelCandidate{empty, am}, "y", models.BlockAM},
		{"all-day-only needs no blocks", []models.CancelCandidate{empty, allDay}, "z", models.BlockAllDay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectCancelTarget(tt.candidates, false)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ClientID)
			assert.Equal(t, tt.block, got.Block)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestTiming(t *testing.T) {
	assert.Equal(t, models.TimingUntil1130, Timing(models.BlockAM, true))
	assert.Equal(t, models.TimingUntil1230, Timing(models.BlockAM, false))
	assert.Equal(t, models.TimingAt1230, Timing(models.BlockPM, true))
	assert.Equal(t, models.TimingAt1130, Timing(models.BlockPM, false))
	assert.Equal(t, models.TimingAllDay, Timing(models.BlockAllDay, false))
}

func TestProtectionBoundary(t *testing.T) {
	for _, tc := range []struct {
		days      int
		protected bool
	}{{30, false}, {29, true}, {0, true}, {45, false}, {-5, true}} {
		in := CandidateInput{
			AsOf:            asOf,
			Clients:         []models.Client{{ID: "c", Name: "C", Active: true}},
			Template:        weekly("c", fullWeek...),
			ClientLocations: []models.ClientLocation{{ClientID: "c", LocationID: "clinic", ServiceStartDate: daysAgo(tc.days)}},
			Policy:          config.DefaultPolicy(),
		}
		got := BuildCandidates([]models.CoverageGap{{ClientID: "c", Block: models.BlockAM}}, in)
		require.Len(t, got, 1)
		assert.Equal(t, tc.protected, got[0].IsProtected, "service started %d days ago", tc.days)
	}
}

func TestNewHireTrainingProtects(t *testing.T) {
	in := CandidateInput{
		AsOf:     asOf,
		Clients:  []models.Client{{ID: "c", Name: "C"}},
		Staff:    []models.Staff{{ID: "new", HireDate: daysAgo(10)}, {ID: "old", HireDate: daysAgo(400)}},
		Template: weekly("c", fullWeek...),
		Policy:   config.DefaultPolicy(),
	}
	gaps := []models.CoverageGap{{ClientID: "c", Block: models.BlockPM}}

	in.TrainingSessions = []models.TrainingSession{{ID: "t", TraineeID: "new", ClientID: "c", Status: models.TrainingActive, NewHire: true}}
	assert.True(t, BuildCandidates(gaps, in)[0].IsProtected)

	in.TrainingSessions[0].TraineeID = "old"
	assert.False(t, BuildCandidates(gaps, in)[0].IsProtected)

	in.TrainingSessions[0].TraineeID = "new"
	in.TrainingSessions[0].Status = models.TrainingCompleted
	assert.False(t, BuildCandidates(gaps, in)[0].IsProtected)
}

func TestSkipRules(t *testing.T) {
	gaps := []models.CoverageGap{{ClientID: "c", Block: models.BlockAM}}
	base := CandidateInput{AsOf: asOf, Template: weekly("c", time.Monday, time.Thursday), Policy: config.DefaultPolicy()}

	t.Run("two-day client skipped once", func(t *testing.T) {
		in := base
		in.Clients = []models.Client{{ID: "c", Name: "C"}}
		got := BuildCandidates(gaps, in)[0]
		assert.True(t, got.IsSkipped)
		assert.True(t, got.UsesSkip)

		in.Clients[0].CancelSkipUsed = true
		got = BuildCandidates(gaps, in)[0]
		assert.False(t, got.IsSkipped, "skip already spent")
	})

	t.Run("returning from long absence", func(t *testing.T) {
		in := base
		in.Template = weekly("c", fullWeek...)
		in.Clients = []models.Client{{ID: "c", Name: "C", ConsecutiveAbsentDays: 5, ReturnAttendanceDays: 2}}
		got := BuildCandidates(gaps, in)[0]
		assert.True(t, got.IsSkipped)
		assert.False(t, got.UsesSkip)

		in.Clients[0].ReturnAttendanceDays = 3
		assert.False(t, BuildCandidates(gaps, in)[0].IsSkipped)

		in.Clients[0].ConsecutiveAbsentDays = 4
		in.Clients[0].ReturnAttendanceDays = 0
		assert.False(t, BuildCandidates(gaps, in)[0].IsSkipped)
	})
}

func TestBuildCandidatesRollsUpBlocksAndSiblings(t *testing.T) {
	in := CandidateInput{
		AsOf:        asOf,
		Clients:     []models.Client{{ID: "b", Name: "Bea"}, {ID: "a", Name: "Al", CanBeGrouped: true}},
		Template:    append(weekly("a", fullWeek...), weekly("b", fullWeek...)...),
		CancelLinks: []models.CancelLink{{ClientID: "z", LinkedClientID: "a"}, {ClientID: "a", LinkedClientID: "y"}},
		Policy:      config.DefaultPolicy(),
	}
	got := BuildCandidates([]models.CoverageGap{
		{ClientID: "b", Block: models.BlockPM},
		{ClientID: "a", Block: models.BlockPM},
		{ClientID: "a", Block: models.BlockAM},
		{ClientID: "a", Block: models.BlockAM},
	}, in)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ClientID)
	assert.Equal(t, []models.Block{models.BlockAM, models.BlockPM}, got[0].Blocks)
	assert.Equal(t, []string{"y", "z"}, got[0].SiblingIDs)
	assert.True(t, got[0].CanBeGrouped)
	assert.Equal(t, []models.Block{models.BlockPM}, got[1].Blocks)
}
