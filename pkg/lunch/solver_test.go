package lunch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
	"github.com/arnavshah/clinic-scheduler-api/pkg/exceptions"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
	"github.com/arnavshah/clinic-scheduler-api/pkg/roster"
	"github.com/arnavshah/clinic-scheduler-api/pkg/timeutil"
)

func rbt(id string) models.Staff {
	return models.Staff{ID: id, Name: id, Role: models.RoleRBT, Active: true}
}

func client(id string) models.Client {
	return models.Client{ID: id, Name: id, Active: true}
}

func amSession(staffID, clientID string) roster.Assignment {
	return roster.Assignment{
		Weekday:  time.Monday,
		Block:    models.BlockAM,
		StaffID:  staffID,
		ClientID: models.StringPtr(clientID),
		Start:    510,
		End:      690,
	}
}

func pmSession(staffID, clientID string, start int) roster.Assignment {
	return roster.Assignment{
		Weekday:  time.Monday,
		Block:    models.BlockPM,
		StaffID:  staffID,
		ClientID: models.StringPtr(clientID),
		Start:    start,
		End:      960,
	}
}

func at(staffID string, block models.Block, locationID string) roster.Assignment {
	w := roster.DefaultWindow(block)
	return roster.Assignment{Weekday: time.Monday, Block: block, StaffID: staffID, LocationID: models.StringPtr(locationID), Start: w.Start, End: w.End}
}

func solve(in Input) Plan {
	in.Day = time.Monday
	if in.Overlay.UnavailableClients == nil {
		in.Overlay = exceptions.Build(nil, timeutil.Window{Start: 660, End: 750})
	}
	return NewSolver(config.DefaultPolicy(), nil).Solve(in)
}

func lunchSlot(t *testing.T, plan Plan, staffID string) timeutil.LunchSlot {
	t.Helper()
	l, ok := plan.LunchFor(staffID)
	require.True(t, ok, "no lunch for %s", staffID)
	return l.Slot
}

func TestSolveCoverageErrorWhenOnlyCandidateExcluded(t *testing.T) {
	c := client("C")
	c.ExcludedStaffIDs = []string{"S2"}
	plan := solve(Input{
		Staff:       []models.Staff{rbt("S1"), rbt("S2")},
		Clients:     []models.Client{c, client("X")},
		Assignments: []roster.Assignment{amSession("S1", "C"), pmSession("S2", "X", 780)},
	})

	assert.Contains(t, []timeutil.LunchSlot{timeutil.Slot1130, timeutil.Slot1200}, lunchSlot(t, plan, "S1"))
	assert.Equal(t, timeutil.Slot1230, lunchSlot(t, plan, "S2"))
	require.Len(t, plan.Errors, 1)
	assert.Equal(t, "C", plan.Errors[0].ClientID)
	assert.Equal(t, "S1", plan.Errors[0].StaffID)
	assert.Equal(t, ReasonNoCoverage, plan.Errors[0].Reason)
}

func TestSolveCoversWithOtherStaff(t *testing.T) {
	plan := solve(Input{
		Staff:       []models.Staff{rbt("S1"), rbt("S2")},
		Clients:     []models.Client{client("C"), client("X")},
		Assignments: []roster.Assignment{amSession("S1", "C"), pmSession("S2", "X", 780)},
	})

	require.Empty(t, plan.Errors)
	l, _ := plan.LunchFor("S1")
	coverer, ok := plan.CoveringStaff("C", l.Window)
	require.True(t, ok)
	assert.Equal(t, "S2", coverer)
}

func TestSolveExemptionsAndRules(t *testing.T) {
	noLunch := rbt("N")
	noLunch.NoLunch = true
	mustEat := rbt("M")
	mustEat.NoLunch = true
	mustEat.CannotSkipLunch = true
	noLate := rbt("L")
	noLate.NoLateLunch = true
	lead := models.Staff{ID: "LD", Name: "LD", Role: models.RoleLead, Active: true}
	out := rbt("O")

	plan := solve(Input{
		Staff:   []models.Staff{noLunch, mustEat, noLate, lead, out},
		Clients: []models.Client{client("c1"), client("c2"), client("c3")},
		Assignments: []roster.Assignment{
			amSession("M", "c1"),
			pmSession("L", "c2", 750),
			pmSession("N", "c3", 750),
		},
		Overlay: exceptions.Build([]models.Exception{
			{Type: models.ExceptionStaff, EntityID: "O", Mode: models.ModeOut, AllDay: true},
		}, timeutil.Window{Start: 660, End: 750}),
	})

	_, ok := plan.LunchFor("N")
	assert.False(t, ok, "no-lunch staff work through")
	_, ok = plan.LunchFor("O")
	assert.False(t, ok, "out staff are not planned")
	assert.NotEqual(t, timeutil.Slot1100, lunchSlot(t, plan, "M"), "AM session runs to 11:30")
	assert.NotEqual(t, timeutil.Slot1230, lunchSlot(t, plan, "L"), "no late lunch overrides the PM rule")
	assert.Equal(t, timeutil.Slot1200, lunchSlot(t, plan, "LD"), "lead without AM client prefers 12:00")

	coverer, ok := plan.CoveringStaff("c1", timeutil.SlotAt(lunchWindowStart(plan, "M")).Window())
	require.True(t, ok)
	assert.NotEqual(t, "M", coverer)
}

func lunchWindowStart(plan Plan, staffID string) int {
	l, _ := plan.LunchFor(staffID)
	return l.Window.Start
}

func TestSolveBalancesOwnersAcrossSlots(t *testing.T) {
	c1, c2 := client("C1"), client("C2")
	c1.CanBeGrouped = true
	c2.CanBeGrouped = true
	plan := solve(Input{
		Staff:       []models.Staff{rbt("S1"), rbt("S2"), rbt("S3")},
		Clients:     []models.Client{c1, c2},
		Assignments: []roster.Assignment{amSession("S1", "C1"), amSession("S2", "C2")},
	})

	require.Empty(t, plan.Errors)
	assert.NotEqual(t, lunchSlot(t, plan, "S1"), lunchSlot(t, plan, "S2"), "owners split between 11:30 and 12:00")
	for _, g := range plan.Groups {
		for _, m := range g.Covered() {
			assert.NotEqual(t, m.OwnerID, g.StaffID)
		}
	}
}

func TestSolveNeverGroupsForbiddenPairs(t *testing.T) {
	c1 := client("C1")
	c1.CanBeGrouped = true
	c2 := client("C2")
	c2.CanBeGrouped = true
	c2.NoPairFirstHalf = []string{"C1"}
	c2.NoPairSecondHalf = []string{"C1"}
	plan := solve(Input{
		Staff:       []models.Staff{rbt("S1"), rbt("S2")},
		Clients:     []models.Client{c1, c2},
		Assignments: []roster.Assignment{amSession("S1", "C1"), amSession("S2", "C2")},
	})

	for _, g := range plan.Groups {
		ids := map[string]bool{}
		for _, m := range g.Members {
			ids[m.ClientID] = true
		}
		assert.False(t, ids["C1"] && ids["C2"], "C1 and C2 grouped in %v", g.Window)
	}
	assert.NotEmpty(t, plan.Errors, "forbidden pairs leave the clients uncovered")
}

func TestSolveSkipsLunchUnavailableClients(t *testing.T) {
	plan := solve(Input{
		Staff:       []models.Staff{rbt("S1")},
		Clients:     []models.Client{client("C")},
		Assignments: []roster.Assignment{amSession("S1", "C")},
		Overlay: exceptions.Build([]models.Exception{
			{Type: models.ExceptionClient, EntityID: "C", Mode: models.ModeOut, StartMinute: models.IntPtr(700), EndMinute: models.IntPtr(800)},
		}, timeutil.Window{Start: 660, End: 750}),
	})
	assert.Empty(t, plan.Errors)
}

func TestSolveSplitLocationClient(t *testing.T) {
	split := func(pmStart *int) models.Client {
		c := client("K")
		c.Days = map[time.Weekday]models.DaySchedule{time.Monday: {Enabled: true, PMStart: pmStart}}
		return c
	}
	morning := amSession("A", "K")
	morning.LocationID = models.StringPtr("school-1")
	afternoon := pmSession("B", "K", 720)
	afternoon.LocationID = models.StringPtr("clinic")
	base := Input{
		Staff:       []models.Staff{rbt("A"), rbt("B"), rbt("H")},
		Assignments: []roster.Assignment{morning, afternoon},
	}

	t.Run("arrived by noon", func(t *testing.T) {
		in := base
		in.Clients = []models.Client{split(models.IntPtr(720))}
		plan := solve(in)
		require.Empty(t, plan.Errors)
		coverer, ok := plan.CoveringStaff("K", timeutil.Slot1200.Window())
		require.True(t, ok)
		assert.NotEqual(t, "A", coverer, "AM staff is at the school")
	})

	t.Run("default afternoon start has not arrived", func(t *testing.T) {
		in := base
		in.Clients = []models.Client{split(nil)}
		plan := solve(in)
		assert.Empty(t, plan.Errors)
		_, ok := plan.CoveringStaff("K", timeutil.Slot1200.Window())
		assert.False(t, ok)
	})
}

func TestSolveSchoolWindow(t *testing.T) {
	school := models.School{ID: "sch", Name: "Oak", LocationID: "oak", LunchStart: models.IntPtr(660), LunchEnd: models.IntPtr(720)}
	session := amSession("A", "K")
	session.LocationID = models.StringPtr("oak")

	plan := solve(Input{
		Staff:       []models.Staff{rbt("A"), rbt("B")},
		Clients:     []models.Client{client("K")},
		Assignments: []roster.Assignment{session, at("B", models.BlockAM, "oak")},
		Schools:     []models.School{school},
	})

	a, ok := plan.LunchFor("A")
	require.True(t, ok)
	b, ok := plan.LunchFor("B")
	require.True(t, ok)
	assert.Equal(t, timeutil.Window{Start: 660, End: 690}, b.Window, "staff without a school client take the first half")
	assert.Equal(t, timeutil.Window{Start: 690, End: 720}, a.Window)
	assert.Equal(t, "oak", a.SchoolID)
	require.Empty(t, plan.Errors)
	coverer, ok := plan.CoveringStaff("K", a.Window)
	require.True(t, ok)
	assert.Equal(t, "B", coverer)
}

func TestMatchCoverageRelocatesPlacedClient(t *testing.T) {
	a := client("A")
	a.CanBeGrouped = true
	a.ExcludedStaffIDs = []string{"OB"}
	b := client("B")
	b.CanBeGrouped = true
	b.ExcludedStaffIDs = []string{"OA"}
	b.DisallowedComboIDs = []string{"A", "Zc"}
	zc := client("Zc")
	zc.CanBeGrouped = true

	p := newProblem(Input{
		Day:         time.Monday,
		Staff:       []models.Staff{rbt("OA"), rbt("OB"), rbt("X"), rbt("Z")},
		Clients:     []models.Client{a, b, zc},
		Assignments: []roster.Assignment{amSession("OA", "A"), amSession("OB", "B"), amSession("Z", "Zc")},
		Overlay:     exceptions.Build(nil, timeutil.Window{Start: 660, End: 750}),
	}, config.DefaultPolicy())

	st := newState()
	st.lunch["OA"] = timeutil.Slot1130.Window()
	st.lunch["OB"] = timeutil.Slot1130.Window()
	st.lunch["X"] = timeutil.Slot1200.Window()
	st.lunch["Z"] = timeutil.Slot1200.Window()
	next := matchCoverage(p, st)
	plan := p.plan(next)

	require.Empty(t, plan.Errors)
	w := timeutil.Slot1130.Window()
	coverB, _ := plan.CoveringStaff("B", w)
	coverA, _ := plan.CoveringStaff("A", w)
	assert.Equal(t, "X", coverB)
	assert.Equal(t, "Z", coverA)
	assert.Empty(t, st.groups, "phases do not touch their input state")
}
