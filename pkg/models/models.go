package models

import "time"

// Block is one half of the clinic day for template purposes.
type Block string

const (
	BlockAM     Block = "AM"
	BlockPM     Block = "PM"
	BlockAllDay Block = "ALL_DAY"
)

// Role is the fixed set of staff roles the engine understands.
type Role string

const (
	RoleRBT        Role = "rbt"
	RoleFloat      Role = "float"
	RoleLead       Role = "lead"
	RoleSeniorLead Role = "senior_lead"
	RoleBCBA       Role = "bcba"
)

// IsLead reports whether the role counts toward the clinic-wide lead pool.
func (r Role) IsLead() bool {
	return r == RoleLead || r == RoleSeniorLead
}

// BCBAPrep describes the protected prep block a senior lead keeps on given weekdays.
type BCBAPrep struct {
	Weekdays []time.Weekday `json:"weekdays"`
	Block    Block          `json:"block"`
}

// Staff represents a person who can be assigned to clients
type Staff struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Role            Role       `json:"role"`
	Active          bool       `json:"active"`
	NoLunch         bool       `json:"no_lunch,omitempty"`
	CannotSkipLunch bool       `json:"cannot_skip_lunch,omitempty"`
	NoLateLunch     bool       `json:"no_late_lunch,omitempty"`
	HireDate        *time.Time `json:"hire_date,omitempty"`
	BCBAPrep        *BCBAPrep  `json:"bcba_prep,omitempty"`
}

// SkipsLunch reports whether the staff member works straight through lunch.
func (s Staff) SkipsLunch() bool {
	return s.NoLunch && !s.CannotSkipLunch
}

// HasPrepOn reports whether the staff member keeps a BCBA prep block on the weekday.
func (s Staff) HasPrepOn(day time.Weekday) (Block, bool) {
	if s.BCBAPrep == nil || s.Role != RoleSeniorLead {
		return "", false
	}
	for _, d := range s.BCBAPrep.Weekdays {
		if d == day {
			return s.BCBAPrep.Block, true
		}
	}
	return "", false
}

// DaySchedule is one weekday of a client's recurring attendance.
type DaySchedule struct {
	Enabled bool `json:"enabled"`
	Start   *int `json:"start,omitempty"`
	End     *int `json:"end,omitempty"`
	AMEnd   *int `json:"am_end,omitempty"`
	PMStart *int `json:"pm_start,omitempty"`
}

// Client represents a person receiving services
type Client struct {
	ID     string                       `json:"id"`
	Name   string                       `json:"name"`
	Active bool                         `json:"active"`
	Days   map[time.Weekday]DaySchedule `json:"days,omitempty"`

	// Staffing constraints
	ExcludedStaffIDs         []string `json:"excluded_staff_ids,omitempty"`
	NoLongerTrainedIDs       []string `json:"no_longer_trained_ids,omitempty"`
	TrainedStaffIDs          []string `json:"trained_staff_ids,omitempty"`
	FocusStaffIDs            []string `json:"focus_staff_ids,omitempty"`
	AllowedFloatIDs          []string `json:"allowed_float_ids,omitempty"`
	AllowedLeadIDs           []string `json:"allowed_lead_ids,omitempty"`
	LunchCoverageExcludedIDs []string `json:"lunch_coverage_excluded_ids,omitempty"`
	AllowedLunchCoverageIDs  []string `json:"allowed_lunch_coverage_ids,omitempty"`
	AllowSub                 bool     `json:"allow_sub"`

	// Lunch grouping
	CanBeGrouped       bool     `json:"can_be_grouped"`
	AllowedPeerIDs     []string `json:"allowed_peer_ids,omitempty"`
	NoPairFirstHalf    []string `json:"no_pair_first_half,omitempty"`
	NoPairSecondHalf   []string `json:"no_pair_second_half,omitempty"`
	DisallowedComboIDs []string `json:"disallowed_combo_ids,omitempty"`
	AllowGroupOf3      bool     `json:"allow_group_of_3,omitempty"`
	AllowGroupOf4      bool     `json:"allow_group_of_4,omitempty"`
	GroupLeaderName    string   `json:"group_leader_name,omitempty"`

	// Cancellation
	CancelAllDayOnly      bool       `json:"cancel_all_day_only,omitempty"`
	LastCanceledDate      *time.Time `json:"last_canceled_date,omitempty"`
	ConsecutiveAbsentDays int        `json:"consecutive_absent_days,omitempty"`
	ReturnAttendanceDays  int        `json:"return_attendance_days,omitempty"`
	CancelSkipUsed        bool       `json:"cancel_skip_used,omitempty"`
	CriticalNotes         string     `json:"critical_notes,omitempty"`
}

// DayFor returns the client's recurring schedule for a weekday.
func (c Client) DayFor(day time.Weekday) (DaySchedule, bool) {
	d, ok := c.Days[day]
	return d, ok
}

// CancelLink ties two clients (usually siblings) that are canceled together.
type CancelLink struct {
	ClientID       string `json:"client_id"`
	LinkedClientID string `json:"linked_client_id"`
}

// LocationKind classifies where a session happens.
type LocationKind string

const (
	LocationClinic LocationKind = "clinic"
	LocationSchool LocationKind = "school"
	LocationHome   LocationKind = "home"
)

// Location is a physical service site.
type Location struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Kind LocationKind `json:"kind"`
}

// School carries the alternative lunch window for a school location.
type School struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LocationID string `json:"location_id"`
	LunchStart *int   `json:"lunch_start,omitempty"`
	LunchEnd   *int   `json:"lunch_end,omitempty"`
}

// HasLunchWindow reports whether the school registered a usable lunch window.
func (s School) HasLunchWindow() bool {
	return s.LunchStart != nil && s.LunchEnd != nil && *s.LunchEnd > *s.LunchStart
}

// ClientLocation records where and since when a client is served.
type ClientLocation struct {
	ClientID         string     `json:"client_id"`
	LocationID       string     `json:"location_id"`
	Block            Block      `json:"block,omitempty"`
	ServiceStartDate *time.Time `json:"service_start_date,omitempty"`
}

// TrainingStatus is the lifecycle state of a training session.
type TrainingStatus string

const (
	TrainingScheduled TrainingStatus = "scheduled"
	TrainingActive    TrainingStatus = "active"
	TrainingCompleted TrainingStatus = "completed"
	TrainingBlocked   TrainingStatus = "blocked"
	TrainingDisrupted TrainingStatus = "disrupted"
)

// TrainingSession pairs a trainee with a trainer on a client.
type TrainingSession struct {
	ID        string         `json:"id"`
	TraineeID string         `json:"trainee_id"`
	TrainerID string         `json:"trainer_id"`
	ClientID  string         `json:"client_id"`
	Status    TrainingStatus `json:"status"`
	NewHire   bool           `json:"new_hire,omitempty"`
	StartDate time.Time      `json:"start_date"`
	EndDate   *time.Time     `json:"end_date,omitempty"`
	Weekdays  []time.Weekday `json:"weekdays,omitempty"`
}

// ApprovedSub is a substitute pairing a coordinator already signed off on.
type ApprovedSub struct {
	ClientID string `json:"client_id"`
	StaffID  string `json:"staff_id"`
	Block    Block  `json:"block,omitempty"`
}

// EngineData bundles the reference data one computation needs.
type EngineData struct {
	Staff            []Staff              `json:"staff"`
	Clients          []Client             `json:"clients"`
	Template         []TemplateAssignment `json:"template"`
	IdealDay         []IdealDaySegment    `json:"ideal_day,omitempty"`
	Locations        []Location           `json:"locations,omitempty"`
	ClientLocations  []ClientLocation     `json:"client_locations,omitempty"`
	Schools          []School             `json:"schools,omitempty"`
	CancelLinks      []CancelLink         `json:"cancel_links,omitempty"`
	TrainingSessions []TrainingSession    `json:"training_sessions,omitempty"`
}
