package models

import "time"

// SlotSource tags where a grid value came from.
type SlotSource string

const (
	SourceTemplate    SlotSource = "TEMPLATE"
	SourceUnfilled    SlotSource = "UNFILLED"
	SourceCancel      SlotSource = "CANCEL"
	SourceOffSchedule SlotSource = "OFF_SCHEDULE"
	SourceRepair      SlotSource = "REPAIR"
)

// SlotSegment is one piece of a split slot.
type SlotSegment struct {
	Start    int        `json:"start"`
	End      int        `json:"end"`
	Value    string     `json:"value"`
	Source   SlotSource `json:"source"`
	ClientID *string    `json:"client_id,omitempty"`
	Location string     `json:"location,omitempty"`
}

// Slot is one of the six fixed daily time blocks for a staff member.
type Slot struct {
	Block    string        `json:"block"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
	Value    string        `json:"value"`
	Source   SlotSource    `json:"source"`
	Reason   string        `json:"reason"`
	ClientID *string       `json:"client_id,omitempty"`
	Location string        `json:"location,omitempty"`
	Segments []SlotSegment `json:"segments,omitempty"`
}

// StaffSchedule is one row of the daily grid.
type StaffSchedule struct {
	StaffID   string `json:"staff_id"`
	StaffName string `json:"staff_name"`
	Slots     []Slot `json:"slots"`
}

// LunchCoverageError reports a client with no legal lunch coverage. Any entry
// blocks finalization of the schedule.
type LunchCoverageError struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
	StaffID    string `json:"staff_id"`
	Slot       string `json:"slot"`
	Reason     string `json:"reason"`
}

// CoverageGap is a client block whose staff is out and that no replacement
// could legally fill.
type CoverageGap struct {
	ClientID string   `json:"client_id"`
	Block    Block    `json:"block"`
	StaffID  string   `json:"staff_id"`
	Reasons  []string `json:"reasons,omitempty"`
}

// TrainingSessionUpdate is a status change for a training session.
type TrainingSessionUpdate struct {
	SessionID string         `json:"session_id"`
	Status    TrainingStatus `json:"status"`
	Reason    string         `json:"reason"`
}

// ApprovalType is the class of human sign-off a decision needs.
type ApprovalType string

const (
	ApprovalSub         ApprovalType = "sub_staffing"
	ApprovalLead        ApprovalType = "lead_staffing"
	ApprovalLeadReserve ApprovalType = "lead_reserve"
	ApprovalAllDay      ApprovalType = "all_day_staffing"
)

// ApprovalStatus is the lifecycle of an approval request.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusDenied   ApprovalStatus = "denied"
)

// ApprovalRequest is a staffing decision awaiting (or holding) sign-off.
type ApprovalRequest struct {
	ID       string         `json:"id"`
	Type     ApprovalType   `json:"type"`
	Status   ApprovalStatus `json:"status"`
	ClientID string         `json:"client_id"`
	StaffID  string         `json:"staff_id"`
	Block    Block          `json:"block"`
	Reason   string         `json:"reason"`
}

// CancelTiming describes when a partially canceled client is (not) seen.
type CancelTiming string

const (
	TimingAllDay    CancelTiming = "all_day"
	TimingUntil1130 CancelTiming = "until_1130"
	TimingUntil1230 CancelTiming = "until_1230"
	TimingAt1130    CancelTiming = "at_1130"
	TimingAt1230    CancelTiming = "at_1230"
)

// CancelCandidate rolls up one client's coverage gaps for the cancel policy.
type CancelCandidate struct {
	ClientID         string     `json:"client_id"`
	ClientName       string     `json:"client_name"`
	Blocks           []Block    `json:"blocks"`
	CancelAllDayOnly bool       `json:"cancel_all_day_only"`
	CanBeGrouped     bool       `json:"can_be_grouped"`
	LastCanceledDate *time.Time `json:"last_canceled_date,omitempty"`
	IsProtected      bool       `json:"is_protected"`
	ProtectedReason  string     `json:"protected_reason,omitempty"`
	IsSkipped        bool       `json:"is_skipped"`
	SkipReason       string     `json:"skip_reason,omitempty"`
	UsesSkip         bool       `json:"uses_skip,omitempty"`
	SiblingIDs       []string   `json:"sibling_ids,omitempty"`
}

// HasBlock reports whether the candidate has a gap in b.
func (c CancelCandidate) HasBlock(b Block) bool {
	for _, x := range c.Blocks {
		if x == b || x == BlockAllDay {
			return true
		}
	}
	return false
}

// CancelDecision is the selected cancellation target.
type CancelDecision struct {
	ClientID     string            `json:"client_id"`
	ClientName   string            `json:"client_name"`
	Block        Block             `json:"block"`
	Blocks       []Block           `json:"blocks"`
	FullDay      bool              `json:"full_day"`
	Timing       CancelTiming      `json:"timing"`
	Reason       string            `json:"reason"`
	SiblingIDs   []string          `json:"sibling_ids,omitempty"`
	Skipped      []CancelCandidate `json:"skipped,omitempty"`
	SkipConsumed []string          `json:"skip_consumed,omitempty"`
}
