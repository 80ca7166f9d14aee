package models

import "time"

// TemplateAssignment is one row of the recurring weekly plan. Several rows
// sharing (weekday, block, staff) describe a multi-segment half day.
type TemplateAssignment struct {
	ID          string       `json:"id"`
	Weekday     time.Weekday `json:"weekday"`
	Block       Block        `json:"block"`
	StaffID     string       `json:"staff_id"`
	ClientID    *string      `json:"client_id,omitempty"`
	LocationID  *string      `json:"location_id,omitempty"`
	StartMinute *int         `json:"start_minute,omitempty"`
	EndMinute   *int         `json:"end_minute,omitempty"`
	Label       string       `json:"label,omitempty"`
}

// IdealDaySegment overrides the template for a single weekday.
type IdealDaySegment TemplateAssignment

// ExceptionType names the entity an exception applies to.
type ExceptionType string

const (
	ExceptionClient ExceptionType = "client"
	ExceptionStaff  ExceptionType = "staff"
)

// ExceptionMode is what happened to the entity today.
type ExceptionMode string

const (
	ModeIn        ExceptionMode = "in"
	ModeOut       ExceptionMode = "out"
	ModeCancelled ExceptionMode = "cancelled"
	ModeLocation  ExceptionMode = "location"
)

// Exception is an ad-hoc same-day change to staff or client availability.
type Exception struct {
	Type        ExceptionType `json:"type"`
	EntityID    string        `json:"entity_id"`
	Mode        ExceptionMode `json:"mode"`
	AllDay      bool          `json:"all_day"`
	StartMinute *int          `json:"start_minute,omitempty"`
	EndMinute   *int          `json:"end_minute,omitempty"`
	LocationID  *string       `json:"location_id,omitempty"`
	Reason      string        `json:"reason,omitempty"`
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// IntValue dereferences p, returning def for nil.
func IntValue(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to a copy of n.
func IntPtr(n int) *int { return &n }
