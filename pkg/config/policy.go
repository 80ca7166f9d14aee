package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPolicy is returned when a policy file fails validation.
var ErrInvalidPolicy = errors.New("config: invalid policy")

// Policy holds the engine tunables. Minutes are counted from midnight.
type Policy struct {
	// LunchWindowStart and LunchWindowEnd bound the window in which a partial
	// client absence removes the client from lunch coverage.
	LunchWindowStart int `yaml:"lunch_window_start" json:"lunch_window_start"`
	LunchWindowEnd   int `yaml:"lunch_window_end" json:"lunch_window_end"`
	// CoverageThreshold is the AM end at or after which a client stays through lunch.
	CoverageThreshold int `yaml:"coverage_threshold" json:"coverage_threshold"`
	// MandatoryLateLunchCutoff forces the 12:30 lunch for staff whose PM
	// client starts at or before this minute.
	MandatoryLateLunchCutoff int `yaml:"mandatory_late_lunch_cutoff" json:"mandatory_late_lunch_cutoff"`
	// DefaultPMStart is assumed for split-location clients with no PM start.
	DefaultPMStart int `yaml:"default_pm_start" json:"default_pm_start"`
	// SplitPresenceCutoff is the latest PM start that counts as arrived for 12:00.
	SplitPresenceCutoff int `yaml:"split_presence_cutoff" json:"split_presence_cutoff"`

	ProtectionDays       int  `yaml:"protection_days" json:"protection_days"`
	NewHireDays          int  `yaml:"new_hire_days" json:"new_hire_days"`
	LeadReserveThreshold int  `yaml:"lead_reserve_threshold" json:"lead_reserve_threshold"`
	SkipMaxWeekdays      int  `yaml:"skip_max_weekdays" json:"skip_max_weekdays"`
	AbsentDaysThreshold  int  `yaml:"absent_days_threshold" json:"absent_days_threshold"`
	ReturnDaysRequired   int  `yaml:"return_days_required" json:"return_days_required"`
	PreferFullDay        bool `yaml:"prefer_full_day" json:"prefer_full_day"`

	DefaultLocationID string `yaml:"default_location_id" json:"default_location_id"`
}

// DefaultPolicy returns the clinic's standing rules.
func DefaultPolicy() Policy {
	var p Policy
	p.PreferFullDay = true
	p.SetDefaults()
	return p
}

// SetDefaults fills zero values with the standing rules.
func (p *Policy) SetDefaults() {
	if p.LunchWindowStart == 0 {
		p.LunchWindowStart = 11 * 60
	}
	if p.LunchWindowEnd == 0 {
		p.LunchWindowEnd = 12*60 + 30
	}
	if p.CoverageThreshold == 0 {
		p.CoverageThreshold = 11*60 + 30
	}
	if p.MandatoryLateLunchCutoff == 0 {
		p.MandatoryLateLunchCutoff = 13 * 60
	}
	if p.DefaultPMStart == 0 {
		p.DefaultPMStart = 12*60 + 30
	}
	if p.SplitPresenceCutoff == 0 {
		p.SplitPresenceCutoff = 12 * 60
	}
	if p.ProtectionDays == 0 {
		p.ProtectionDays = 30
	}
	if p.NewHireDays == 0 {
		p.NewHireDays = 30
	}
	if p.LeadReserveThreshold == 0 {
		p.LeadReserveThreshold = 4
	}
	if p.SkipMaxWeekdays == 0 {
		p.SkipMaxWeekdays = 2
	}
	if p.AbsentDaysThreshold == 0 {
		p.AbsentDaysThreshold = 5
	}
	if p.ReturnDaysRequired == 0 {
		p.ReturnDaysRequired = 3
	}
	if p.DefaultLocationID == "" {
		p.DefaultLocationID = "clinic"
	}
}

// Validate checks that the windows are consistent.
func (p Policy) Validate() error {
	if p.LunchWindowEnd <= p.LunchWindowStart {
		return fmt.Errorf("%w: lunch window end %d not after start %d", ErrInvalidPolicy, p.LunchWindowEnd, p.LunchWindowStart)
	}
	if p.ProtectionDays < 0 || p.NewHireDays < 0 {
		return fmt.Errorf("%w: protection windows must not be negative", ErrInvalidPolicy)
	}
	if p.LeadReserveThreshold < 0 {
		return fmt.Errorf("%w: lead reserve threshold must not be negative", ErrInvalidPolicy)
	}
	return nil
}

// LoadPolicy reads a YAML policy file. An empty path yields the defaults.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("config: read policy %s: %w", path, err)
	}
	return ParsePolicy(data)
}

// ParsePolicy unmarshals YAML bytes into a validated Policy. Keys left out
// keep their default values.
func ParsePolicy(data []byte) (Policy, error) {
	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("config: parse policy: %w", err)
	}
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}
