package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a sequence of governor
// operations driven over a manual clock, with expectations on check
// decisions.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file
	// base name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Limits overrides individual thresholds. Omitted fields keep the
	// governor defaults.
	Limits *LimitsSpec `yaml:"limits,omitempty"`

	// Steps is the operation sequence. Each step performs exactly one
	// operation.
	Steps []Step `yaml:"steps"`
}

// LimitsSpec mirrors the governor thresholds in YAML form. Zero fields
// mean "keep the default".
type LimitsSpec struct {
	MaxRecursionDepth      int `yaml:"maxRecursionDepth,omitempty"`
	MaxCallsPerMinute      int `yaml:"maxCallsPerMinute,omitempty"`
	CooldownSeconds        int `yaml:"cooldownSeconds,omitempty"`
	CleanupIntervalSeconds int `yaml:"cleanupIntervalSeconds,omitempty"`
}

// Step performs one governor operation. Exactly one of Record, Check,
// Reset, ResetAll, or Advance must be set.
type Step struct {
	// Record appends a call event for the named identifier.
	Record string `yaml:"record,omitempty"`

	// Check runs an admission check for the named identifier.
	Check string `yaml:"check,omitempty"`

	// Reset clears the named identifier's circuit and records.
	Reset string `yaml:"reset,omitempty"`

	// ResetAll replaces the whole state document.
	ResetAll bool `yaml:"reset_all,omitempty"`

	// Advance moves the scenario clock forward, e.g. "90s" or "5m1s".
	Advance string `yaml:"advance,omitempty"`

	// Parent names the inviting work unit for record and check steps.
	Parent string `yaml:"parent,omitempty"`

	// Expect validates the decision of a check step. Steps without an
	// expect clause are assumed to be allowed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected check decision.
type ExpectClause struct {
	// Allowed is the expected admission outcome. Required.
	Allowed *bool `yaml:"allowed"`

	// Code is the expected denial code (e.g. "DEPTH_EXCEEDED").
	// Only validated when non-empty.
	Code string `yaml:"code,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Returns an error if
// the file doesn't exist, is malformed, contains unknown fields (typos),
// or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.Limits != nil {
		if err := validateLimits(s.Limits); err != nil {
			return err
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	return nil
}

func validateLimits(l *LimitsSpec) error {
	fields := []struct {
		name  string
		value int
	}{
		{"maxRecursionDepth", l.MaxRecursionDepth},
		{"maxCallsPerMinute", l.MaxCallsPerMinute},
		{"cooldownSeconds", l.CooldownSeconds},
		{"cleanupIntervalSeconds", l.CleanupIntervalSeconds},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("limits.%s must not be negative, got %d", f.name, f.value)
		}
	}
	return nil
}

// validateStep ensures exactly one operation is set and that modifiers
// only appear where they apply.
func validateStep(index int, s *Step) error {
	ops := 0
	if s.Record != "" {
		ops++
	}
	if s.Check != "" {
		ops++
	}
	if s.Reset != "" {
		ops++
	}
	if s.ResetAll {
		ops++
	}
	if s.Advance != "" {
		ops++
	}
	if ops != 1 {
		return fmt.Errorf("steps[%d]: exactly one of record, check, reset, reset_all, advance is required", index)
	}

	if s.Parent != "" && s.Record == "" && s.Check == "" {
		return fmt.Errorf("steps[%d]: parent only applies to record and check steps", index)
	}

	if s.Expect != nil {
		if s.Check == "" {
			return fmt.Errorf("steps[%d]: expect only applies to check steps", index)
		}
		if s.Expect.Allowed == nil {
			return fmt.Errorf("steps[%d].expect: allowed is required", index)
		}
	}

	if s.Advance != "" {
		d, err := time.ParseDuration(s.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d]: invalid advance duration %q: %w", index, s.Advance, err)
		}
		if d <= 0 {
			return fmt.Errorf("steps[%d]: advance must be positive, got %q", index, s.Advance)
		}
	}

	return nil
}
