// Package harness executes conformance scenarios against the governor.
//
// Scenarios are YAML files describing a sequence of record, check, reset,
// and clock-advance steps with expectations on check decisions. Each run
// uses a fresh in-memory store, a manual clock pinned to a fixed epoch,
// and sequential record IDs, so the produced trace is byte-for-byte
// reproducible and can be compared against golden files.
package harness

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/gatekeep/internal/governor"
	"github.com/roach88/gatekeep/internal/state"
	"github.com/roach88/gatekeep/internal/testutil"
)

// scenarioEpoch is the instant every scenario clock starts at.
var scenarioEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Run executes a scenario and returns the result.
//
// The returned error reports execution problems (bad steps, persistence
// failures); expectation mismatches are reported through Result.Errors
// with Result.Pass false.
func Run(scenario *Scenario) (*Result, error) {
	clock := testutil.NewManualClock(scenarioEpoch)

	opts := []governor.Option{
		governor.WithClock(clock),
		governor.WithIDGenerator(testutil.NewSeqIDGenerator("call")),
		governor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	if scenario.Limits != nil {
		opts = append(opts, governor.WithLimits(resolveLimits(scenario.Limits)))
	}
	g := governor.New(state.NewMemStore(), opts...)

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := executeStep(g, clock, &step, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return result, nil
}

// resolveLimits merges a LimitsSpec over the defaults.
func resolveLimits(spec *LimitsSpec) governor.Limits {
	limits := governor.DefaultLimits()
	if spec.MaxRecursionDepth > 0 {
		limits.MaxRecursionDepth = spec.MaxRecursionDepth
	}
	if spec.MaxCallsPerMinute > 0 {
		limits.MaxCallsPerMinute = spec.MaxCallsPerMinute
	}
	if spec.CooldownSeconds > 0 {
		limits.Cooldown = time.Duration(spec.CooldownSeconds) * time.Second
	}
	if spec.CleanupIntervalSeconds > 0 {
		limits.CleanupInterval = time.Duration(spec.CleanupIntervalSeconds) * time.Second
	}
	return limits
}

func executeStep(g *governor.Governor, clock *testutil.ManualClock, step *Step, result *Result) error {
	switch {
	case step.Advance != "":
		// Validated at load time; re-parse for direct Run callers.
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("invalid advance duration %q: %w", step.Advance, err)
		}
		clock.Advance(d)
		result.Trace = append(result.Trace, TraceEvent{
			T:       offset(clock),
			Type:    "advance",
			Seconds: int(d.Seconds()),
		})

	case step.Record != "":
		rec, err := g.RecordCall(step.Record, step.Parent)
		if err != nil {
			return fmt.Errorf("record %s: %w", step.Record, err)
		}
		depth := rec.Depth
		result.Trace = append(result.Trace, TraceEvent{
			T:          offset(clock),
			Type:       "record",
			Identifier: rec.Identifier,
			Parent:     rec.Parent,
			Depth:      &depth,
		})

	case step.Check != "":
		dec, err := g.Check(step.Check, step.Parent)
		if err != nil {
			return fmt.Errorf("check %s: %w", step.Check, err)
		}
		allowed := dec.Allowed
		result.Trace = append(result.Trace, TraceEvent{
			T:          offset(clock),
			Type:       "check",
			Identifier: dec.Identifier,
			Allowed:    &allowed,
			Code:       string(dec.Code),
			Reason:     dec.Reason,
		})
		validateExpect(step, dec, result)

	case step.Reset != "":
		if err := g.Reset(step.Reset); err != nil {
			return fmt.Errorf("reset %s: %w", step.Reset, err)
		}
		result.Trace = append(result.Trace, TraceEvent{
			T:          offset(clock),
			Type:       "reset",
			Identifier: governor.NormalizeIdentifier(step.Reset),
		})

	case step.ResetAll:
		if err := g.ResetAll(); err != nil {
			return fmt.Errorf("reset_all: %w", err)
		}
		result.Trace = append(result.Trace, TraceEvent{
			T:    offset(clock),
			Type: "reset_all",
		})

	default:
		return fmt.Errorf("step has no operation")
	}

	return nil
}

// validateExpect compares a check decision against the step's expect
// clause, recording mismatches on the result.
func validateExpect(step *Step, dec governor.Decision, result *Result) {
	if step.Expect == nil {
		return
	}
	if dec.Allowed != *step.Expect.Allowed {
		result.AddError(fmt.Sprintf("check %s: expected allowed=%t, got allowed=%t",
			step.Check, *step.Expect.Allowed, dec.Allowed))
	}
	if step.Expect.Code != "" && string(dec.Code) != step.Expect.Code {
		result.AddError(fmt.Sprintf("check %s: expected code %s, got %q",
			step.Check, step.Expect.Code, dec.Code))
	}
}

// offset renders the clock's distance from the scenario epoch, e.g. "4m59s".
func offset(clock *testutil.ManualClock) string {
	return clock.Now().Sub(scenarioEpoch).String()
}
