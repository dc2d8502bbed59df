package cli

import (
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/gatekeep/internal/governor"
)

// LoadLimits reads governor thresholds from a CUE file.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// Expected shape, all fields optional with defaults applied:
//
//	limits: {
//		maxRecursionDepth:      5
//		maxCallsPerMinute:      10
//		cooldownSeconds:        300
//		cleanupIntervalSeconds: 3600
//	}
//
// Every given field must be a positive integer.
func LoadLimits(path string) (governor.Limits, error) {
	limits := governor.DefaultLimits()

	data, err := os.ReadFile(path)
	if err != nil {
		return limits, fmt.Errorf("read limits config: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return limits, fmt.Errorf("parse limits config: %w", err)
	}

	root := v.LookupPath(cue.ParsePath("limits"))
	if !root.Exists() {
		// A config without a limits block keeps the defaults.
		return limits, nil
	}

	fields := []struct {
		name  string
		apply func(int64)
	}{
		{"maxRecursionDepth", func(n int64) { limits.MaxRecursionDepth = int(n) }},
		{"maxCallsPerMinute", func(n int64) { limits.MaxCallsPerMinute = int(n) }},
		{"cooldownSeconds", func(n int64) { limits.Cooldown = time.Duration(n) * time.Second }},
		{"cleanupIntervalSeconds", func(n int64) { limits.CleanupInterval = time.Duration(n) * time.Second }},
	}
	for _, field := range fields {
		fv := root.LookupPath(cue.ParsePath(field.name))
		if !fv.Exists() {
			continue
		}
		n, err := fv.Int64()
		if err != nil {
			return limits, fmt.Errorf("limits.%s: %w", field.name, err)
		}
		if n <= 0 {
			return limits, fmt.Errorf("limits.%s must be positive, got %d", field.name, n)
		}
		field.apply(n)
	}

	return limits, nil
}
