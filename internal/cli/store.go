package cli

import (
	"log/slog"

	"github.com/roach88/gatekeep/internal/governor"
	"github.com/roach88/gatekeep/internal/state"
)

// newGovernor builds a governor from the global flags: limits from the CUE
// config when given, SQLite store when --db is set, file store otherwise.
// The returned close function releases the store (a no-op for the file
// store).
func newGovernor(opts *RootOptions, logger *slog.Logger) (*governor.Governor, func() error, error) {
	limits := governor.DefaultLimits()
	if opts.Config != "" {
		loaded, err := LoadLimits(opts.Config)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to load limits config", err)
		}
		limits = loaded
	}

	var store state.Store
	closeStore := func() error { return nil }
	if opts.Database != "" {
		s, err := state.OpenSQLite(opts.Database, logger)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to open state database", err)
		}
		store = s
		closeStore = s.Close
	} else {
		store = state.NewFileStore(opts.StatePath, logger)
	}

	g := governor.New(store,
		governor.WithLimits(limits),
		governor.WithLogger(logger),
	)
	return g, closeStore, nil
}
