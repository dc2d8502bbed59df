// Package cli implements the gatekeep command surface.
//
// The binary is invoked once per admission event by an orchestrator: check
// before spawning a work unit, record after spawning it, status and reset
// for operators. Exit codes carry the decision: 0 allowed/ok, 1 denied,
// 2 command error.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// DefaultStatePath is the JSON state document used when --db is not given.
const DefaultStatePath = "gatekeep.json"

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// StatePath is the JSON state document (file store).
	StatePath string

	// Database selects the SQLite store instead of the file store.
	Database string

	// Config is an optional CUE limits file.
	Config string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gatekeep CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gatekeep",
		Short: "gatekeep - admission governor for recursive agent calls",
		Long: "A circuit breaker for recursive agent invocations: sliding-window\n" +
			"rate limiting and recursion-depth detection over a persisted call log.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.StatePath, "state", DefaultStatePath, "path to the JSON state document")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to a SQLite state database (overrides --state)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to a CUE limits file")

	// Add subcommands
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newLogger builds the stderr logger, debug level when verbose.
func newLogger(opts *RootOptions) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
