package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gatekeep/internal/governor"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [identifier]",
		Short: "Show per-identifier diagnostics",
		Long: `Show per-identifier diagnostics: total and windowed call counts, the
currently computed recursion depth, and circuit state with remaining
cooldown. Read-only; never mutates the state document.

Example:
  gatekeep status
  gatekeep status Plan --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := ""
			if len(args) == 1 {
				identifier = args[0]
			}
			return showStatus(rootOpts, identifier, cmd)
		},
	}

	return cmd
}

func showStatus(opts *RootOptions, identifier string, cmd *cobra.Command) error {
	logger := newLogger(opts)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	g, closeStore, err := newGovernor(opts, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	statuses := g.Status()
	if identifier != "" {
		filtered := statuses[:0]
		normalized := governor.NormalizeIdentifier(identifier)
		for _, status := range statuses {
			if status.Identifier == normalized {
				filtered = append(filtered, status)
			}
		}
		statuses = filtered
	}

	if opts.Format == "json" {
		return formatter.Success(statuses)
	}

	if len(statuses) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no call history")
		return nil
	}
	for _, status := range statuses {
		circuit := "closed"
		if status.CircuitOpen {
			circuit = fmt.Sprintf("open (%ds remaining)", status.CooldownRemaining)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: calls=%d recent=%d depth=%d circuit=%s\n",
			status.Identifier, status.TotalCalls, status.RecentCalls, status.Depth, circuit)
	}
	return nil
}
