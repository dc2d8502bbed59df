package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Parent string
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <identifier>",
		Short: "Append a call event to the history",
		Long: `Append a call event to the history, computing its recursion depth
at insertion time.

Run this after a work unit was actually spawned. Recording does not consult
the admission thresholds; the breaker is only correct if callers check
before they record.

Example:
  gatekeep record Explore --parent Plan`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return recordCall(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Parent, "parent", "", "identifier of the inviting work unit")

	return cmd
}

func recordCall(opts *RecordOptions, identifier string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	g, closeStore, err := newGovernor(opts.RootOptions, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	rec, saveErr := g.RecordCall(identifier, opts.Parent)
	if saveErr != nil {
		return WrapExitError(ExitCommandError, "failed to persist call record", saveErr)
	}

	if opts.Format == "json" {
		return formatter.Success(rec)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "recorded: %s depth=%d id=%s\n", rec.Identifier, rec.Depth, rec.ID)
	return nil
}
