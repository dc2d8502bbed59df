package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset [identifier]",
		Short: "Clear circuit state and call history",
		Long: `Clear circuit state and call history.

With an identifier, removes only that identifier's open circuit and its
records (scoped reset). Without one, replaces the entire state document
with a fresh empty one.

Example:
  gatekeep reset Plan
  gatekeep reset`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := ""
			if len(args) == 1 {
				identifier = args[0]
			}
			return resetState(rootOpts, identifier, cmd)
		},
	}

	return cmd
}

func resetState(opts *RootOptions, identifier string, cmd *cobra.Command) error {
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

	if identifier != "" {
		if err := g.Reset(identifier); err != nil {
			return WrapExitError(ExitCommandError, "failed to persist reset", err)
		}
		if opts.Format == "json" {
			return formatter.Success(map[string]string{"reset": identifier})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reset: %s\n", identifier)
		return nil
	}

	if err := g.ResetAll(); err != nil {
		return WrapExitError(ExitCommandError, "failed to persist reset", err)
	}
	if opts.Format == "json" {
		return formatter.Success(map[string]string{"reset": "all"})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "reset: all identifiers")
	return nil
}
