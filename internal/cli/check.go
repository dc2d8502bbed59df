package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Parent string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <identifier>",
		Short: "Decide whether a call of the identifier may be admitted",
		Long: `Decide whether a call of the identifier may be admitted.

Run this before spawning a work unit. The exit code carries the decision:
0 allowed, 1 denied, 2 command error. Denials name the breached threshold.

Example:
  gatekeep check Plan --parent Explore --state ./gatekeep.json
  gatekeep check Build --db ./gatekeep.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkAdmission(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Parent, "parent", "", "identifier of the inviting work unit")

	return cmd
}

func checkAdmission(opts *CheckOptions, identifier string, cmd *cobra.Command) error {
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

	dec, saveErr := g.Check(identifier, opts.Parent)
	if saveErr != nil {
		// The decision stands; the failed save only under-counts history
		// on the next invocation.
		formatter.VerboseLog("warning: state save failed: %v", saveErr)
	}

	if opts.Format == "json" {
		if err := formatter.Success(dec); err != nil {
			return err
		}
	} else if dec.Allowed {
		fmt.Fprintf(cmd.OutOrStdout(), "allowed: %s\n", dec.Identifier)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "denied: %s (%s)\n", dec.Identifier, dec.Reason)
	}

	if !dec.Allowed {
		return NewExitError(ExitDenied, "admission denied")
	}
	return nil
}
