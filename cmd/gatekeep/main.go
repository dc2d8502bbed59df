// gatekeep: admission governor for recursive agent calls
//
// A circuit breaker for orchestrators that spawn sub-agents: sliding-window
// rate limiting and recursion-depth detection over a persisted call log.
//
// Usage:
//
//	gatekeep check Plan --parent Explore   # decide admission (exit 0/1)
//	gatekeep record Plan                   # append a call event
//	gatekeep status                        # per-identifier diagnostics
//	gatekeep reset [identifier]            # clear circuit state
package main

import (
	"fmt"
	"os"

	"github.com/roach88/gatekeep/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		code := cli.GetExitCode(err)
		if code != cli.ExitDenied {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(code)
	}
}
