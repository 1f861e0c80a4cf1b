// Package cmd implements the toolproof CLI surface: run, debug, accept and
// version subcommands wired to a cobra root, the way the teacher wires its
// own subcommand tree onto rootCmd in internal/cmd.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "toolproof",
	Short: "Run YAML-scripted end-to-end tests against CLI programs and the web apps they produce",
}

// Execute runs the CLI, returning the process exit code: 0 all passed, 1
// any test failed, 2 configuration error, 130 operator interrupt.
func Execute() int {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		if code, ok := exitCodeOf(err); ok {
			if code != 0 {
				fmt.Fprintln(os.Stderr, err)
			}
			return code
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return exitCode
}

// exitCode is set by run/debug/accept's RunE on success paths that still need a
// non-zero process exit (test failures aren't themselves cobra errors).
var exitCode int
