package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the runner version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(runnerVersion)
			return nil
		},
	}
	rootCmd.AddCommand(versionCmd)
}
