package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/routine"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of routine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "routine version %s\n", strings.TrimSpace(routine.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
