package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "routine",
	Short: "Routine drives time-boxed autonomous routines",
	Long: `Routine runs declarative plans of condition-triggered commands against a
default behavior, ticking them at a fixed rate until the time budget is spent.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level on stderr (debug, info, warn, error)")
}
