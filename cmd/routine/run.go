package main

import (
	"github.com/aretw0/routine/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <plan.yaml>",
	Short: "Run a routine plan",
	Long: `Loads the plan, then ticks its commands and default behavior at a fixed rate
until the budget is spent or the process is interrupted (Ctrl+C).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{
			PlanPath: args[0],
			Stdout:   cmd.OutOrStdout(),
			Stderr:   cmd.ErrOrStderr(),
		}
		flags := cmd.Flags()
		opts.Rate, _ = flags.GetFloat64("rate")
		opts.Simulate, _ = flags.GetBool("simulate")
		opts.Resume, _ = flags.GetString("resume")
		opts.TraceDir, _ = flags.GetString("trace-dir")
		opts.RedisAddr, _ = flags.GetString("redis")
		opts.RedisPassword, _ = flags.GetString("redis-password")
		opts.RedisDB, _ = flags.GetInt("redis-db")
		opts.LockWait, _ = flags.GetDuration("lock-wait")
		opts.Serve, _ = flags.GetString("serve")
		opts.JSON, _ = flags.GetBool("json")
		opts.Verbose, _ = flags.GetBool("verbose")
		opts.LogLevel, _ = cmd.Root().PersistentFlags().GetString("log-level")

		_, err := cli.Execute(cmd.Context(), opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Float64("rate", 0, "Ticks per second (overrides the plan period)")
	runCmd.Flags().Bool("simulate", false, "Run on a virtual clock, as fast as possible")
	runCmd.Flags().String("resume", "", "Default clock policy after a pause: reset or continue")
	runCmd.Flags().String("trace-dir", "", "Store tick reports as JSON lines in this directory")
	runCmd.Flags().String("redis", "", "Redis address for traces and the run lock")
	runCmd.Flags().String("redis-password", "", "Redis password")
	runCmd.Flags().Int("redis-db", 0, "Redis database")
	runCmd.Flags().Duration("lock-wait", cli.DefaultLockWait, "How long to wait for a routine lock held elsewhere")
	runCmd.Flags().String("serve", "", "Serve /status, /events and /metrics on this address (e.g. :2112)")
	runCmd.Flags().Bool("json", false, "Emit tick reports as JSON lines")
	runCmd.Flags().BoolP("verbose", "v", false, "Print every tick, not only eventful ones")
}
