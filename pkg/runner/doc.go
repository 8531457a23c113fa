/*
Package runner drives a routine scheduler at a fixed rate.

The scheduler's Tick never blocks; something has to call it once per control
cycle. Runner is that something for programs that are not embedded in a larger
control loop. It initializes the scheduler, ticks it on a time.Ticker until the
run is done, and turns context cancellation into an interrupted End.

Each new tick report is handed to a ReportHandler, which decides how the run is
presented (human-readable text or JSON lines).

# Usage

	r := runner.NewRunner(
		runner.WithRate(50),
		runner.WithHandler(runner.NewTextHandler(os.Stdout)),
	)

	if err := r.Run(ctx, scheduler); err != nil {
		log.Fatal(err)
	}
*/
package runner
