package runner

import (
	"log/slog"
	"time"
)

// DefaultPeriod is the control cycle used when no rate is configured (50 Hz).
const DefaultPeriod = 20 * time.Millisecond

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithPeriod sets the interval between ticks.
func WithPeriod(d time.Duration) Option {
	return func(r *Runner) {
		r.Period = d
	}
}

// WithRate sets the tick frequency in Hz.
func WithRate(hz float64) Option {
	return func(r *Runner) {
		if hz > 0 {
			r.Period = time.Duration(float64(time.Second) / hz)
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithHandler configures how reports are presented.
func WithHandler(handler ReportHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithInterruptSource sets a channel that interrupts the run when it fires or closes.
func WithInterruptSource(ch <-chan struct{}) Option {
	return func(r *Runner) {
		r.InterruptSource = ch
	}
}

// WithTickSource replaces the internal ticker. Every receive triggers one tick.
// Simulations pass a closed channel to run as fast as possible.
func WithTickSource(ch <-chan time.Time) Option {
	return func(r *Runner) {
		r.TickSource = ch
	}
}
