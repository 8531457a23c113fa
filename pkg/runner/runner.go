package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/routine/pkg/domain"
)

// Schedulable is what the Runner drives. routine.Scheduler implements it.
type Schedulable interface {
	domain.Behavior
	Done() bool
	Status() domain.RunStatus
	Ticks() uint64
	Elapsed() time.Duration
	LastReport() *domain.TickReport
}

// Runner handles the fixed-rate execution loop of a scheduler.
type Runner struct {
	// Period is the interval between ticks. Defaults to DefaultPeriod.
	Period time.Duration

	// Handler presents reports. If nil, reports are dropped.
	Handler ReportHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// InterruptSource interrupts the run when it fires or closes.
	InterruptSource <-chan struct{}

	// TickSource replaces the internal ticker when set.
	TickSource <-chan time.Time
}

// NewRunner creates a Runner ticking at DefaultPeriod.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Period: DefaultPeriod,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run initializes s and ticks it until the run is done, the context is
// cancelled or the interrupt source fires. Cancellation ends s with
// interrupted=true and is not an error: inspect s.Status() for the outcome.
func (r *Runner) Run(ctx context.Context, s Schedulable) error {
	if ctx == nil {
		ctx = context.Background()
	}
	handler := r.resolveHandler()
	logger := r.resolveLogger()

	if err := s.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	ticks, stop, err := r.resolveTicks()
	if err != nil {
		r.interrupt(ctx, s)
		return err
	}
	defer stop()

	logger.Debug("runner started", "period", r.Period)

	var last uint64
	for {
		if err := s.Tick(ctx); err != nil {
			r.interrupt(ctx, s)
			return fmt.Errorf("tick: %w", err)
		}

		if rep := s.LastReport(); rep != nil && rep.Tick != last {
			last = rep.Tick
			if err := handler.Report(ctx, rep); err != nil {
				r.interrupt(ctx, s)
				return fmt.Errorf("report: %w", err)
			}
		}

		if s.Done() {
			return r.finish(ctx, s, handler)
		}

		select {
		case <-ctx.Done():
			logger.Debug("runner cancelled", "cause", context.Cause(ctx))
			r.interrupt(ctx, s)
			return r.finish(ctx, s, handler)
		case <-r.InterruptSource:
			logger.Debug("runner interrupted")
			r.interrupt(ctx, s)
			return r.finish(ctx, s, handler)
		case <-ticks:
		}
	}
}

// interrupt ends s on a context that survives the cancellation that caused it.
func (r *Runner) interrupt(ctx context.Context, s Schedulable) {
	if err := s.End(context.WithoutCancel(ctx), true); err != nil {
		r.resolveLogger().Warn("end failed", "err", err)
	}
}

func (r *Runner) finish(ctx context.Context, s Schedulable, handler ReportHandler) error {
	sum := Summary{
		Status:  s.Status(),
		Ticks:   s.Ticks(),
		Elapsed: s.Elapsed(),
	}
	r.resolveLogger().Debug("runner stopped", "status", string(sum.Status), "ticks", sum.Ticks)
	if err := handler.Finish(context.WithoutCancel(ctx), sum); err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	return nil
}

func (r *Runner) resolveTicks() (<-chan time.Time, func(), error) {
	if r.TickSource != nil {
		return r.TickSource, func() {}, nil
	}
	if r.Period <= 0 {
		return nil, nil, fmt.Errorf("runner period must be positive, got %s", r.Period)
	}
	ticker := time.NewTicker(r.Period)
	return ticker.C, ticker.Stop, nil
}

func (r *Runner) resolveHandler() ReportHandler {
	if r.Handler != nil {
		return r.Handler
	}
	return nopHandler{}
}

func (r *Runner) resolveLogger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
