package routine

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/routine/internal/runtime"
	"github.com/aretw0/routine/pkg/clock"
	"github.com/aretw0/routine/pkg/domain"
	"golang.org/x/time/rate"
)

// Scheduler is the high-level entry point for the routine library.
// It wraps the internal runtime and provides a simplified API for consumers.
//
// A Scheduler is itself a domain.Behavior, so it can be nested as the default
// behavior or a command of another scheduler.
type Scheduler struct {
	runtime     *runtime.Engine
	runtimeOpts []runtime.EngineOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	Name        string
}

// Option defines a functional option for configuring the Scheduler.
type Option func(*Scheduler)

// WithLifecycleHooks registers observability hooks. Multiple calls chain.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Scheduler) {
		s.hooks = domain.ChainHooks(s.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger for the scheduler.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithName labels the routine in logs.
func WithName(name string) Option {
	return func(s *Scheduler) {
		s.Name = name
	}
}

// WithClock sets the time source (default: wall clock).
func WithClock(src clock.Source) Option {
	return func(s *Scheduler) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithClock(src))
	}
}

// WithBudget sets the length of the run (default: 15s).
func WithBudget(d time.Duration) Option {
	return func(s *Scheduler) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithBudget(d))
	}
}

// WithResumePolicy configures the default clock on resume (default: reset).
func WithResumePolicy(p domain.ResumePolicy) Option {
	return func(s *Scheduler) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithResumePolicy(p))
	}
}

// WithFailureLogRate throttles collaborator-failure logs per command.
func WithFailureLogRate(limit rate.Limit, burst int) Option {
	return func(s *Scheduler) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithFailureLogRate(limit, burst))
	}
}

// New creates an idle Scheduler. Register commands and set a default
// behavior before calling Initialize.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{}
	for _, opt := range opts {
		opt(s)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.Name != "" {
		s.logger = s.logger.With("routine", s.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(s.hooks),
		runtime.WithLogger(s.logger),
	}
	runtimeOpts = append(runtimeOpts, s.runtimeOpts...)

	s.runtime = runtime.NewEngine(runtimeOpts...)
	return s
}

// Register adds commands in evaluation order.
func (s *Scheduler) Register(ctx context.Context, cmds ...*domain.Command) error {
	return s.runtime.Register(ctx, cmds...)
}

// SetDefault installs the behavior that runs whenever it is not paused.
func (s *Scheduler) SetDefault(ctx context.Context, b domain.Behavior) error {
	return s.runtime.SetDefault(ctx, b)
}

// Default returns the behavior currently in the default slot.
func (s *Scheduler) Default() domain.Behavior {
	return s.runtime.Default()
}

// Initialize starts the run clocks and initializes every behavior. On a
// stopped scheduler it starts a fresh run.
func (s *Scheduler) Initialize(ctx context.Context) error {
	return s.runtime.Initialize(ctx)
}

// Tick performs one non-blocking evaluation pass.
func (s *Scheduler) Tick(ctx context.Context) error {
	return s.runtime.Tick(ctx)
}

// End stops the run. interrupted marks external cancellation.
func (s *Scheduler) End(ctx context.Context, interrupted bool) error {
	return s.runtime.End(ctx, interrupted)
}

// Done reports whether the run is over.
func (s *Scheduler) Done() bool { return s.runtime.Done() }

// Status returns the lifecycle status.
func (s *Scheduler) Status() domain.RunStatus { return s.runtime.Status() }

// Ticks returns the number of evaluation passes performed.
func (s *Scheduler) Ticks() uint64 { return s.runtime.Ticks() }

// Budget returns the configured run length.
func (s *Scheduler) Budget() time.Duration { return s.runtime.Budget() }

// Elapsed returns the run clock.
func (s *Scheduler) Elapsed() time.Duration { return s.runtime.Elapsed() }

// DefaultElapsed returns the default-behavior clock.
func (s *Scheduler) DefaultElapsed() time.Duration { return s.runtime.DefaultElapsed() }

// AutoTimePassed reports whether the run clock reached seconds.
func (s *Scheduler) AutoTimePassed(seconds float64) bool {
	return s.runtime.AutoTimePassed(seconds)
}

// DefaultTimePassed reports whether the default clock reached seconds.
func (s *Scheduler) DefaultTimePassed(seconds float64) bool {
	return s.runtime.DefaultTimePassed(seconds)
}

// Paused reports whether the default behavior is suspended.
func (s *Scheduler) Paused() bool { return s.runtime.Paused() }

// PauseDepth returns how many commands hold the default paused.
func (s *Scheduler) PauseDepth() int { return s.runtime.PauseDepth() }

// Commands returns the registered command names in evaluation order.
func (s *Scheduler) Commands() []string { return s.runtime.Commands() }

// IsActive reports whether the named command is currently running.
func (s *Scheduler) IsActive(name string) bool { return s.runtime.IsActive(name) }

// LastReport returns a copy of the latest tick report.
func (s *Scheduler) LastReport() *domain.TickReport { return s.runtime.LastReport() }

// After returns a condition holding once the run clock reached d.
func (s *Scheduler) After(d time.Duration) domain.Condition { return s.runtime.After(d) }

// Before returns a condition holding while the run clock is below d.
func (s *Scheduler) Before(d time.Duration) domain.Condition { return s.runtime.Before(d) }

// Between returns the pair of conditions holding while the run clock is in [from, to).
func (s *Scheduler) Between(from, to time.Duration) []domain.Condition {
	return []domain.Condition{s.runtime.After(from), s.runtime.Before(to)}
}

// DefaultAfter returns a condition holding once the default clock reached d.
func (s *Scheduler) DefaultAfter(d time.Duration) domain.Condition {
	return s.runtime.DefaultAfter(d)
}
