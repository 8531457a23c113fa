package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/routine/pkg/clock"
	"github.com/aretw0/routine/pkg/domain"
	"golang.org/x/time/rate"
)

// DefaultBudget is the length of an autonomous period.
const DefaultBudget = 15 * time.Second

// Engine is the core scheduler.
//
// It owns the registered commands, the default behavior slot and two
// stopwatches: one bounding the whole run and one timing the default
// behavior. Each call to Tick performs exactly one evaluation pass and returns;
// the caller drives it once per control cycle until Done reports true.
//
// Engine is not safe for concurrent use. Observers running on other goroutines
// must consume the reports published through LifecycleHooks.OnTick.
type Engine struct {
	commands []*commandState
	names    map[string]struct{}

	slot  domain.Behavior
	pause pauseController

	source clock.Source
	auto   *clock.Stopwatch
	deflt  *clock.Stopwatch
	budget time.Duration
	policy domain.ResumePolicy

	status domain.RunStatus
	ticks  uint64
	report *domain.TickReport
	last   *domain.TickReport

	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	logLimit rate.Limit
	logBurst int
	limiters map[string]*rate.Limiter
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithClock sets the time source of both stopwatches.
func WithClock(src clock.Source) EngineOption {
	return func(e *Engine) {
		if src != nil {
			e.source = src
		}
	}
}

// WithBudget sets the run budget (default 15s).
func WithBudget(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.budget = d
	}
}

// WithResumePolicy sets what the default clock does when a paused default
// behavior is restored.
func WithResumePolicy(p domain.ResumePolicy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithFailureLogRate throttles collaborator-failure logs per command.
// Hooks and reports still see every failure.
func WithFailureLogRate(limit rate.Limit, burst int) EngineOption {
	return func(e *Engine) {
		e.logLimit = limit
		e.logBurst = burst
	}
}

// NewEngine creates an idle engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		names:    make(map[string]struct{}),
		source:   clock.System,
		budget:   DefaultBudget,
		policy:   domain.ResumeReset,
		status:   domain.StatusIdle,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		logLimit: rate.Every(time.Second),
		logBurst: 3,
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.auto = clock.NewStopwatch(e.source)
	e.deflt = clock.NewStopwatch(e.source)
	return e
}

// Register adds commands in evaluation order. The whole batch is validated
// before any command is added. Commands registered into a running engine are
// initialized immediately.
func (e *Engine) Register(ctx context.Context, cmds ...*domain.Command) error {
	if e.status.Terminal() {
		return domain.ErrStopped
	}

	batch := make(map[string]struct{}, len(cmds))
	for _, cmd := range cmds {
		if err := cmd.Validate(); err != nil {
			return err
		}
		if _, dup := e.names[cmd.Name]; dup {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateCommand, cmd.Name)
		}
		if _, dup := batch[cmd.Name]; dup {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateCommand, cmd.Name)
		}
		if cmd.Name == domain.DefaultCommandName {
			return fmt.Errorf("%w: %q is reserved", domain.ErrDuplicateCommand, cmd.Name)
		}
		batch[cmd.Name] = struct{}{}
	}

	for _, cmd := range cmds {
		cs := newCommandState(cmd)
		e.commands = append(e.commands, cs)
		e.names[cmd.Name] = struct{}{}
		e.logger.Debug("command registered",
			"command", cmd.Name,
			"mode", cmd.Mode().String(),
			"conditions", len(cmd.Conditions()),
			"tags", len(cs.tags),
		)
		if e.status == domain.StatusRunning {
			e.call(ctx, cs.name, domain.PhaseInitialize, cs.behavior.Initialize)
		}
	}
	return nil
}

// SetDefault installs b as the default behavior.
//
// Before Initialize it simply fills the slot. While running and unpaused the
// current default is ended, b is initialized and the default clock restarts.
// While paused, b replaces the snapshot that will be restored on resume.
func (e *Engine) SetDefault(ctx context.Context, b domain.Behavior) error {
	if b == nil {
		return domain.ErrNilBehavior
	}
	switch {
	case e.status == domain.StatusIdle:
		e.slot = b
	case e.status.Terminal():
		return domain.ErrStopped
	case e.pause.depth > 0:
		e.pause.saved = b
		e.logger.Debug("default replaced while paused", "depth", e.pause.depth)
	default:
		e.endBehavior(ctx, domain.DefaultCommandName, e.slot, false)
		e.slot = b
		e.call(ctx, domain.DefaultCommandName, domain.PhaseInitialize, b.Initialize)
		e.deflt.Restart()
		e.logger.Debug("default replaced")
	}
	return nil
}

// Default returns the behavior currently installed in the default slot.
// While paused this is domain.Noop.
func (e *Engine) Default() domain.Behavior {
	return e.slot
}

// Initialize starts both clocks and initializes the default behavior and
// every registered command. Initializing a stopped engine starts a fresh run
// with the same commands, so a Scheduler nested as a behavior survives being
// ended and restored by its parent.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.status.Terminal() {
		e.rearm()
	}
	switch {
	case e.status != domain.StatusIdle:
		return domain.ErrAlreadyInitialized
	case e.slot == nil:
		return domain.ErrNoDefaultBehavior
	case e.budget <= 0:
		return fmt.Errorf("%w: %s", domain.ErrInvalidBudget, e.budget)
	}

	e.auto.Restart()
	e.deflt.Restart()
	e.status = domain.StatusRunning

	e.call(ctx, domain.DefaultCommandName, domain.PhaseInitialize, e.slot.Initialize)
	for _, cs := range e.commands {
		e.call(ctx, cs.name, domain.PhaseInitialize, cs.behavior.Initialize)
	}

	e.logger.Info("run started",
		"budget", e.budget,
		"commands", len(e.commands),
		"resume_policy", e.policy.String(),
	)
	return nil
}

// Tick performs one evaluation pass over every command and the default
// behavior. Once the budget has elapsed, Tick ends the run instead; afterwards
// it is a no-op.
func (e *Engine) Tick(ctx context.Context) error {
	switch e.status {
	case domain.StatusIdle:
		return domain.ErrNotInitialized
	case domain.StatusFinished, domain.StatusInterrupted:
		return nil
	}

	if e.auto.HasElapsed(e.budget) {
		e.finish(ctx, domain.StatusFinished, false)
		return nil
	}

	e.ticks++
	e.report = &domain.TickReport{
		Tick:      e.ticks,
		Timestamp: e.source.Now(),
		Elapsed:   e.auto.Elapsed(),
		Status:    domain.StatusRunning,
	}

	for _, cs := range e.commands {
		e.step(ctx, cs)
	}

	if e.pause.depth == 0 {
		e.call(ctx, domain.DefaultCommandName, domain.PhaseTick, e.slot.Tick)
		e.report.DefaultRan = true
	}

	e.report.DefaultElapsed = e.deflt.Elapsed()
	e.report.PauseDepth = e.pause.depth
	e.publish(ctx)
	return nil
}

// End stops the run. interrupted=true is the external cancellation path: the
// installed default and every active command receive End(true). Ending an
// idle engine only marks it stopped; ending a stopped engine does nothing.
func (e *Engine) End(ctx context.Context, interrupted bool) error {
	if e.status.Terminal() {
		return nil
	}
	status := domain.StatusFinished
	if interrupted {
		status = domain.StatusInterrupted
	}
	if e.status == domain.StatusIdle {
		e.status = status
		return nil
	}
	e.finish(ctx, status, interrupted)
	return nil
}

// rearm returns a stopped engine to idle. A default still parked by a pause
// goes back into the slot; trigger latches and tag state start over.
func (e *Engine) rearm() {
	if e.pause.depth > 0 {
		e.slot = e.pause.saved
	}
	e.pause = pauseController{}
	for _, cs := range e.commands {
		cs.reset()
	}
	e.auto.Stop()
	e.auto.Reset()
	e.deflt.Stop()
	e.deflt.Reset()
	e.ticks = 0
	e.report = nil
	e.last = nil
	e.status = domain.StatusIdle
	e.logger.Debug("run re-armed")
}

// Done reports whether the run has finished or was interrupted.
func (e *Engine) Done() bool { return e.status.Terminal() }

// Status returns the lifecycle status.
func (e *Engine) Status() domain.RunStatus { return e.status }

// Ticks returns the number of evaluation passes performed.
func (e *Engine) Ticks() uint64 { return e.ticks }

// Budget returns the run budget.
func (e *Engine) Budget() time.Duration { return e.budget }

// Elapsed returns the run clock.
func (e *Engine) Elapsed() time.Duration { return e.auto.Elapsed() }

// DefaultElapsed returns the default-behavior clock.
func (e *Engine) DefaultElapsed() time.Duration { return e.deflt.Elapsed() }

// AutoTimePassed reports whether the run clock reached seconds.
func (e *Engine) AutoTimePassed(seconds float64) bool {
	return e.auto.HasElapsed(clock.Seconds(seconds))
}

// DefaultTimePassed reports whether the default clock reached seconds.
func (e *Engine) DefaultTimePassed(seconds float64) bool {
	return e.deflt.HasElapsed(clock.Seconds(seconds))
}

// Paused reports whether the default behavior is currently suspended.
func (e *Engine) Paused() bool { return e.pause.depth > 0 }

// PauseDepth returns how many commands currently hold the default paused.
func (e *Engine) PauseDepth() int { return e.pause.depth }

// Commands returns the registered command names in evaluation order.
func (e *Engine) Commands() []string {
	names := make([]string, 0, len(e.commands))
	for _, cs := range e.commands {
		names = append(names, cs.name)
	}
	return names
}

// IsActive reports whether the named command ran on its latest decision and
// has not been ended since.
func (e *Engine) IsActive(name string) bool {
	for _, cs := range e.commands {
		if cs.name == name {
			return cs.wasActive
		}
	}
	return false
}

// LastReport returns a copy of the latest tick report, or nil before the first tick.
func (e *Engine) LastReport() *domain.TickReport {
	return e.last.Snapshot()
}

// step evaluates one command.
func (e *Engine) step(ctx context.Context, cs *commandState) {
	active, err := cs.evaluate()
	if err != nil {
		// A failed evaluation counts as an inactive tick.
		e.fail(ctx, cs.name, domain.PhaseCondition, err)
		active = false
	}
	if active {
		e.report.Active = append(e.report.Active, cs.name)
	}

	if cs.trigger.Decide(active) {
		if !cs.wasActive {
			e.logger.Debug("command activated", "command", cs.name, "tick", e.ticks)
		}
		e.call(ctx, cs.name, domain.PhaseTick, cs.behavior.Tick)
		cs.wasActive = true
		e.report.Ran = append(e.report.Ran, cs.name)
		if e.hooks.OnCommandRun != nil {
			e.hooks.OnCommandRun(ctx, e.commandEvent(domain.EventCommandRun, cs.name, false))
		}
	} else if cs.wasActive {
		e.endCommand(ctx, cs, false)
		e.report.Ended = append(e.report.Ended, cs.name)
	}

	for _, tag := range cs.tags {
		tag.observe(ctx, e, cs.name, active)
	}
}

func (e *Engine) endCommand(ctx context.Context, cs *commandState, interrupted bool) {
	cs.wasActive = false
	e.endBehavior(ctx, cs.name, cs.behavior, interrupted)
	e.logger.Debug("command ended", "command", cs.name, "interrupted", interrupted, "tick", e.ticks)
	if e.hooks.OnCommandEnd != nil {
		e.hooks.OnCommandEnd(ctx, e.commandEvent(domain.EventCommandEnd, cs.name, interrupted))
	}
}

func (e *Engine) endBehavior(ctx context.Context, name string, b domain.Behavior, interrupted bool) {
	e.call(ctx, name, domain.PhaseEnd, func(ctx context.Context) error {
		return b.End(ctx, interrupted)
	})
}

// finish stops the clocks and ends every active command and the installed
// default exactly once.
func (e *Engine) finish(ctx context.Context, status domain.RunStatus, interrupted bool) {
	e.status = status
	e.auto.Stop()
	e.deflt.Stop()

	for _, cs := range e.commands {
		if cs.wasActive {
			e.endCommand(ctx, cs, interrupted)
		}
	}
	// A paused default was already ended when it was paused.
	if e.pause.depth == 0 {
		e.endBehavior(ctx, domain.DefaultCommandName, e.slot, interrupted)
	}

	e.logger.Info("run stopped",
		"status", string(status),
		"ticks", e.ticks,
		"elapsed", e.auto.Elapsed(),
		"paused", e.pause.depth > 0,
	)
	if e.hooks.OnFinish != nil {
		e.hooks.OnFinish(ctx, &domain.FinishEvent{
			EventBase: e.base(domain.EventFinish),
			Status:    status,
			Ticks:     e.ticks,
		})
	}
}

func (e *Engine) publish(ctx context.Context) {
	rep := e.report
	e.report = nil
	e.last = rep
	if e.hooks.OnTick != nil {
		e.hooks.OnTick(ctx, rep.Snapshot())
	}
}

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.source.Now(),
		Type:      t,
		Tick:      e.ticks,
		Elapsed:   e.auto.Elapsed(),
	}
}

func (e *Engine) commandEvent(t domain.EventType, name string, interrupted bool) *domain.CommandEvent {
	return &domain.CommandEvent{
		EventBase:   e.base(t),
		Command:     name,
		Interrupted: interrupted,
	}
}
