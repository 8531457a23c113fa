package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/aretw0/routine/pkg/domain"
)

func (r *Registry) registerBuiltins() {
	r.Register("noop", func(map[string]any) (domain.Behavior, error) {
		return domain.Noop, nil
	})
	r.Register("counter", func(params map[string]any) (domain.Behavior, error) {
		var cfg struct {
			Step int64 `mapstructure:"step"`
		}
		cfg.Step = 1
		if err := DecodeParams(params, &cfg); err != nil {
			return nil, err
		}
		return &Counter{step: cfg.Step}, nil
	})
	r.Register("log", func(params map[string]any) (domain.Behavior, error) {
		return newLogBehavior(r.logger, params)
	})
	r.Register("fail", func(params map[string]any) (domain.Behavior, error) {
		return newFailBehavior(params)
	})
}

// Counter adds step to its total on every tick. It is safe to read from
// other goroutines while the scheduler runs.
type Counter struct {
	step  int64
	total atomic.Int64
	inits atomic.Int64
	ends  atomic.Int64
}

// NewCounter returns a counter incrementing by one.
func NewCounter() *Counter {
	return &Counter{step: 1}
}

func (c *Counter) Initialize(context.Context) error {
	c.inits.Add(1)
	return nil
}

func (c *Counter) Tick(context.Context) error {
	c.total.Add(c.step)
	return nil
}

func (c *Counter) End(context.Context, bool) error {
	c.ends.Add(1)
	return nil
}

// Value returns the accumulated total.
func (c *Counter) Value() int64 { return c.total.Load() }

// Inits returns how many times Initialize was called.
func (c *Counter) Inits() int64 { return c.inits.Load() }

// Ends returns how many times End was called.
func (c *Counter) Ends() int64 { return c.ends.Load() }

type logBehavior struct {
	logger  *slog.Logger
	level   slog.Level
	message string
	every   int
	ticks   int
}

func newLogBehavior(logger *slog.Logger, params map[string]any) (domain.Behavior, error) {
	var cfg struct {
		Message string `mapstructure:"message"`
		Level   string `mapstructure:"level"`
		Every   int    `mapstructure:"every"`
	}
	cfg.Every = 1
	if err := DecodeParams(params, &cfg); err != nil {
		return nil, err
	}
	if cfg.Every < 1 {
		return nil, fmt.Errorf("%w: every must be at least 1", ErrInvalidParams)
	}

	var level slog.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
	}
	if cfg.Message == "" {
		cfg.Message = "tick"
	}
	return &logBehavior{logger: logger, level: level, message: cfg.Message, every: cfg.Every}, nil
}

func (b *logBehavior) Initialize(ctx context.Context) error {
	b.ticks = 0
	b.logger.Log(ctx, b.level, b.message, "event", "initialize")
	return nil
}

func (b *logBehavior) Tick(ctx context.Context) error {
	b.ticks++
	if (b.ticks-1)%b.every == 0 {
		b.logger.Log(ctx, b.level, b.message, "event", "tick", "n", b.ticks)
	}
	return nil
}

func (b *logBehavior) End(ctx context.Context, interrupted bool) error {
	b.logger.Log(ctx, b.level, b.message, "event", "end", "interrupted", interrupted)
	return nil
}

// failBehavior fails every n-th call of one phase. It exists to rehearse
// failure isolation from a plan file.
type failBehavior struct {
	phase domain.Phase
	every int
	msg   string
	calls int
}

func newFailBehavior(params map[string]any) (domain.Behavior, error) {
	var cfg struct {
		Phase   string `mapstructure:"phase"`
		Every   int    `mapstructure:"every"`
		Message string `mapstructure:"message"`
	}
	cfg.Phase = string(domain.PhaseTick)
	cfg.Every = 1
	cfg.Message = "injected failure"
	if err := DecodeParams(params, &cfg); err != nil {
		return nil, err
	}
	phase := domain.Phase(strings.ToLower(cfg.Phase))
	switch phase {
	case domain.PhaseInitialize, domain.PhaseTick, domain.PhaseEnd:
	default:
		return nil, fmt.Errorf("%w: phase %q", ErrInvalidParams, cfg.Phase)
	}
	if cfg.Every < 1 {
		return nil, fmt.Errorf("%w: every must be at least 1", ErrInvalidParams)
	}
	return &failBehavior{phase: phase, every: cfg.Every, msg: cfg.Message}, nil
}

func (b *failBehavior) hit(phase domain.Phase) error {
	if phase != b.phase {
		return nil
	}
	b.calls++
	if b.calls%b.every == 0 {
		return errors.New(b.msg)
	}
	return nil
}

func (b *failBehavior) Initialize(context.Context) error { return b.hit(domain.PhaseInitialize) }
func (b *failBehavior) Tick(context.Context) error       { return b.hit(domain.PhaseTick) }
func (b *failBehavior) End(context.Context, bool) error  { return b.hit(domain.PhaseEnd) }
