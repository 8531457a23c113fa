package domain

import "context"

// Behavior is the unit of work the scheduler drives. Routine commands, the
// default behavior and the scheduler itself all satisfy it.
type Behavior interface {
	// Initialize prepares the behavior before its first Tick.
	Initialize(ctx context.Context) error
	// Tick runs one control cycle of the behavior.
	Tick(ctx context.Context) error
	// End is called once when the behavior stops running.
	// interrupted is true only when the whole scheduler was cancelled.
	End(ctx context.Context, interrupted bool) error
}

// BehaviorFuncs adapts plain functions to the Behavior interface.
// Nil fields are treated as no-ops.
type BehaviorFuncs struct {
	OnInitialize func(ctx context.Context) error
	OnTick       func(ctx context.Context) error
	OnEnd        func(ctx context.Context, interrupted bool) error
}

func (f BehaviorFuncs) Initialize(ctx context.Context) error {
	if f.OnInitialize == nil {
		return nil
	}
	return f.OnInitialize(ctx)
}

func (f BehaviorFuncs) Tick(ctx context.Context) error {
	if f.OnTick == nil {
		return nil
	}
	return f.OnTick(ctx)
}

func (f BehaviorFuncs) End(ctx context.Context, interrupted bool) error {
	if f.OnEnd == nil {
		return nil
	}
	return f.OnEnd(ctx, interrupted)
}

type noop struct{}

func (noop) Initialize(context.Context) error { return nil }
func (noop) Tick(context.Context) error       { return nil }
func (noop) End(context.Context, bool) error  { return nil }

// Noop is the behavior installed in the default slot while it is paused.
var Noop Behavior = noop{}

// IsNoop reports whether b is the shared no-op behavior.
func IsNoop(b Behavior) bool {
	_, ok := b.(noop)
	return ok
}

// Condition supplies one boolean snapshot per tick.
// A returned error marks the owning command as failed for that tick.
type Condition func() (bool, error)

// Predicate adapts an infallible boolean supplier to a Condition.
func Predicate(fn func() bool) Condition {
	if fn == nil {
		return nil
	}
	return func() (bool, error) {
		return fn(), nil
	}
}

// Not negates a condition, keeping its error.
func Not(c Condition) Condition {
	if c == nil {
		return nil
	}
	return func() (bool, error) {
		v, err := c()
		return !v, err
	}
}
