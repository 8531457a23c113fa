package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/routine"
	"github.com/aretw0/routine/pkg/clock"
	"github.com/aretw0/routine/pkg/domain"
	"github.com/stretchr/testify/require"
)

// runRoutine drives a one second routine at 20ms ticks:
// "hold" pauses the default between 200ms and 400ms and "flaky" fails
// every tick before 100ms. step is called after every tick.
func runRoutine(t *testing.T, hooks domain.LifecycleHooks, step func(*routine.Scheduler)) *routine.Scheduler {
	t.Helper()
	ctx := context.Background()
	src := clock.NewManual(time.Unix(1700000000, 0))

	s := routine.New(
		routine.WithName("observed"),
		routine.WithClock(src),
		routine.WithBudget(time.Second),
		routine.WithLifecycleHooks(hooks),
	)
	require.NoError(t, s.SetDefault(ctx, domain.Noop))
	require.NoError(t, s.Register(ctx,
		domain.NewCommand("hold", domain.Noop).
			DeclareCondition(s.Between(200*time.Millisecond, 400*time.Millisecond)...).
			DeclareTags(domain.PauseDefault),
		domain.NewCommand("flaky", domain.BehaviorFuncs{
			OnTick: func(context.Context) error { return errors.New("sensor offline") },
		}).DeclareCondition(s.Before(100*time.Millisecond)),
	))
	require.NoError(t, s.Initialize(ctx))

	for !s.Done() {
		require.NoError(t, s.Tick(ctx))
		if step != nil {
			step(s)
		}
		src.Advance(20 * time.Millisecond)
	}
	return s
}
