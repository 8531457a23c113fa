package routine_test

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/routine"
	"github.com/aretw0/routine/pkg/clock"
	"github.com/aretw0/routine/pkg/domain"
)

// Example shows the classic scoring window: the default drive routine runs for
// the whole autonomous period except between 2s and 3s, when a scoring
// command takes over once and keeps the drive routine paused.
func Example() {
	ctx := context.Background()
	src := clock.NewManual(time.Time{})
	s := routine.New(routine.WithClock(src))

	driveTicks := 0
	drive := domain.BehaviorFuncs{
		OnTick: func(context.Context) error { driveTicks++; return nil },
	}
	score := domain.BehaviorFuncs{
		OnTick: func(context.Context) error {
			fmt.Printf("score at %s\n", s.Elapsed())
			return nil
		},
	}

	_ = s.SetDefault(ctx, drive)
	_ = s.Register(ctx, domain.NewCommand("score", score).
		DeclareCondition(s.Between(2*time.Second, 3*time.Second)...).
		DeclareTriggerMode(domain.EdgeTrue).
		DeclareTags(domain.PauseDefault))

	if err := s.Initialize(ctx); err != nil {
		panic(err)
	}
	for !s.Done() {
		_ = s.Tick(ctx)
		src.Advance(20 * time.Millisecond)
	}

	fmt.Println("drive ticks:", driveTicks)
	fmt.Println("status:", s.Status())
	// Output:
	// score at 2s
	// drive ticks: 700
	// status: finished
}
