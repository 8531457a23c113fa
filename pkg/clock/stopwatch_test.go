package clock_test

import (
	"testing"
	"time"

	"github.com/aretw0/routine/pkg/clock"
	"github.com/stretchr/testify/assert"
)

func TestStopwatch_AccumulatesOnlyWhileRunning(t *testing.T) {
	src := clock.NewManual(time.Time{})
	sw := clock.NewStopwatch(src)

	src.Advance(time.Second)
	assert.Equal(t, time.Duration(0), sw.Elapsed(), "stopped stopwatch must not move")

	sw.Start()
	src.Advance(2 * time.Second)
	assert.Equal(t, 2*time.Second, sw.Elapsed())

	sw.Stop()
	src.Advance(5 * time.Second)
	assert.Equal(t, 2*time.Second, sw.Elapsed())

	sw.Start()
	src.Advance(time.Second)
	assert.Equal(t, 3*time.Second, sw.Elapsed())
	assert.True(t, sw.HasElapsed(3*time.Second))
	assert.False(t, sw.HasElapsed(3*time.Second+time.Nanosecond))
}

func TestStopwatch_StartIsIdempotent(t *testing.T) {
	src := clock.NewManual(time.Time{})
	sw := clock.NewStopwatch(src)

	sw.Start()
	src.Advance(time.Second)
	sw.Start()
	src.Advance(time.Second)

	assert.Equal(t, 2*time.Second, sw.Elapsed())
}

func TestStopwatch_ResetAndRestart(t *testing.T) {
	src := clock.NewManual(time.Time{})
	sw := clock.NewStopwatch(src)

	sw.Start()
	src.Advance(4 * time.Second)
	sw.Reset()
	assert.True(t, sw.Running())
	assert.Equal(t, time.Duration(0), sw.Elapsed())

	src.Advance(time.Second)
	sw.Stop()
	sw.Restart()
	assert.True(t, sw.Running())
	assert.Equal(t, time.Duration(0), sw.Elapsed())
	src.Advance(500 * time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, sw.Elapsed())
}

func TestManual_IgnoresBackwardsMoves(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := clock.NewManual(start)

	src.Advance(-time.Second)
	src.Set(start.Add(-time.Hour))
	assert.Equal(t, start, src.Now())

	src.Set(start.Add(time.Minute))
	assert.Equal(t, start.Add(time.Minute), src.Now())
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, clock.Seconds(1.5))
	assert.Equal(t, 15*time.Second, clock.Seconds(15))
}
