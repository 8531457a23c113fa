package runtime_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/routine/internal/runtime"
	"github.com/aretw0/routine/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestEngine_ConditionErrorCountsAsInactive(t *testing.T) {
	f := newFixture(t)
	var broken bool
	flaky := func() (bool, error) {
		if broken {
			return false, errBoom
		}
		return true, nil
	}
	cmd := newProbe(f.src)
	other := newProbe(f.src)
	f.register(
		domain.NewCommand("flaky", cmd).DeclareCondition(flaky).DeclareTags(domain.PauseDefault),
		domain.NewCommand("other", other).DeclareCondition(f.eng.After(0)),
	)
	f.init()

	f.tick()
	require.True(t, f.eng.IsActive("flaky"))
	require.True(t, f.eng.Paused())
	require.Zero(t, f.deflt.ticks)

	broken = true
	f.tick()
	rep := f.eng.LastReport()
	require.Len(t, rep.Failed, 1)
	assert.Contains(t, rep.Failed[0], "flaky condition: boom")
	assert.Equal(t, []string{"flaky"}, rep.Ended)
	assert.Equal(t, []string{"other"}, rep.Ran)
	assert.Equal(t, 1, cmd.ends)
	assert.Equal(t, []bool{false}, cmd.interrupted)
	assert.False(t, f.eng.IsActive("flaky"))
	assert.False(t, f.eng.Paused(), "a failing holder releases the default")
	assert.True(t, rep.DefaultRan)

	for i := 0; i < 20; i++ {
		f.tick()
	}
	assert.Equal(t, 1, cmd.ends, "ended once")
	assert.Equal(t, 1, cmd.ticks)
	assert.Equal(t, 21, f.deflt.ticks)
	assert.Equal(t, 22, other.ticks)

	broken = false
	f.tick()
	assert.Equal(t, 2, cmd.ticks)
	assert.True(t, f.eng.Paused())
}

func TestEngine_ConditionErrorClearsEdgeLatch(t *testing.T) {
	f := newFixture(t)
	// One entry per tick; nil means the sensor fails.
	readings := []*bool{ptr(true), ptr(true), nil, ptr(true), ptr(true)}
	var n int
	sensor := func() (bool, error) {
		r := readings[n]
		n++
		if r == nil {
			return false, errBoom
		}
		return *r, nil
	}
	cmd := newProbe(f.src)
	f.register(domain.NewCommand("edge", cmd).
		DeclareCondition(sensor).
		DeclareTriggerMode(domain.EdgeTrue))
	f.init()

	var ran, ended []bool
	for range readings {
		f.tick()
		rep := f.eng.LastReport()
		ran = append(ran, len(rep.Ran) == 1)
		ended = append(ended, len(rep.Ended) == 1)
	}

	assert.Equal(t, []bool{true, false, false, true, false}, ran,
		"the failed tick resets the latch so the next true tick fires again")
	assert.Equal(t, []bool{false, true, false, false, true}, ended)
	assert.Equal(t, 2, cmd.ticks)
	assert.Equal(t, 2, cmd.ends)
}

func ptr(b bool) *bool { return &b }

func TestEngine_PanickingConditionIsIsolated(t *testing.T) {
	f := newFixture(t)
	f.register(domain.NewCommand("bad", domain.Noop).
		DeclareCondition(func() (bool, error) { panic("no sensor") }))
	f.init()

	f.tick()
	rep := f.eng.LastReport()
	require.Len(t, rep.Failed, 1)
	assert.Contains(t, rep.Failed[0], "panic: no sensor")
	assert.True(t, rep.DefaultRan)
}

func TestEngine_TickFailureStillCountsAsActivation(t *testing.T) {
	var captured []*domain.CollaboratorError
	hooks := domain.LifecycleHooks{
		OnCollaboratorError: func(_ context.Context, e *domain.ErrorEvent) {
			captured = append(captured, e.Err)
		},
	}
	f := newFixture(t, runtime.WithLifecycleHooks(hooks))
	bad := newProbe(f.src)
	bad.panicTick = true
	after := newProbe(f.src)
	f.register(
		domain.NewCommand("bad", bad).DeclareCondition(f.eng.Before(40*time.Millisecond)),
		domain.NewCommand("after", after).DeclareCondition(f.eng.After(0)),
	)
	f.init()

	f.tick()
	assert.True(t, f.eng.IsActive("bad"))
	assert.Equal(t, []string{"bad", "after"}, f.eng.LastReport().Ran)
	assert.Equal(t, 1, after.ticks)
	assert.Equal(t, 1, f.deflt.ticks)

	f.tick()
	f.tick()
	assert.Equal(t, 1, bad.ends, "a failing command is still ended")

	require.Len(t, captured, 2)
	assert.Equal(t, "bad", captured[0].Command)
	assert.Equal(t, domain.PhaseTick, captured[0].Phase)
	var perr *domain.PanicError
	assert.ErrorAs(t, captured[0], &perr)
}

func TestEngine_DefaultFailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	f.deflt.failTick = errBoom
	f.init()

	f.tick()
	f.tick()
	rep := f.eng.LastReport()
	require.Len(t, rep.Failed, 1)
	assert.Contains(t, rep.Failed[0], "default tick: boom")
	assert.Equal(t, 2, f.deflt.ticks)
	assert.Equal(t, domain.StatusRunning, f.eng.Status())
}

func TestEngine_FailureLogsAreThrottled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	var hookCalls int
	f := newFixture(t,
		runtime.WithLogger(logger),
		runtime.WithFailureLogRate(rate.Every(time.Hour), 2),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnCollaboratorError: func(context.Context, *domain.ErrorEvent) { hookCalls++ },
		}),
	)
	f.deflt.failTick = errors.New("motor stalled")
	f.init()

	for i := 0; i < 10; i++ {
		f.tick()
	}

	assert.Equal(t, 2, strings.Count(buf.String(), "collaborator failed"))
	assert.Equal(t, 10, hookCalls, "hooks see every failure")
}
