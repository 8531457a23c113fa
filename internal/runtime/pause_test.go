package runtime_test

import (
	"testing"
	"time"

	"github.com/aretw0/routine/internal/runtime"
	"github.com/aretw0/routine/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pauser(f *fixture, name string, from, to time.Duration) *domain.Command {
	return domain.NewCommand(name, domain.Noop).
		DeclareCondition(window(f.eng, from, to)...).
		DeclareTags(domain.PauseDefault)
}

func TestEngine_OverlappingPausesCompose(t *testing.T) {
	f := newFixture(t)
	installed := f.eng.Default()
	f.register(
		pauser(f, "a", 1*time.Second, 3*time.Second),
		pauser(f, "b", 2*time.Second, 4*time.Second),
	)
	f.init()

	depthAt := map[time.Duration]int{}
	for f.now() <= 5*time.Second {
		at := f.now()
		f.tick()
		depthAt[at] = f.eng.PauseDepth()
	}

	assert.Equal(t, 0, depthAt[980*time.Millisecond])
	assert.Equal(t, 1, depthAt[1*time.Second])
	assert.Equal(t, 2, depthAt[2*time.Second])
	assert.Equal(t, 1, depthAt[3*time.Second])
	assert.Equal(t, 0, depthAt[4*time.Second])

	for _, at := range offsets(f.start, f.deflt.tickedAt) {
		assert.False(t, at >= time.Second && at < 4*time.Second, "default ticked at %s", at)
	}
	assert.Equal(t, 2, f.deflt.inits, "only the outermost resume restores")
	assert.Equal(t, 1, f.deflt.ends, "only the outermost pause ends")
	assert.Same(t, installed, f.eng.Default())
}

func TestEngine_ResumePolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy domain.ResumePolicy
		want   time.Duration
	}{
		{"reset", domain.ResumeReset, 0},
		{"continue", domain.ResumeContinue, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, runtime.WithResumePolicy(tt.policy))
			f.register(pauser(f, "hold", 1*time.Second, 2*time.Second))
			f.init()

			f.tickThrough(1500 * time.Millisecond)
			assert.True(t, f.eng.Paused())
			assert.Equal(t, time.Second, f.eng.DefaultElapsed(), "default clock is frozen while paused")

			f.tickThrough(2 * time.Second)
			rep := f.eng.LastReport()
			require.NotNil(t, rep)
			assert.True(t, rep.DefaultRan)
			assert.Zero(t, rep.PauseDepth)
			assert.Equal(t, tt.want, rep.DefaultElapsed)
		})
	}
}

func TestEngine_PauseIsVisibleToLaterCommands(t *testing.T) {
	f := newFixture(t)
	follower := newProbe(f.src)
	f.register(
		pauser(f, "lead", time.Second, 2*time.Second),
		domain.NewCommand("follow", follower).
			DeclareCondition(domain.Predicate(f.eng.Paused)).
			DeclareTriggerMode(domain.EdgeTrue),
	)
	f.init()

	f.tickThrough(time.Second)
	require.Equal(t, 1, follower.ticks, "same tick as the pause")
	assert.Equal(t, []time.Duration{time.Second}, offsets(f.start, follower.tickedAt))
	assert.Equal(t, []string{"lead", "follow"}, f.eng.LastReport().Active)
}

func TestEngine_SetDefaultWhilePaused(t *testing.T) {
	f := newFixture(t)
	f.register(pauser(f, "hold", 1*time.Second, 2*time.Second))
	f.init()

	f.tickThrough(1500 * time.Millisecond)
	next := newProbe(f.src)
	require.NoError(t, f.eng.SetDefault(f.ctx, next))
	assert.True(t, domain.IsNoop(f.eng.Default()), "slot stays empty while paused")
	assert.Zero(t, next.inits)

	f.tickThrough(2 * time.Second)
	assert.Same(t, next, f.eng.Default())
	assert.Equal(t, 1, next.inits)
	assert.Equal(t, 1, next.ticks)
	assert.Equal(t, 1, f.deflt.inits, "the replaced default is not restored")
	assert.Equal(t, 1, f.deflt.ends)
}

func TestEngine_SetDefaultWhileRunning(t *testing.T) {
	f := newFixture(t)
	f.init()
	f.tickThrough(time.Second)

	next := newProbe(f.src)
	require.NoError(t, f.eng.SetDefault(f.ctx, next))
	assert.Equal(t, 1, f.deflt.ends)
	assert.Equal(t, 1, next.inits)
	assert.Zero(t, f.eng.DefaultElapsed(), "default clock restarts")

	f.tick()
	assert.Equal(t, 1, next.ticks)
}

func TestEngine_InterruptWhilePaused(t *testing.T) {
	f := newFixture(t)
	holder := newProbe(f.src)
	f.register(domain.NewCommand("hold", holder).
		DeclareCondition(window(f.eng, time.Second, 5*time.Second)...).
		DeclareTags(domain.PauseDefault))
	f.init()

	f.tickThrough(2 * time.Second)
	require.True(t, f.eng.Paused())

	require.NoError(t, f.eng.End(f.ctx, true))
	assert.Equal(t, domain.StatusInterrupted, f.eng.Status())
	assert.Equal(t, []bool{true}, holder.interrupted)
	assert.Equal(t, []bool{false}, f.deflt.interrupted, "a paused default is not ended twice")

	require.NoError(t, f.eng.End(f.ctx, true))
	assert.Equal(t, 1, holder.ends, "ending twice is a no-op")
}
