package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/routine/internal/runtime"
	"github.com/aretw0/routine/pkg/clock"
	"github.com/aretw0/routine/pkg/domain"
	"github.com/stretchr/testify/require"
)

const period = 20 * time.Millisecond

var errBoom = errors.New("boom")

// probe is a behavior that records every call it receives.
type probe struct {
	src clock.Source

	inits       int
	ticks       int
	ends        int
	interrupted []bool
	tickedAt    []time.Time

	failTick  error
	panicTick bool
}

func newProbe(src clock.Source) *probe {
	return &probe{src: src}
}

func (p *probe) Initialize(context.Context) error {
	p.inits++
	return nil
}

func (p *probe) Tick(context.Context) error {
	p.ticks++
	if p.src != nil {
		p.tickedAt = append(p.tickedAt, p.src.Now())
	}
	if p.panicTick {
		panic("probe exploded")
	}
	return p.failTick
}

func (p *probe) End(_ context.Context, interrupted bool) error {
	p.ends++
	p.interrupted = append(p.interrupted, interrupted)
	return nil
}

// fixture is an engine on a manual clock starting at the epoch.
type fixture struct {
	t     *testing.T
	ctx   context.Context
	src   *clock.Manual
	start time.Time
	eng   *runtime.Engine
	deflt *probe
}

func newFixture(t *testing.T, opts ...runtime.EngineOption) *fixture {
	t.Helper()
	src := clock.NewManual(time.Time{})
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		src:   src,
		start: src.Now(),
	}
	f.eng = runtime.NewEngine(append([]runtime.EngineOption{runtime.WithClock(src)}, opts...)...)
	f.deflt = newProbe(src)
	require.NoError(t, f.eng.SetDefault(f.ctx, f.deflt))
	return f
}

func (f *fixture) register(cmds ...*domain.Command) {
	f.t.Helper()
	require.NoError(f.t, f.eng.Register(f.ctx, cmds...))
}

func (f *fixture) init() {
	f.t.Helper()
	require.NoError(f.t, f.eng.Initialize(f.ctx))
}

// now returns the manual clock as an offset from the start.
func (f *fixture) now() time.Duration {
	return f.src.Now().Sub(f.start)
}

// tick runs one pass and advances the clock by one period.
func (f *fixture) tick() {
	f.t.Helper()
	require.NoError(f.t, f.eng.Tick(f.ctx))
	f.src.Advance(period)
}

// tickThrough ticks while the clock is at or below until.
func (f *fixture) tickThrough(until time.Duration) {
	f.t.Helper()
	for f.now() <= until && !f.eng.Done() {
		f.tick()
	}
}

// drive ticks until the engine reports done.
func (f *fixture) drive() {
	f.t.Helper()
	for i := 0; !f.eng.Done(); i++ {
		require.Less(f.t, i, 100000, "engine never finished")
		f.tick()
	}
}

// window holds while the run clock is in [from, to).
func window(eng *runtime.Engine, from, to time.Duration) []domain.Condition {
	return []domain.Condition{eng.After(from), eng.Before(to)}
}

// offsets converts recorded timestamps to offsets from start.
func offsets(start time.Time, ts []time.Time) []time.Duration {
	out := make([]time.Duration, len(ts))
	for i, t := range ts {
		out[i] = t.Sub(start)
	}
	return out
}
