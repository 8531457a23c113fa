package registry_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/routine/pkg/domain"
	"github.com/aretw0/routine/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Build(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("custom", func(params map[string]any) (domain.Behavior, error) {
		return domain.BehaviorFuncs{}, nil
	})

	assert.True(t, r.Has("custom"))
	b, err := r.Build("custom", nil)
	require.NoError(t, err)
	assert.NotNil(t, b)

	_, err = r.Build("missing", nil)
	assert.ErrorIs(t, err, registry.ErrUnknownBehavior)
}

func TestRegistry_NilBehaviorIsRejected(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("broken", func(map[string]any) (domain.Behavior, error) { return nil, nil })

	_, err := r.Build("broken", nil)
	assert.ErrorIs(t, err, domain.ErrNilBehavior)
}

func TestDefault_Names(t *testing.T) {
	r := registry.NewDefault()
	assert.Equal(t, []string{"counter", "fail", "log", "noop"}, r.Names())
}

func TestCounter(t *testing.T) {
	r := registry.NewDefault()
	ctx := context.Background()

	b, err := r.Build("counter", map[string]any{"step": "5"})
	require.NoError(t, err)
	c := b.(*registry.Counter)

	require.NoError(t, c.Initialize(ctx))
	require.NoError(t, c.Tick(ctx))
	require.NoError(t, c.Tick(ctx))
	require.NoError(t, c.End(ctx, false))
	assert.EqualValues(t, 10, c.Value())
	assert.EqualValues(t, 1, c.Inits())
	assert.EqualValues(t, 1, c.Ends())

	other, err := r.Build("counter", nil)
	require.NoError(t, err)
	assert.NotSame(t, c, other, "every build is a fresh instance")
}

func TestDecodeParams_RejectsUnknownKeys(t *testing.T) {
	r := registry.NewDefault()
	_, err := r.Build("counter", map[string]any{"stpe": 2})
	assert.ErrorIs(t, err, registry.ErrInvalidParams)
}

func TestLogBehavior(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := registry.NewDefault(registry.WithLogger(logger))
	ctx := context.Background()

	b, err := r.Build("log", map[string]any{"message": "intake", "level": "debug", "every": 2})
	require.NoError(t, err)

	require.NoError(t, b.Initialize(ctx))
	for i := 0; i < 4; i++ {
		require.NoError(t, b.Tick(ctx))
	}
	require.NoError(t, b.End(ctx, true))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "event=tick"))
	assert.Contains(t, out, "n=1")
	assert.Contains(t, out, "n=3")
	assert.Contains(t, out, "interrupted=true")
	assert.Contains(t, out, "level=DEBUG")

	_, err = r.Build("log", map[string]any{"level": "loud"})
	assert.ErrorIs(t, err, registry.ErrInvalidParams)
}

func TestFailBehavior(t *testing.T) {
	r := registry.NewDefault()
	ctx := context.Background()

	b, err := r.Build("fail", map[string]any{"every": 3, "message": "stall"})
	require.NoError(t, err)

	var errs int
	for i := 0; i < 9; i++ {
		if err := b.Tick(ctx); err != nil {
			assert.EqualError(t, err, "stall")
			errs++
		}
	}
	assert.Equal(t, 3, errs)
	assert.NoError(t, b.Initialize(ctx))

	_, err = r.Build("fail", map[string]any{"phase": "condition"})
	assert.ErrorIs(t, err, registry.ErrInvalidParams)
}
