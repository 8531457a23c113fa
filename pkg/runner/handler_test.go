package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/routine/pkg/domain"
	"github.com/aretw0/routine/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_PrintsOnlyEventfulTicks(t *testing.T) {
	var buf bytes.Buffer
	h := runner.NewTextHandler(&buf)
	ctx := context.Background()

	reports := []*domain.TickReport{
		{Tick: 1, Elapsed: 0, DefaultRan: true},
		{Tick: 2, Elapsed: 2 * time.Second, Ran: []string{"score"}, PauseDepth: 1},
		{Tick: 3, Elapsed: 2020 * time.Millisecond, Ended: []string{"score"}, PauseDepth: 1},
		{Tick: 4, Elapsed: 2040 * time.Millisecond, PauseDepth: 1},
		{Tick: 5, Elapsed: 3 * time.Second, Failed: []string{"arm tick: stalled"}},
	}
	for _, rep := range reports {
		require.NoError(t, h.Report(ctx, rep))
	}
	require.NoError(t, h.Finish(ctx, runner.Summary{Status: domain.StatusFinished, Ticks: 750, Elapsed: 15 * time.Second}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "tick 2")
	assert.Contains(t, lines[0], "run score")
	assert.Contains(t, lines[0], "default paused (depth 1)")
	assert.Contains(t, lines[1], "end score")
	assert.Contains(t, lines[2], "default resumed")
	assert.Contains(t, lines[2], "failed arm tick: stalled")
	assert.Contains(t, lines[3], "finished after 750 ticks (15.000s)")
}

func TestTextHandler_Verbose(t *testing.T) {
	var buf bytes.Buffer
	h := runner.NewTextHandler(&buf, runner.WithVerbose(true))
	require.NoError(t, h.Report(context.Background(), &domain.TickReport{Tick: 1}))
	assert.Contains(t, buf.String(), "tick 1")
}

func TestJSONHandler_EmitsLines(t *testing.T) {
	var buf bytes.Buffer
	h := runner.NewJSONHandler(&buf)
	ctx := context.Background()

	require.NoError(t, h.Report(ctx, &domain.TickReport{Tick: 7, Ran: []string{"a"}}))
	require.NoError(t, h.Finish(ctx, runner.Summary{Status: domain.StatusInterrupted, Ticks: 7}))

	dec := json.NewDecoder(&buf)
	var first, second map[string]any
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))

	assert.Equal(t, "tick", first["type"])
	assert.EqualValues(t, 7, first["report"].(map[string]any)["tick"])
	assert.Equal(t, "summary", second["type"])
	assert.Equal(t, "interrupted", second["summary"].(map[string]any)["status"])
}

func TestMultiHandler(t *testing.T) {
	var a, b bytes.Buffer
	h := runner.MultiHandler(runner.NewJSONHandler(&a), runner.NewJSONHandler(&b))
	require.NoError(t, h.Report(context.Background(), &domain.TickReport{Tick: 1}))
	assert.Equal(t, a.String(), b.String())
	assert.NotEmpty(t, a.String())
}
