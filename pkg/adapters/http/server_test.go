package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	routinehttp "github.com/aretw0/routine/pkg/adapters/http"
	"github.com/aretw0/routine/pkg/domain"
	"github.com/aretw0/routine/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// publish feeds n running ticks and a finish into the board.
func publish(board *observability.Board, n int) {
	ctx := context.Background()
	hooks := board.Hooks()
	for i := 1; i <= n; i++ {
		hooks.OnTick(ctx, &domain.TickReport{
			Tick:       uint64(i),
			Elapsed:    time.Duration(i-1) * 20 * time.Millisecond,
			Status:     domain.StatusRunning,
			Ran:        []string{"score"},
			PauseDepth: 1,
		})
	}
	hooks.OnFinish(ctx, &domain.FinishEvent{
		EventBase: domain.EventBase{Elapsed: time.Duration(n) * 20 * time.Millisecond},
		Status:    domain.StatusFinished,
		Ticks:     uint64(n),
	})
}

func TestGetStatus(t *testing.T) {
	board := observability.NewBoard("left-side", "run-1", nil)
	publish(board, 3)
	handler := routinehttp.NewHandler(board)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var snap domain.RunSnapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snap))
	assert.Equal(t, "left-side", snap.Routine)
	assert.Equal(t, domain.StatusFinished, snap.Status)
	assert.EqualValues(t, 3, snap.Ticks)
	require.NotNil(t, snap.Last)
	assert.Equal(t, []string{"score"}, snap.Last.Ran)
}

func TestGetHealthAndInfo(t *testing.T) {
	handler := routinehttp.NewHandler(observability.NewBoard("r", "1", nil))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	var info map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&info))
	assert.Equal(t, "routine", info["app"])
	assert.NotEmpty(t, info["version"])
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := observability.NewCollector(reg)
	require.NoError(t, err)
	collector.Hooks().OnTick(context.Background(), &domain.TickReport{Tick: 1})

	handler := routinehttp.NewHandler(observability.NewBoard("r", "1", nil), routinehttp.WithGatherer(reg))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "routine_ticks_total 1")
}

func TestCORSPreflight(t *testing.T) {
	handler := routinehttp.NewHandler(observability.NewBoard("r", "1", nil))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	board := observability.NewBoard("left-side", "run-1", nil)
	server := httptest.NewServer(routinehttp.NewHandler(board, routinehttp.WithStream(board)))
	defer server.Close()

	resp, err := http.Get(server.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// The ping frame is flushed after the subscription is registered.
	buf := make([]byte, len("event: ping\ndata: connected\n\n"))
	_, err = io.ReadFull(resp.Body, buf)
	require.NoError(t, err)
	assert.Equal(t, "event: ping\ndata: connected\n\n", string(buf))

	publish(board, 2)

	rest, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(rest)
	assert.Equal(t, 2, strings.Count(body, "event: tick\n"))
	assert.Contains(t, body, `"tick":2`)
	assert.True(t, strings.HasSuffix(body, "event: finish\ndata: finished\n\n"))
}

func TestSubscribeEventsAfterFinish(t *testing.T) {
	board := observability.NewBoard("left-side", "run-1", nil)
	publish(board, 3)
	server := httptest.NewServer(routinehttp.NewHandler(board, routinehttp.WithStream(board)))
	defer server.Close()

	resp, err := http.Get(server.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "event: ping\ndata: connected\n\nevent: finish\ndata: finished\n\n", string(body))
}

func TestEventsDisabledWithoutStream(t *testing.T) {
	handler := routinehttp.NewHandler(observability.NewBoard("r", "1", nil))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
