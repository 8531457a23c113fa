package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/routine/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTraceStoreContract runs a suite of tests to verify that a TraceStore implementation
// adheres to the defined interface contract.
func RunTraceStoreContract(t *testing.T, store TraceStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	report := func(tick uint64, ran ...string) *domain.TickReport {
		return &domain.TickReport{
			Tick:       tick,
			Timestamp:  time.Unix(1700000000, int64(tick)*int64(20*time.Millisecond)).UTC(),
			Elapsed:    time.Duration(tick-1) * 20 * time.Millisecond,
			Status:     domain.StatusRunning,
			Ran:        ran,
			DefaultRan: len(ran) == 0,
		}
	}

	t.Run("Append and Load", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, runID, report(1), report(2, "score")))
		require.NoError(t, store.Append(ctx, runID, report(3)))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		assert.EqualValues(t, 1, loaded[0].Tick)
		assert.Equal(t, []string{"score"}, loaded[1].Ran)
		assert.Equal(t, 20*time.Millisecond, loaded[1].Elapsed)
		assert.True(t, loaded[2].DefaultRan)
		assert.True(t, report(3).Timestamp.Equal(loaded[2].Timestamp))
	})

	t.Run("Append Nothing", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, runID+"-empty"))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, runID, report(4)))

		require.NoError(t, store.Delete(ctx, runID), "Delete should not return error")

		_, err := store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")

		assert.NoError(t, store.Delete(ctx, runID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		require.NoError(t, store.Append(ctx, id1, report(1)))
		require.NoError(t, store.Append(ctx, id2, report(1)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
