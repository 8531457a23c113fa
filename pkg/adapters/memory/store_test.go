package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/routine/pkg/adapters/memory"
	"github.com/aretw0/routine/pkg/domain"
	"github.com/aretw0/routine/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunTraceStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	rep := &domain.TickReport{Tick: 1, Ran: []string{"a"}}
	require.NoError(t, store.Append(ctx, "run", rep))
	rep.Ran[0] = "mutated"

	loaded, err := store.Load(ctx, "run")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, loaded[0].Ran)
}
