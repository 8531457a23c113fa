package ports

import (
	"context"

	"github.com/aretw0/routine/pkg/domain"
)

// StatusReader is the read-only view of a run used by adapters (e.g. HTTP).
// Implementations must be safe for concurrent use with the ticking goroutine.
type StatusReader interface {
	Snapshot(ctx context.Context) domain.RunSnapshot
}
