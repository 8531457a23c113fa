package ports

import (
	"context"

	"github.com/aretw0/routine/pkg/domain"
)

// TraceStore defines the interface for persisting run traces.
// A trace is the ordered list of tick reports of one run.
type TraceStore interface {
	// Append adds reports to the end of the trace of runID, creating it if needed.
	Append(ctx context.Context, runID string, reports ...*domain.TickReport) error

	// Load retrieves the whole trace of runID in append order.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) ([]*domain.TickReport, error)

	// Delete removes the trace of runID. Deleting a missing run is not an error.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of the stored runs.
	List(ctx context.Context) ([]string, error)
}
