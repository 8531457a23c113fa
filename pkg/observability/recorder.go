package observability

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/routine/internal/logging"
	"github.com/aretw0/routine/pkg/domain"
	"github.com/aretw0/routine/pkg/ports"
	"github.com/google/uuid"
)

// DefaultBatchSize is the number of reports buffered before a flush.
const DefaultBatchSize = 50

// NewRunID returns a fresh identifier for a run trace.
func NewRunID() string {
	return uuid.NewString()
}

// Recorder persists the tick reports of one run into a trace store.
// Reports are buffered and written in batches, and the remainder is flushed
// when the run finishes.
type Recorder struct {
	store  ports.TraceStore
	runID  string
	batch  int
	logger *slog.Logger

	mu      sync.Mutex
	pending []*domain.TickReport
	err     error
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithBatchSize sets how many reports are buffered before a write.
func WithBatchSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.batch = n
		}
	}
}

// WithRecorderLogger sets the logger used for write failures.
func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// NewRecorder creates a recorder writing to store under runID.
func NewRecorder(store ports.TraceStore, runID string, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		runID:  runID,
		batch:  DefaultBatchSize,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunID returns the trace identifier.
func (r *Recorder) RunID() string { return r.runID }

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Flush writes all buffered reports.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	if err := r.store.Append(ctx, r.runID, pending...); err != nil {
		r.logger.Error("trace write failed", "run_id", r.runID, "reports", len(pending), "error", err)
		r.mu.Lock()
		if r.err == nil {
			r.err = err
		}
		r.mu.Unlock()
		return err
	}
	return nil
}

// Hooks returns the lifecycle hooks that feed the recorder.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTick: func(ctx context.Context, rep *domain.TickReport) {
			r.mu.Lock()
			r.pending = append(r.pending, rep)
			full := len(r.pending) >= r.batch
			r.mu.Unlock()
			if full {
				_ = r.Flush(ctx)
			}
		},
		OnFinish: func(ctx context.Context, _ *domain.FinishEvent) {
			_ = r.Flush(context.WithoutCancel(ctx))
		},
	}
}
