package observability

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/routine/internal/logging"
	"github.com/aretw0/routine/pkg/domain"
	"github.com/aretw0/routine/pkg/ports"
)

var _ ports.StatusReader = (*Board)(nil)

// Board keeps the latest snapshot of one run and streams its tick reports.
// It is written from the ticking goroutine and read from anywhere.
type Board struct {
	mu          sync.RWMutex
	snap        domain.RunSnapshot
	subscribers map[chan *domain.TickReport]struct{}
	logger      *slog.Logger
}

// NewBoard creates a status board for the named routine and run.
func NewBoard(routine, runID string, logger *slog.Logger) *Board {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Board{
		snap: domain.RunSnapshot{
			Routine: routine,
			RunID:   runID,
			Status:  domain.StatusIdle,
		},
		subscribers: make(map[chan *domain.TickReport]struct{}),
		logger:      logger,
	}
}

// Snapshot returns a copy of the current run state.
func (b *Board) Snapshot(_ context.Context) domain.RunSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := b.snap
	snap.Last = b.snap.Last.Snapshot()
	return snap
}

// Subscribe registers a listener for tick reports. The returned function
// removes the listener and closes the channel. Reports are dropped for
// listeners that fall behind. Subscribing after the run stopped yields a
// closed channel.
func (b *Board) Subscribe(buffer int) (<-chan *domain.TickReport, func()) {
	ch := make(chan *domain.TickReport, buffer)
	b.mu.Lock()
	if b.snap.Status.Terminal() {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subscribers[ch]; ok {
				delete(b.subscribers, ch)
				close(ch)
			}
		})
	}
}

// Hooks returns the lifecycle hooks that keep the board current.
func (b *Board) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTick: func(_ context.Context, r *domain.TickReport) {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.snap.Status = r.Status
			b.snap.Ticks = r.Tick
			b.snap.Elapsed = r.Elapsed
			b.snap.PauseDepth = r.PauseDepth
			b.snap.Paused = r.PauseDepth > 0
			b.snap.Failures += uint64(len(r.Failed))
			b.snap.Last = r
			b.broadcast(r)
		},
		OnFinish: func(_ context.Context, e *domain.FinishEvent) {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.snap.Status = e.Status
			b.snap.Ticks = e.Ticks
			b.snap.Elapsed = e.Elapsed
			for ch := range b.subscribers {
				delete(b.subscribers, ch)
				close(ch)
			}
		},
	}
}

// broadcast must be called with the lock held.
func (b *Board) broadcast(r *domain.TickReport) {
	for ch := range b.subscribers {
		select {
		case ch <- r.Snapshot():
		default:
			b.logger.Warn("status subscriber buffer full, dropping report", "tick", r.Tick)
		}
	}
}
