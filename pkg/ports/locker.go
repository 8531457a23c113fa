package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// RunLocker defines the interface for distributed concurrency control.
// It keeps two processes from driving the same routine at once.
type RunLocker interface {
	// Lock attempts to acquire a lock for the given key (e.g., routine name).
	// It blocks until the lock is acquired or the context is canceled.
	// The lock expires after ttl if it is never released.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
