package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for cross-process concurrency control.
// The orchestrator holds one lock per architecture prefix while it configures
// the toolchain and builds native prerequisites into it.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is canceled.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
