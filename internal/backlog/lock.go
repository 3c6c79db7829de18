package backlog

import (
	"context"
	"time"

	"github.com/gofrs/flock"
)

// lockTimeout bounds how long a mutation waits for the advisory lock
// before failing with BACKLOG_LOCKED.
const lockTimeout = 2 * time.Second

// withLock takes the exclusive advisory lock on backlog/.lock for the
// duration of fn, enforcing a single writer across concurrent CLI
// invocations against the same backlog.
func (s *Store) withLock(fn func() error) error {
	fl := flock.New(s.lockPath)

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return newError(RuleBacklogLocked, "acquiring backlog lock: %v", err)
	}
	if !locked {
		return newError(RuleBacklogLocked, "backlog is locked by another process")
	}
	defer fl.Unlock()

	return fn()
}
