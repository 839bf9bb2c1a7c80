// Package lock provides the advisory distributed lock ("akatsuki:locks:tokens")
// guarding the duplicate-login-check-then-create-session critical section,
// replacing the original implementation's aioredlock-based lock manager.
package lock

import (
	"context"
	"fmt"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

// TokensLockName is the single named lock guarding the sessions registry's
// duplicate-check-and-create critical section.
const TokensLockName = "akatsuki:locks:tokens"

// Manager wraps redsync to provide named, lease-based advisory locks.
type Manager struct {
	rs *redsync.Redsync
}

// NewManager builds a lock Manager backed by a single Redis node.
func NewManager(client *goredislib.Client) *Manager {
	pool := goredis.NewPool(client)
	return &Manager{rs: redsync.New(pool)}
}

// Handle is a held lock; release it with Unlock.
type Handle struct {
	mutex *redsync.Mutex
}

// Acquire blocks (subject to ctx) until the named lock is obtained.
func (m *Manager) Acquire(ctx context.Context, name string) (*Handle, error) {
	mutex := m.rs.NewMutex(name)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to acquire lock %q: %w", name, err)
	}
	return &Handle{mutex: mutex}, nil
}

// Unlock releases the held lock. It is a no-op error path if the lease had
// already expired; callers should still check the error for monitoring.
func (h *Handle) Unlock(ctx context.Context) error {
	ok, err := h.mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("lock was not held at unlock time")
	}
	return nil
}
