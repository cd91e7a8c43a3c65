// Package leaderlock provides scoped exclusive execution across a fleet:
// acquire-or-skip-silently, bounded run time, guaranteed release on every exit
// path including timeout.
package leaderlock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// ErrNotAcquired signals that another holder owns the lock. Callers running on
// a cadence treat this as a silent skip.
var ErrNotAcquired = errors.New("lock_not_acquired")

type Locker struct {
	client *redis.Client
	script *redis.Script

	// local guards single-instance mode when no redis client is configured.
	local sync.Mutex
}

// NewLocker returns a fleet-wide locker. A nil client degrades to an
// in-process mutex, which is correct for single-instance deployments.
func NewLocker(client *redis.Client) *Locker {
	l := &Locker{client: client}
	if client != nil {
		l.script = redis.NewScript(lockReleaseScript)
	}
	return l
}

// TryRun executes fn while holding the lock. If the lock is held elsewhere it
// returns ErrNotAcquired without running fn. The TTL doubles as watchdog: fn
// runs under a context that expires at the TTL, and the redis key expires with
// it even if this process dies mid-run.
func (l *Locker) TryRun(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	if key == "" {
		return errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return errors.New("lock ttl must be positive")
	}

	runCtx, cancel := context.WithTimeout(ctx, ttl)
	defer cancel()

	if l.client == nil {
		if !l.local.TryLock() {
			return ErrNotAcquired
		}
		defer l.local.Unlock()
		return fn(runCtx)
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAcquired
	}
	defer func() {
		// release against the parent context so an expired run context does
		// not leave the key to linger until TTL
		_ = l.script.Run(context.WithoutCancel(ctx), l.client, []string{key}, token).Err()
	}()

	return fn(runCtx)
}
