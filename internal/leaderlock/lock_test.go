package leaderlock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryRun_LocalModeRuns(t *testing.T) {
	locker := NewLocker(nil)

	ran := false
	err := locker.TryRun(context.Background(), "test", time.Minute, func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestTryRun_LocalModeSkipsConcurrentRun(t *testing.T) {
	locker := NewLocker(nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = locker.TryRun(context.Background(), "test", time.Minute, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	err := locker.TryRun(context.Background(), "test", time.Minute, func(ctx context.Context) error {
		t.Error("second run must not start while first holds the lock")
		return nil
	})
	assert.ErrorIs(t, err, ErrNotAcquired)

	close(release)
	wg.Wait()
}

func TestTryRun_WatchdogBoundsRunTime(t *testing.T) {
	locker := NewLocker(nil)

	err := locker.TryRun(context.Background(), "test", 20*time.Millisecond, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTryRun_InvalidArguments(t *testing.T) {
	locker := NewLocker(nil)

	err := locker.TryRun(context.Background(), "", time.Minute, func(ctx context.Context) error { return nil })
	require.Error(t, err)

	err = locker.TryRun(context.Background(), "key", 0, func(ctx context.Context) error { return nil })
	require.Error(t, err)
}
