package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) Locker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisScheduleLocker(client, 5*time.Second)
}

func TestWithScheduleLockRunsCriticalSection(t *testing.T) {
	locker := newTestLocker(t)
	day := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)

	ran := false
	err := locker.WithScheduleLock(context.Background(), "D001", day, func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestWithScheduleLockBlocksSameDoctorDay(t *testing.T) {
	locker := newTestLocker(t)
	day := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)

	err := locker.WithScheduleLock(context.Background(), "D001", day, func(ctx context.Context) error {
		// The same pair is held; a second transaction must not get in.
		inner := locker.WithScheduleLock(ctx, "D001", day, func(ctx context.Context) error {
			return nil
		})
		assert.ErrorIs(t, inner, ErrLockNotAcquired)

		// A different date for the same doctor is an independent lock.
		other := locker.WithScheduleLock(ctx, "D001", day.AddDate(0, 0, 1), func(ctx context.Context) error {
			return nil
		})
		assert.NoError(t, other)

		return nil
	})
	require.NoError(t, err)
}

func TestWithScheduleLockReleasesAfterRun(t *testing.T) {
	locker := newTestLocker(t)
	day := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := locker.WithScheduleLock(context.Background(), "D001", day, func(ctx context.Context) error {
			return nil
		})
		require.NoError(t, err, "lock must be reacquirable after release, attempt %d", i)
	}
}

func TestWithScheduleLockPropagatesFnError(t *testing.T) {
	locker := newTestLocker(t)
	day := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)

	sentinel := assert.AnError
	err := locker.WithScheduleLock(context.Background(), "D001", day, func(ctx context.Context) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}
