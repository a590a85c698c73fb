package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	redisclient "github.com/clinicore/clinic-scheduling/internal/redis"
)

// MutexLocker serializes bookings per (doctor, date) with in-process mutexes.
// Single-process deployments and tests use this instead of the Redis locker;
// the engine's contract is the same either way.
type MutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{
		locks: make(map[string]*sync.Mutex),
	}
}

var _ redisclient.Locker = (*MutexLocker)(nil)

func (l *MutexLocker) WithScheduleLock(ctx context.Context, doctorID string, date time.Time, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("%s:%s", doctorID, Day(date).Format(time.DateOnly))

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()

	return fn(ctx)
}
