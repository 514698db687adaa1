package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SlotLocker is an in-process doctor+date lock with the same contract as
// the Redis locker.
type SlotLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSlotLocker() *SlotLocker {
	return &SlotLocker{locks: map[string]*sync.Mutex{}}
}

func (l *SlotLocker) WithDoctorDateLock(ctx context.Context, doctorID uuid.UUID, date time.Time, fn func(ctx context.Context) error) error {
	key := doctorID.String() + ":" + date.Format(time.DateOnly)

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
