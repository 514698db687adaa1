package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrLockNotAcquired is returned when a doctor+date lock stays held past the wait budget.
var ErrLockNotAcquired = errors.New("booking lock not acquired")

// SlotLocker serializes capacity-consuming writes for one doctor on one date.
// fn runs while the lock is held; the caller commits its transaction inside fn.
type SlotLocker interface {
	WithDoctorDateLock(ctx context.Context, doctorID uuid.UUID, date time.Time, fn func(ctx context.Context) error) error
}
