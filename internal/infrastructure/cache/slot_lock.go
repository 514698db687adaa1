package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-billing-core/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	doctorDateLockPrefix = "lock:doctor-date:"
	lockRetryInterval    = 50 * time.Millisecond
)

// unlockScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another request is never released by us.
var unlockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

type redisSlotLocker struct {
	client *redis.Client
	log    *logrus.Logger
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisSlotLocker returns a SlotLocker backed by one Redis key per doctor+date.
// ttl bounds how long a crashed holder can block others, wait bounds how long
// a caller retries before giving up.
func NewRedisSlotLocker(client *redis.Client, log *logrus.Logger, ttl, wait time.Duration) service.SlotLocker {
	return &redisSlotLocker{
		client: client,
		log:    log,
		ttl:    ttl,
		wait:   wait,
	}
}

func doctorDateKey(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s%s:%s", doctorDateLockPrefix, doctorID.String(), date.Format(time.DateOnly))
}

func (l *redisSlotLocker) WithDoctorDateLock(ctx context.Context, doctorID uuid.UUID, date time.Time, fn func(ctx context.Context) error) error {
	key := doctorDateKey(doctorID, date)
	token := uuid.NewString()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}

	defer func() {
		// release on a fresh context so a cancelled request still frees the key
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := l.release(releaseCtx, key, token); err != nil {
			l.log.Warnf("Failed to release lock %s: %+v", key, err)
		}
	}()

	lockCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(lockCtx)
}

func (l *redisSlotLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return nil
		}

		if time.Now().After(deadline) {
			return service.ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *redisSlotLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
