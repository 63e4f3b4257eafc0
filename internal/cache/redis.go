package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/config"
	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockTimeout = errors.New("timed out waiting for event lock")

const lockRetryInterval = 25 * time.Millisecond

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock re-acquired by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCache struct {
	client    *redis.Client
	eventsTTL time.Duration
	lockTTL   time.Duration
	lockWait  time.Duration
}

func NewRedisCache(cfg config.RedisConfig, booking config.BookingConfig) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		eventsTTL: booking.EventsCacheTTL(),
		lockTTL:   booking.LockTTL(),
		lockWait:  booking.LockWait(),
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetEvents returns nil, nil on a cache miss.
func (c *RedisCache) GetEvents(ctx context.Context, variant string) ([]domain.EventDetails, error) {
	data, err := c.client.Get(ctx, eventsKey(variant)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var events []domain.EventDetails
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *RedisCache) SetEvents(ctx context.Context, variant string, events []domain.EventDetails) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, eventsKey(variant), payload, c.eventsTTL).Err()
}

// InvalidateEvents drops every cached listing variant.
func (c *RedisCache) InvalidateEvents(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, eventsKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// LockEvent takes the distributed per-event lock, polling until lockWait
// elapses. The returned func releases it.
func (c *RedisCache) LockEvent(ctx context.Context, eventID string) (func(), error) {
	key := eventLockKey(eventID)
	token := uuid.NewString()

	deadline := time.NewTimer(c.lockWait)
	defer deadline.Stop()

	for {
		ok, err := c.client.SetNX(ctx, key, token, c.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = releaseScript.Run(ctx, c.client, []string{key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("%w %s", ErrLockTimeout, eventID)
		case <-time.After(lockRetryInterval):
		}
	}
}

const eventsKeyPrefix = "cache:events"

func eventsKey(variant string) string {
	if variant == "" {
		return eventsKeyPrefix
	}
	return eventsKeyPrefix + ":" + variant
}

func eventLockKey(eventID string) string {
	return fmt.Sprintf("lock:event:%s", eventID)
}
