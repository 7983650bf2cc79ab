package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"talentscout/interview/internal/models"
)

const (
	// Redis key prefix for per-interview write locks
	LockKeyPrefix = "interview:lock:"

	defaultLockTTL  = 2 * time.Minute
	defaultLockPoll = 50 * time.Millisecond
)

// unlockScript deletes the lock only while it still carries our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares session locks between service replicas.
type RedisLocker struct {
	rdb    *redis.Client
	mode   LockMode
	ttl    time.Duration
	poll   time.Duration
	logger *zap.Logger
}

func NewRedisLocker(rdb *redis.Client, mode LockMode, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{rdb: rdb, mode: mode, ttl: ttl, poll: defaultLockPoll, logger: logger}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := LockKeyPrefix + key
	token := uuid.New().String()

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock for %s: %w", key, err)
		}
		if ok {
			break
		}
		if l.mode == LockFail {
			return nil, fmt.Errorf("%w: interview %s is busy", models.ErrConcurrentModification, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// release even if the request context is already gone; a failed
			// release holds the interview until the TTL expires
			if err := unlockScript.Run(context.Background(), l.rdb, []string{redisKey}, token).Err(); err != nil {
				l.logger.Warn("failed to release interview lock",
					zap.String("interview_id", key),
					zap.Duration("expires_in", l.ttl),
					zap.Error(err))
			}
		})
	}, nil
}

func (l *RedisLocker) Ping(ctx context.Context) error {
	return l.rdb.Ping(ctx).Err()
}
