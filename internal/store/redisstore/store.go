package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// quotaTTL bounds the free-tier browsing period: untouched counters age out
// on their own.
const quotaTTL = 24 * time.Hour

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func quotaKey(userID uint64) string {
	return fmt.Sprintf("tutor:quota:%d", userID)
}

// IncrQuota bumps the user's free-message counter and returns the new value.
func (s *Store) IncrQuota(ctx context.Context, userID uint64) (int64, error) {
	key := quotaKey(userID)
	count, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = s.rdb.Expire(ctx, key, quotaTTL).Err()
	}
	return count, nil
}

// GetQuota returns the current counter, zero when absent.
func (s *Store) GetQuota(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.rdb.Get(ctx, quotaKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ResetQuota clears the counter; called when a new session starts.
func (s *Store) ResetQuota(ctx context.Context, userID uint64) error {
	return s.rdb.Del(ctx, quotaKey(userID)).Err()
}
