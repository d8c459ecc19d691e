package repo

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiterRedis implements domain.RateLimiter with a sorted set per
// user, scored by request time in nanoseconds. ZCOUNT's inclusive minimum
// gives the same inclusive lower window bound as the Postgres limiter.
type RateLimiterRedis struct {
	client *redis.Client
	now    func() time.Time
}

// NewRateLimiterRedis creates a new RateLimiterRedis.
func NewRateLimiterRedis(client *redis.Client) *RateLimiterRedis {
	return &RateLimiterRedis{client: client, now: time.Now}
}

func rateKey(userID int64) string {
	return "rate:" + strconv.FormatInt(userID, 10)
}

// Check counts entries within [now-window, now], lower bound inclusive.
func (r *RateLimiterRedis) Check(ctx context.Context, userID int64, window time.Duration, maxRequests int) (bool, error) {
	cutoff := strconv.FormatInt(r.now().Add(-window).UnixNano(), 10)
	count, err := r.client.ZCount(ctx, rateKey(userID), cutoff, "+inf").Result()
	if err != nil {
		return false, err
	}
	return count < int64(maxRequests), nil
}

// Record appends an entry and trims entries past the retention horizon.
func (r *RateLimiterRedis) Record(ctx context.Context, userID int64) error {
	now := r.now()
	key := rateKey(userID)
	if err := r.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	}).Err(); err != nil {
		return err
	}
	horizon := strconv.FormatInt(now.Add(-rateRetention).UnixNano(), 10)
	if err := r.client.ZRemRangeByScore(ctx, key, "-inf", "("+horizon).Err(); err != nil {
		return err
	}
	return r.client.Expire(ctx, key, rateRetention).Err()
}
