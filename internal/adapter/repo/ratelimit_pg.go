package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// rateRetention is the housekeeping horizon: entries older than this are
// purged opportunistically on Record to bound table growth.
const rateRetention = time.Hour

// RateLimiterPG implements domain.RateLimiter with a request-log table.
// Counting goes through the database so multiple bot processes sharing the
// same storage observe one consistent window.
type RateLimiterPG struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewRateLimiterPG creates a new RateLimiterPG.
func NewRateLimiterPG(pool *pgxpool.Pool) *RateLimiterPG {
	return &RateLimiterPG{pool: pool, now: time.Now}
}

// Check counts entries within [now-window, now], lower bound inclusive,
// and allows the request while the count is below maxRequests.
func (r *RateLimiterPG) Check(ctx context.Context, userID int64, window time.Duration, maxRequests int) (bool, error) {
	cutoff := r.now().Add(-window)
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM rate_limits WHERE user_id = $1 AND created_at >= $2`, userID, cutoff).Scan(&count)
	if err != nil {
		return false, err
	}
	return count < maxRequests, nil
}

// Record appends an entry and purges entries past the retention horizon.
func (r *RateLimiterPG) Record(ctx context.Context, userID int64) error {
	now := r.now()
	if _, err := r.pool.Exec(ctx, `
INSERT INTO rate_limits (user_id, created_at) VALUES ($1, $2)`, userID, now); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
DELETE FROM rate_limits WHERE created_at < $1`, now.Add(-rateRetention))
	return err
}
