package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medusaxd/medusa-bot/internal/domain"
)

// BanRepositoryPG implements domain.BanStore backed by PostgreSQL.
type BanRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewBanRepository creates a new BanRepositoryPG.
func NewBanRepository(pool *pgxpool.Pool) *BanRepositoryPG {
	return &BanRepositoryPG{pool: pool}
}

// Ban records or refreshes a ban.
func (r *BanRepositoryPG) Ban(ctx context.Context, userID int64, reason string, bannedBy int64) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO bans (user_id, reason, banned_by)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET reason = EXCLUDED.reason,
    banned_by = EXCLUDED.banned_by,
    banned_at = NOW();
`, userID, reason, bannedBy)
	return err
}

// Unban removes a ban and reports whether one existed.
func (r *BanRepositoryPG) Unban(ctx context.Context, userID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bans WHERE user_id = $1`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IsBanned reports whether an active ban exists for the user.
func (r *BanRepositoryPG) IsBanned(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bans WHERE user_id = $1)`, userID).Scan(&exists)
	return exists, err
}

// Info fetches the ban record for a user.
func (r *BanRepositoryPG) Info(ctx context.Context, userID int64) (*domain.BanRecord, error) {
	row := r.pool.QueryRow(ctx, `
SELECT user_id, reason, banned_at, banned_by FROM bans WHERE user_id = $1`, userID)
	var b domain.BanRecord
	if err := row.Scan(&b.UserID, &b.Reason, &b.BannedAt, &b.BannedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// List returns all active bans ordered by ban time.
func (r *BanRepositoryPG) List(ctx context.Context) ([]domain.BanRecord, error) {
	rows, err := r.pool.Query(ctx, `
SELECT user_id, reason, banned_at, banned_by FROM bans ORDER BY banned_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bans []domain.BanRecord
	for rows.Next() {
		var b domain.BanRecord
		if err := rows.Scan(&b.UserID, &b.Reason, &b.BannedAt, &b.BannedBy); err != nil {
			return nil, err
		}
		bans = append(bans, b)
	}
	return bans, rows.Err()
}
