package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepositoryPG implements domain.AdminStore backed by PostgreSQL.
type AdminRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepositoryPG.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepositoryPG {
	return &AdminRepositoryPG{pool: pool}
}

// Add inserts the admin if absent.
func (r *AdminRepositoryPG) Add(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO admins (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}

// IsAdmin reports whether the user is in the admin set.
func (r *AdminRepositoryPG) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admins WHERE user_id = $1)`, userID).Scan(&exists)
	return exists, err
}
