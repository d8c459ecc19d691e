package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medusaxd/medusa-bot/internal/domain"
)

// UserRepositoryPG implements domain.UserStore backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

// Authorize inserts the user if absent. An existing row keeps its counters
// and authorization timestamp.
func (r *UserRepositoryPG) Authorize(ctx context.Context, userID int64, username string, addedBy int64) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO users (user_id, username, added_by)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO NOTHING;
`, userID, username, addedBy)
	return err
}

// Revoke removes the user and reports whether a row was deleted.
func (r *UserRepositoryPG) Revoke(ctx context.Context, userID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IsAuthorized reports whether the user exists in the users table.
func (r *UserRepositoryPG) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID).Scan(&exists)
	return exists, err
}

// Get fetches a user by id.
func (r *UserRepositoryPG) Get(ctx context.Context, userID int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
SELECT user_id, username, authorized_at, added_by, total_generations, last_active
FROM users WHERE user_id = $1`, userID)
	return scanUser(row)
}

// List returns all authorized users ordered by authorization time.
func (r *UserRepositoryPG) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `
SELECT user_id, username, authorized_at, added_by, total_generations, last_active
FROM users ORDER BY authorized_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Touch refreshes last_active and, when non-empty, the stored username.
func (r *UserRepositoryPG) Touch(ctx context.Context, userID int64, username string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE users
SET last_active = NOW(),
    username = CASE WHEN $2 <> '' THEN $2 ELSE username END
WHERE user_id = $1`, userID, username)
	return err
}

// IncrementGenerations bumps the user's success counter.
func (r *UserRepositoryPG) IncrementGenerations(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `
UPDATE users SET total_generations = total_generations + 1 WHERE user_id = $1`, userID)
	return err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.AuthorizedAt, &u.AddedBy, &u.TotalGenerations, &u.LastActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
