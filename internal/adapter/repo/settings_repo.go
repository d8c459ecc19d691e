package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const botStatusKey = "bot_status"

// SettingsRepositoryPG implements domain.SettingsStore backed by PostgreSQL.
type SettingsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepositoryPG.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepositoryPG {
	return &SettingsRepositoryPG{pool: pool}
}

// BotEnabled returns the global toggle. A bot with no stored setting is
// enabled.
func (r *SettingsRepositoryPG) BotEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := r.pool.QueryRow(ctx, `SELECT enabled FROM bot_settings WHERE name = $1`, botStatusKey).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return enabled, nil
}

// SetBotEnabled stores the global toggle.
func (r *SettingsRepositoryPG) SetBotEnabled(ctx context.Context, enabled bool) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO bot_settings (name, enabled)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = NOW();
`, botStatusKey, enabled)
	return err
}
