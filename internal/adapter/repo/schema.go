package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id BIGINT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		authorized_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		added_by BIGINT NOT NULL DEFAULT 0,
		total_generations BIGINT NOT NULL DEFAULT 0,
		last_active TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		user_id BIGINT PRIMARY KEY,
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS bans (
		user_id BIGINT PRIMARY KEY,
		reason TEXT NOT NULL DEFAULT '',
		banned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		banned_by BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS bot_settings (
		name TEXT PRIMARY KEY,
		enabled BOOLEAN NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL DEFAULT 0,
		username TEXT NOT NULL DEFAULT '',
		action_type TEXT NOT NULL,
		action TEXT NOT NULL DEFAULT '',
		prompt TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		images TEXT[] NOT NULL DEFAULT '{}',
		target_user BIGINT NOT NULL DEFAULT 0,
		success BOOLEAN NOT NULL DEFAULT TRUE,
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_user_id ON audit_log (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_action_type ON audit_log (action_type)`,
	`CREATE TABLE IF NOT EXISTS rate_limits (
		user_id BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rate_limits_user_time ON rate_limits (user_id, created_at)`,
}

// EnsureSchema creates tables and indexes used by the bot if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
