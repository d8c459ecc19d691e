package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medusaxd/medusa-bot/internal/domain"
)

// AuditRepositoryPG implements domain.AuditStore backed by PostgreSQL.
type AuditRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepositoryPG.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepositoryPG {
	return &AuditRepositoryPG{pool: pool}
}

// Append inserts one audit entry. A missing id is generated.
func (r *AuditRepositoryPG) Append(ctx context.Context, entry domain.AuditEntry) error {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	images := entry.Images
	if images == nil {
		images = []string{}
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO audit_log (id, user_id, username, action_type, action, prompt, model, images, target_user, success, error)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`, id, entry.UserID, entry.Username, entry.ActionType, entry.Action, entry.Prompt, entry.Model, images, entry.TargetUser, entry.Success, entry.Error)
	return err
}

// Stats aggregates the counters shown by /stats and the ops endpoint.
func (r *AuditRepositoryPG) Stats(ctx context.Context) (*domain.Stats, error) {
	row := r.pool.QueryRow(ctx, `
SELECT
  (SELECT COUNT(*) FROM users),
  (SELECT COUNT(*) FROM bans),
  (SELECT COUNT(*) FROM audit_log WHERE action_type = $1 AND success),
  (SELECT COUNT(*) FROM audit_log WHERE action_type = $1 AND success AND created_at >= NOW() - INTERVAL '24 hours'),
  (SELECT COUNT(*) FROM users WHERE last_active >= NOW() - INTERVAL '7 days');
`, domain.ActionGeneration)

	var s domain.Stats
	if err := row.Scan(&s.TotalUsers, &s.TotalBanned, &s.TotalGenerations, &s.Generations24h, &s.ActiveUsers7d); err != nil {
		return nil, err
	}
	return &s, nil
}
