package domain

import "time"

// Audit action types.
const (
	ActionCommand     = "COMMAND"
	ActionGeneration  = "IMAGE_GENERATION"
	ActionAdminAction = "ADMIN_ACTION"
	ActionSystemEvent = "SYSTEM_EVENT"
)

// AuditEntry is one row of the append-only audit log.
type AuditEntry struct {
	ID         string
	UserID     int64
	Username   string
	ActionType string
	Action     string
	Prompt     string
	Model      string
	Images     []string
	TargetUser int64
	Success    bool
	Error      string
	CreatedAt  time.Time
}
