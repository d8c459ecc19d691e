package domain

import (
	"context"
	"time"
)

// UserStore manages authorized users.
type UserStore interface {
	// Authorize inserts the user if absent; an existing row is left untouched.
	Authorize(ctx context.Context, userID int64, username string, addedBy int64) error
	Revoke(ctx context.Context, userID int64) (bool, error)
	IsAuthorized(ctx context.Context, userID int64) (bool, error)
	Get(ctx context.Context, userID int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	// Touch refreshes last_active and, when non-empty, the stored username.
	Touch(ctx context.Context, userID int64, username string) error
	IncrementGenerations(ctx context.Context, userID int64) error
}

// AdminStore manages the admin set.
type AdminStore interface {
	Add(ctx context.Context, userID int64) error
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// BanStore manages bans.
type BanStore interface {
	Ban(ctx context.Context, userID int64, reason string, bannedBy int64) error
	Unban(ctx context.Context, userID int64) (bool, error)
	IsBanned(ctx context.Context, userID int64) (bool, error)
	Info(ctx context.Context, userID int64) (*BanRecord, error)
	List(ctx context.Context) ([]BanRecord, error)
}

// SettingsStore persists the global bot toggle.
type SettingsStore interface {
	BotEnabled(ctx context.Context) (bool, error)
	SetBotEnabled(ctx context.Context, enabled bool) error
}

// AuditStore is the append-only audit log.
type AuditStore interface {
	Append(ctx context.Context, entry AuditEntry) error
	Stats(ctx context.Context) (*Stats, error)
}

// RateLimiter is a per-user sliding window counter. Check counts entries
// within [now-window, now], lower bound inclusive. Record appends an entry
// and opportunistically purges entries older than the retention horizon.
type RateLimiter interface {
	Check(ctx context.Context, userID int64, window time.Duration, maxRequests int) (bool, error)
	Record(ctx context.Context, userID int64) error
}
