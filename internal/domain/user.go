package domain

import "time"

// User is an authorized bot account.
type User struct {
	ID               int64
	Username         string
	AuthorizedAt     time.Time
	AddedBy          int64
	TotalGenerations int64
	LastActive       time.Time
}

// BanRecord describes an active ban.
type BanRecord struct {
	UserID   int64
	Reason   string
	BannedAt time.Time
	BannedBy int64
}

// BotSettings holds the global toggle state.
type BotSettings struct {
	Enabled   bool
	UpdatedAt time.Time
}

// Stats aggregates usage counters for /stats and the ops endpoint.
type Stats struct {
	TotalUsers       int64
	TotalBanned      int64
	TotalGenerations int64
	Generations24h   int64
	ActiveUsers7d    int64
}
