package bot

import (
	"context"

	"github.com/medusaxd/medusa-bot/internal/domain"
	"github.com/medusaxd/medusa-bot/internal/infra"
)

// Decision is the outcome of the permission gate.
type Decision int

const (
	Admitted Decision = iota
	DeniedDisabled
	DeniedUnauthorized
	DeniedBanned
)

// Gate runs the fixed admission sequence for every user command: global
// toggle first, then authorization, then the ban list. The first failing
// check wins, so a banned unauthorized user on a disabled bot is told the
// bot is disabled.
type Gate struct {
	settings domain.SettingsStore
	users    domain.UserStore
	bans     domain.BanStore
	logger   *infra.Logger
}

// NewGate creates a new Gate.
func NewGate(settings domain.SettingsStore, users domain.UserStore, bans domain.BanStore, logger *infra.Logger) *Gate {
	return &Gate{settings: settings, users: users, bans: bans, logger: logger}
}

// Admit decides whether the user may run commands. Lookup failures fall
// back to the safe side for that check: an unreadable toggle counts as
// enabled, an unreadable authorization counts as unauthorized, and an
// unreadable ban list counts as not banned. For DeniedBanned the ban
// record is returned when it could be read.
func (g *Gate) Admit(ctx context.Context, userID int64) (Decision, *domain.BanRecord) {
	enabled, err := g.settings.BotEnabled(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Msg("gate: bot toggle lookup failed, assuming enabled")
		enabled = true
	}
	if !enabled {
		return DeniedDisabled, nil
	}

	authorized, err := g.users.IsAuthorized(ctx, userID)
	if err != nil {
		g.logger.Warn().Err(err).Int64("user_id", userID).Msg("gate: authorization lookup failed")
		authorized = false
	}
	if !authorized {
		return DeniedUnauthorized, nil
	}

	banned, err := g.bans.IsBanned(ctx, userID)
	if err != nil {
		g.logger.Warn().Err(err).Int64("user_id", userID).Msg("gate: ban lookup failed, assuming not banned")
		banned = false
	}
	if !banned {
		return Admitted, nil
	}

	record, err := g.bans.Info(ctx, userID)
	if err != nil {
		record = nil
	}
	return DeniedBanned, record
}
