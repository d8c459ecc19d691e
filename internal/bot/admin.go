package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/medusaxd/medusa-bot/internal/domain"
	"github.com/medusaxd/medusa-bot/internal/infra"
)

// Admin handles the administrative command set. Admins bypass the user
// gate but are themselves checked against the admin store on every
// command.
type Admin struct {
	admins   domain.AdminStore
	users    domain.UserStore
	bans     domain.BanStore
	settings domain.SettingsStore
	audit    domain.AuditStore
	sender   Sender
	channel  *ChannelLogger
	logger   *infra.Logger
}

// NewAdmin creates a new Admin.
func NewAdmin(admins domain.AdminStore, users domain.UserStore, bans domain.BanStore,
	settings domain.SettingsStore, audit domain.AuditStore, sender Sender,
	channel *ChannelLogger, logger *infra.Logger) *Admin {
	return &Admin{
		admins:   admins,
		users:    users,
		bans:     bans,
		settings: settings,
		audit:    audit,
		sender:   sender,
		channel:  channel,
		logger:   logger,
	}
}

// require checks admin membership and replies on denial. Lookup failures
// deny.
func (a *Admin) require(ctx context.Context, m Messenger, in Incoming) bool {
	ok, err := a.admins.IsAdmin(ctx, in.UserID)
	if err != nil {
		a.logger.Warn().Err(err).Int64("user_id", in.UserID).Msg("admin lookup failed")
		ok = false
	}
	if !ok {
		a.reply(ctx, m, "⛔ This command is restricted to administrators.")
		return false
	}
	return true
}

// HandlePanel answers /admin with the admin command reference.
func (a *Admin) HandlePanel(ctx context.Context, m Messenger, in Incoming) {
	if !a.require(ctx, m, in) {
		return
	}
	a.reply(ctx, m, adminPanelText)
}

// HandleAddUser authorizes a user: /adduser <id> [username].
func (a *Admin) HandleAddUser(ctx context.Context, m Messenger, in Incoming) {
	if !a.require(ctx, m, in) {
		return
	}
	args := argsOf(in.Text)
	targetID, ok := parseUserID(args, 0)
	if !ok {
		a.reply(ctx, m, "Usage: /adduser <user\\_id> [username]")
		return
	}
	username := ""
	if len(args) > 1 {
		username = strings.TrimPrefix(args[1], "@")
	}
	if err := a.users.Authorize(ctx, targetID, username, in.UserID); err != nil {
		a.logger.Error().Err(err).Int64("target", targetID).Msg("adduser failed")
		a.reply(ctx, m, "Could not authorize the user. Please try again.")
		return
	}
	a.reply(ctx, m, fmt.Sprintf("✅ User `%d` is now authorized.", targetID))
	a.recordAdminAction(ctx, in, "adduser", targetID, username)
}

// HandleRemoveUser revokes a user: /removeuser <id>.
func (a *Admin) HandleRemoveUser(ctx context.Context, m Messenger, in Incoming) {
	if !a.require(ctx, m, in) {
		return
	}
	targetID, ok := parseUserID(argsOf(in.Text), 0)
	if !ok {
		a.reply(ctx, m, "Usage: /removeuser <user\\_id>")
		return
	}
	removed, err := a.users.Revoke(ctx, targetID)
	if err != nil {
		a.logger.Error().Err(err).Int64("target", targetID).Msg("removeuser failed")
		a.reply(ctx, m, "Could not revoke the user. Please try again.")
		return
	}
	if !removed {
		a.reply(ctx, m, fmt.Sprintf("User `%d` was not authorized.", targetID))
		return
	}
	a.reply(ctx, m, fmt.Sprintf("✅ User `%d` has been revoked.", targetID))
	a.recordAdminAction(ctx, in, "removeuser", targetID, "")
}

// HandleBan bans a user: /ban <id> [reason...].
func (a *Admin) HandleBan(ctx context.Context, m Messenger, in Incoming) {
	if !a.require(ctx, m, in) {
		return
	}
	args := argsOf(in.Text)
	targetID, ok := parseUserID(args, 0)
	if !ok {
		a.reply(ctx, m, "Usage: /ban <user\\_id> [reason]")
		return
	}
	reason := strings.Join(args[1:], " ")
	if err := a.bans.Ban(ctx, targetID, reason, in.UserID); err != nil {
		a.logger.Error().Err(err).Int64("target", targetID).Msg("ban failed")
		a.reply(ctx, m, "Could not ban the user. Please try again.")
		return
	}
	a.reply(ctx, m, fmt.Sprintf("🚫 User `%d` has been banned.", targetID))
	a.recordAdminAction(ctx, in, "ban", targetID, reason)
}

// HandleUnban lifts a ban: /unban <id>.
func (a *Admin) HandleUnban(ctx context.Context, m Messenger, in Incoming) {
	if !a.require(ctx, m, in) {
		return
	}
	targetID, ok := parseUserID(argsOf(in.Text), 0)
	if !ok {
		a.reply(ctx, m, "Usage: /unban <user\\_id>")
		return
	}
	removed, err := a.bans.Unban(ctx, targetID)
	if err != nil {
		a.logger.Error().Err(err).Int64("target", targetID).Msg("unban failed")
		a.reply(ctx, m, "Could not unban the user. Please try again.")
		return
	}
	if !removed {
		a.reply(ctx, m, fmt.Sprintf("User `%d` is not banned.", targetID))
		return
	}
	a.reply(ctx, m, fmt.Sprintf("✅ User `%d` has been unbanned.", targetID))
	a.recordAdminAction(ctx, in, "unban", targetID, "")
}

// HandleBroadcast sends a message to every authorized user:
// /broadcast <text>.
func (a *Admin) HandleBroadcast(ctx context.Context, m Messenger, in Incoming) {
	if !a.require(ctx, m, in) {
		return
	}
	text := strings.TrimSpace(strings.Join(argsOf(in.Text), " "))
	if text == "" {
		a.reply(ctx, m, "Usage: /broadcast <message>")
		return
	}
	users, err := a.users.List(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("broadcast user listing failed")
		a.reply(ctx, m, "Could not load the user list. Please try again.")
		return
	}

	sent, failed := 0, 0
	for _, u := range users {
		if err := a.sender.SendTo(ctx, u.ID, "📢 "+text); err != nil {
			a.logger.Debug().Err(err).Int64("user_id", u.ID).Msg("broadcast delivery failed")
			failed++
			continue
		}
		sent++
	}
	a.reply(ctx, m, fmt.Sprintf("📢 Broadcast finished: %d delivered, %d failed.", sent, failed))
	a.recordAdminAction(ctx, in, "broadcast", 0, fmt.Sprintf("%d delivered, %d failed", sent, failed))
}

// HandleBotStatus reads or flips the global toggle: /botstatus [on|off].
func (a *Admin) HandleBotStatus(ctx context.Context, m Messenger, in Incoming) {
	if !a.require(ctx, m, in) {
		return
	}
	args := argsOf(in.Text)
	if len(args) == 0 {
		enabled, err := a.settings.BotEnabled(ctx)
		if err != nil {
			a.logger.Error().Err(err).Msg("bot toggle read failed")
			a.reply(ctx, m, "Could not read the bot status.")
			return
		}
		a.reply(ctx, m, "Bot is currently "+onOff(enabled)+". Use /botstatus on|off to change it.")
		return
	}

	var enabled bool
	switch strings.ToLower(args[0]) {
	case "on", "enable", "enabled":
		enabled = true
	case "off", "disable", "disabled":
		enabled = false
	default:
		a.reply(ctx, m, "Usage: /botstatus [on|off]")
		return
	}
	if err := a.settings.SetBotEnabled(ctx, enabled); err != nil {
		a.logger.Error().Err(err).Msg("bot toggle write failed")
		a.reply(ctx, m, "Could not update the bot status.")
		return
	}
	a.reply(ctx, m, "Bot is now "+onOff(enabled)+".")
	a.recordAdminAction(ctx, in, "botstatus "+onOff(enabled), 0, "")
}

// HandleUsers answers /users with the authorized users and active bans.
func (a *Admin) HandleUsers(ctx context.Context, m Messenger, in Incoming) {
	if !a.require(ctx, m, in) {
		return
	}
	users, err := a.users.List(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("user listing failed")
		a.reply(ctx, m, "Could not load the user list.")
		return
	}
	bans, err := a.bans.List(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("ban listing failed")
		bans = nil
	}

	now := time.Now()
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Users* (%d)\n", len(users))
	for _, u := range users {
		sb.WriteString(formatUserLine(u, now))
		sb.WriteByte('\n')
	}
	if len(bans) > 0 {
		fmt.Fprintf(&sb, "\n*Banned* (%d)\n", len(bans))
		for _, b := range bans {
			sb.WriteString(formatBanLine(b))
			sb.WriteByte('\n')
		}
	}
	a.reply(ctx, m, strings.TrimRight(sb.String(), "\n"))
}

// HandleStats answers /stats with the aggregate usage counters.
func (a *Admin) HandleStats(ctx context.Context, m Messenger, in Incoming) {
	if !a.require(ctx, m, in) {
		return
	}
	stats, err := a.audit.Stats(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("stats query failed")
		a.reply(ctx, m, "Could not load statistics.")
		return
	}
	a.reply(ctx, m, formatStats(stats))
}

func (a *Admin) reply(ctx context.Context, m Messenger, text string) {
	if _, err := m.SendMessage(ctx, text); err != nil {
		a.logger.Warn().Err(err).Msg("admin reply send failed")
	}
}

func (a *Admin) recordAdminAction(ctx context.Context, in Incoming, action string, targetID int64, details string) {
	if err := a.audit.Append(ctx, domain.AuditEntry{
		UserID:     in.UserID,
		Username:   in.Username,
		ActionType: domain.ActionAdminAction,
		Action:     action,
		TargetUser: targetID,
		Success:    true,
		Error:      "",
		Prompt:     details,
	}); err != nil {
		a.logger.Warn().Err(err).Msg("admin audit failed")
	}
	a.channel.AdminAction(ctx, in.UserID, action, targetID, details)
}

// argsOf returns the tokens after the command verb.
func argsOf(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

func parseUserID(args []string, idx int) (int64, bool) {
	if idx >= len(args) {
		return 0, false
	}
	id, err := strconv.ParseInt(args[idx], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

const adminPanelText = `*Admin commands*

/adduser <id> [username] - authorize a user
/removeuser <id> - revoke a user
/ban <id> [reason] - ban a user
/unban <id> - lift a ban
/broadcast <message> - message all users
/botstatus [on|off] - read or set the global toggle
/users - list users and bans
/stats - usage statistics`
