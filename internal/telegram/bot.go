package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/medusaxd/medusa-bot/internal/bot"
	"github.com/medusaxd/medusa-bot/internal/infra"
)

// longPollTimeout is the Telegram long-poll wait in seconds.
const longPollTimeout = 30

// Bot runs the update loop: it receives messages over long polling and
// dispatches commands to the orchestrator and the admin handler.
type Bot struct {
	api    *tgbotapi.BotAPI
	orch   *bot.Orchestrator
	admin  *bot.Admin
	logger *infra.Logger
}

// NewBot creates a new Bot around an authorized API session.
func NewBot(api *tgbotapi.BotAPI, orch *bot.Orchestrator, admin *bot.Admin, logger *infra.Logger) *Bot {
	return &Bot{api: api, orch: orch, admin: admin, logger: logger}
}

// Username returns the authorized bot account name.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run consumes updates until the context is cancelled. Each command is
// handled in its own goroutine so a slow generation does not stall the
// update stream.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = longPollTimeout
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil || !update.Message.IsCommand() {
				continue
			}
			go b.dispatch(ctx, update.Message)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Str("command", msg.Command()).Msg("command handler panicked")
		}
	}()

	in := bot.Incoming{
		UserID:   msg.From.ID,
		Username: msg.From.UserName,
		Text:     msg.Text,
	}
	m := NewChatMessenger(b.api, msg.Chat.ID)

	switch strings.ToLower(msg.Command()) {
	case "start":
		b.orch.HandleStart(ctx, m, in)
	case "help":
		b.orch.HandleHelp(ctx, m, in)
	case "models":
		b.orch.HandleModels(ctx, m, in)
	case "profile":
		b.orch.HandleProfile(ctx, m, in)
	case "generate", "flux", "turbo", "gptimage":
		b.orch.HandleGenerate(ctx, m, in)
	case "admin":
		b.admin.HandlePanel(ctx, m, in)
	case "adduser":
		b.admin.HandleAddUser(ctx, m, in)
	case "removeuser":
		b.admin.HandleRemoveUser(ctx, m, in)
	case "ban":
		b.admin.HandleBan(ctx, m, in)
	case "unban":
		b.admin.HandleUnban(ctx, m, in)
	case "broadcast":
		b.admin.HandleBroadcast(ctx, m, in)
	case "botstatus":
		b.admin.HandleBotStatus(ctx, m, in)
	case "users":
		b.admin.HandleUsers(ctx, m, in)
	case "stats":
		b.admin.HandleStats(ctx, m, in)
	default:
		b.logger.Debug().Str("command", msg.Command()).Int64("user_id", in.UserID).Msg("unknown command ignored")
	}
}
