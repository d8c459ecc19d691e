package bot

import (
	"context"
	"fmt"

	"github.com/medusaxd/medusa-bot/internal/infra"
)

// ChannelLogger mirrors notable events to a Telegram log channel. Every
// send is best effort: a delivery failure is logged and otherwise ignored
// so channel trouble never breaks a user flow.
type ChannelLogger struct {
	sender Sender
	chatID int64
	logger *infra.Logger
}

// NewChannelLogger creates a new ChannelLogger.
func NewChannelLogger(sender Sender, chatID int64, logger *infra.Logger) *ChannelLogger {
	return &ChannelLogger{sender: sender, chatID: chatID, logger: logger}
}

func (c *ChannelLogger) post(ctx context.Context, text string) {
	if c == nil || c.sender == nil || c.chatID == 0 {
		return
	}
	if err := c.sender.SendTo(ctx, c.chatID, text); err != nil {
		c.logger.Warn().Err(err).Msg("channel log delivery failed")
	}
}

// UserAction records a command issued by a user.
func (c *ChannelLogger) UserAction(ctx context.Context, userID int64, username, action string) {
	c.post(ctx, fmt.Sprintf("👤 %s (`%d`)\n%s", displayName(userID, username), userID, escapeMarkdown(action)))
}

// Generation records the outcome of one image generation.
func (c *ChannelLogger) Generation(ctx context.Context, userID int64, username, prompt, model string, count int, err error) {
	status := fmt.Sprintf("✅ generated %d image(s)", count)
	if err != nil {
		status = "❌ generation failed: " + escapeMarkdown(err.Error())
	}
	c.post(ctx, fmt.Sprintf("🎨 %s (`%d`) | model %s\n%s\nPrompt: %s",
		displayName(userID, username), userID, model, status, escapeMarkdown(truncate(prompt, 200))))
}

// AdminAction records an administrative operation.
func (c *ChannelLogger) AdminAction(ctx context.Context, adminID int64, action string, targetID int64, details string) {
	text := fmt.Sprintf("🛡 Admin `%d`: %s", adminID, escapeMarkdown(action))
	if targetID != 0 {
		text += fmt.Sprintf(" -> `%d`", targetID)
	}
	if details != "" {
		text += "\n" + escapeMarkdown(details)
	}
	c.post(ctx, text)
}

// SystemEvent records a lifecycle event such as startup or shutdown.
func (c *ChannelLogger) SystemEvent(ctx context.Context, event string) {
	c.post(ctx, "⚙️ "+escapeMarkdown(event))
}
