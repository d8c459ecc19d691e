// Package telegram adapts the Telegram Bot API to the handler interfaces
// in internal/bot. It is thin glue: all behavior lives behind the
// interfaces so the handlers stay testable without a live bot session.
package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/medusaxd/medusa-bot/internal/bot"
)

// ChatMessenger implements bot.Messenger for one chat. The underlying
// client is synchronous, so the context is accepted for interface
// compatibility but not plumbed through.
type ChatMessenger struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewChatMessenger creates a messenger bound to the given chat.
func NewChatMessenger(api *tgbotapi.BotAPI, chatID int64) *ChatMessenger {
	return &ChatMessenger{api: api, chatID: chatID}
}

func (c *ChatMessenger) SendMessage(ctx context.Context, text string) (bot.MessageHandle, error) {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return bot.MessageHandle(sent.MessageID), nil
}

func (c *ChatMessenger) EditMessage(ctx context.Context, handle bot.MessageHandle, text string) error {
	edit := tgbotapi.NewEditMessageText(c.chatID, int(handle), text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.api.Send(edit)
	return err
}

func (c *ChatMessenger) DeleteMessage(ctx context.Context, handle bot.MessageHandle) error {
	_, err := c.api.Request(tgbotapi.NewDeleteMessage(c.chatID, int(handle)))
	return err
}

func (c *ChatMessenger) SendPhoto(ctx context.Context, url, caption string) error {
	photo := tgbotapi.NewPhoto(c.chatID, tgbotapi.FileURL(url))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.api.Send(photo)
	return err
}

// DirectSender implements bot.Sender for broadcasts and the log channel.
type DirectSender struct {
	api *tgbotapi.BotAPI
}

// NewDirectSender creates a new DirectSender.
func NewDirectSender(api *tgbotapi.BotAPI) *DirectSender {
	return &DirectSender{api: api}
}

func (s *DirectSender) SendTo(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := s.api.Send(msg)
	return err
}
