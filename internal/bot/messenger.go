// Package bot holds the chat-facing behavior: the permission gate, the
// generation flow, user commands, and the admin command set. It talks to
// Telegram only through small interfaces so the handlers can be exercised
// with in-memory fakes.
package bot

import "context"

// MessageHandle identifies a sent message so it can later be edited or
// deleted. Telegram message ids fit in an int.
type MessageHandle int

// Messenger is the reply surface for one incoming chat. Implementations
// are bound to the chat the triggering message arrived in.
type Messenger interface {
	SendMessage(ctx context.Context, text string) (MessageHandle, error)
	EditMessage(ctx context.Context, handle MessageHandle, text string) error
	DeleteMessage(ctx context.Context, handle MessageHandle) error
	SendPhoto(ctx context.Context, url, caption string) error
}

// Sender delivers a message to an arbitrary chat. Used for broadcasts and
// the log channel, where the destination is not the triggering chat.
type Sender interface {
	SendTo(ctx context.Context, chatID int64, text string) error
}

// Incoming is one inbound command message, already stripped down to the
// fields the handlers care about.
type Incoming struct {
	UserID   int64
	Username string
	Text     string
}
