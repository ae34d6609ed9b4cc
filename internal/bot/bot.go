// Package bot is the transport-neutral entry point: every transport hands a
// Message to Bot.Handle and delivers the returned Reply.
package bot

import (
	"context"
	"errors"
	"strings"

	"ledgerbot/internal/cache"
	"ledgerbot/internal/command"
	applog "ledgerbot/internal/log"

	"golang.org/x/sync/singleflight"
)

// ErrMissingUser is returned for messages without a sender identity.
var ErrMissingUser = errors.New("user id is required")

// Message is one inbound chat message. ID is optional; when set, a
// redelivered message gets the original reply instead of running twice.
type Message struct {
	ID     string
	UserID string
	Text   string
}

// Reply is the text to send back plus the keyboard to show with it.
type Reply struct {
	Text     string           `json:"reply"`
	Keyboard command.Keyboard `json:"keyboard"`
}

// Handler is satisfied by *command.Dispatcher.
type Handler interface {
	Handle(ctx context.Context, text, userID string) string
}

type Bot struct {
	handler Handler
	replies cache.Cache[Reply]
	flight  singleflight.Group
	logger  *applog.Logger
}

// New returns a bot. replies may be nil to disable redelivery detection.
func New(handler Handler, replies cache.Cache[Reply], logger *applog.Logger) *Bot {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Bot{
		handler: handler,
		replies: replies,
		logger:  logger.WithComponent(applog.ComponentBot),
	}
}

// Handle runs msg and returns the reply.
func (b *Bot) Handle(ctx context.Context, msg Message) (Reply, error) {
	userID := strings.TrimSpace(msg.UserID)
	if userID == "" {
		return Reply{}, ErrMissingUser
	}
	msg.UserID = userID

	if msg.ID == "" || b.replies == nil {
		return b.run(ctx, msg), nil
	}

	key := replyKey(userID, msg.ID)
	v, _, shared := b.flight.Do(key, func() (any, error) {
		if cached, ok := b.replies.Get(key); ok {
			b.logger.InfoContext(ctx, "Replaying reply for redelivered message",
				applog.FieldUserID, userID,
				applog.FieldMessageID, msg.ID,
			)
			return cached, nil
		}
		reply := b.run(ctx, msg)
		b.replies.Set(key, reply)
		return reply, nil
	})
	if shared {
		b.logger.DebugContext(ctx, "Concurrent duplicate joined in-flight message",
			applog.FieldUserID, userID,
			applog.FieldMessageID, msg.ID,
		)
	}
	return v.(Reply), nil
}

// Replayed reports whether a reply for this message is already cached, so
// handling it again will not touch the ledger.
func (b *Bot) Replayed(userID, messageID string) bool {
	userID = strings.TrimSpace(userID)
	if b.replies == nil || userID == "" || messageID == "" {
		return false
	}
	return b.replies.Contains(replyKey(userID, messageID))
}

func replyKey(userID, messageID string) string {
	return userID + "\x00" + messageID
}

func (b *Bot) run(ctx context.Context, msg Message) Reply {
	return Reply{
		Text:     b.handler.Handle(ctx, msg.Text, msg.UserID),
		Keyboard: command.MainKeyboard(),
	}
}
