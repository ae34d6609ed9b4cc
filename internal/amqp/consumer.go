package amqp

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"ledgerbot/internal/bot"
	applog "ledgerbot/internal/log"

	"github.com/rabbitmq/amqp091-go"
)

var errDeliveriesClosed = errors.New("delivery channel closed")

// MessageHandler is satisfied by *bot.Bot.
type MessageHandler interface {
	Handle(ctx context.Context, msg bot.Message) (bot.Reply, error)
}

// Replier publishes a reply payload.
type Replier interface {
	Reply(ctx context.Context, replyTo, correlationID string, body []byte) error
}

type session interface {
	Replier
	Consume(ctx context.Context) (<-chan amqp091.Delivery, error)
	NotifyClose() <-chan *amqp091.Error
	Close() error
}

// Consumer feeds inbound deliveries to the bot and publishes replies. It
// reconnects with capped exponential backoff until its context ends.
type Consumer struct {
	bot       MessageHandler
	dial      func() (session, error)
	logger    *applog.Logger
	queue     string
	connected atomic.Bool
	sleep     func(ctx context.Context, d time.Duration) bool
}

// NewConsumer returns a consumer for the topology in cfg.
func NewConsumer(cfg Config, handler MessageHandler, logger *applog.Logger) *Consumer {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Consumer{
		bot:    handler,
		dial:   func() (session, error) { return Dial(cfg) },
		logger: logger.WithComponent(applog.ComponentAMQP),
		queue:  cfg.InboundQueue,
		sleep:  sleepCtx,
	}
}

// Ready returns an error while the broker connection is down.
func (c *Consumer) Ready() error {
	if !c.connected.Load() {
		return errors.New("amqp: not connected")
	}
	return nil
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	attempt := 0
	for {
		s, err := c.dial()
		if err != nil {
			delay := exponentialBackoff(attempt)
			c.logger.WarnContext(ctx, "AMQP connect failed, retrying",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeNetwork,
				"retry_in", delay.String(),
				"attempt", attempt+1,
			)
			attempt++
			if !c.sleep(ctx, delay) {
				return nil
			}
			continue
		}

		attempt = 0
		c.connected.Store(true)
		c.logger.InfoContext(ctx, "AMQP consumer started", applog.FieldQueue, c.queue, applog.FieldOperation, applog.OpStartup)

		err = c.consume(ctx, s)
		c.connected.Store(false)
		_ = s.Close()

		if ctx.Err() != nil {
			c.logger.InfoContext(ctx, "AMQP consumer stopped", applog.FieldOperation, applog.OpShutdown)
			return nil
		}
		c.logger.WarnContext(ctx, "AMQP session lost, reconnecting", applog.FieldError, err)
	}
}

func (c *Consumer) consume(ctx context.Context, s session) error {
	deliveries, err := s.Consume(ctx)
	if err != nil {
		return err
	}
	closed := s.NotifyClose()

	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr, ok := <-closed:
			if !ok || amqpErr == nil {
				return errDeliveriesClosed
			}
			return amqpErr
		case d, ok := <-deliveries:
			if !ok {
				return errDeliveriesClosed
			}
			c.processDelivery(ctx, s, d)
		}
	}
}

// processDelivery handles one delivery. Malformed payloads are dropped;
// failed reply publishes are requeued. For messages that carry an id the
// retry replays the cached reply instead of running the command again.
func (c *Consumer) processDelivery(ctx context.Context, r Replier, d amqp091.Delivery) {
	msg, err := DecodeInbound(d.Body)
	if err != nil {
		c.logger.WarnContext(ctx, "Dropping malformed message",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeValidation,
			applog.FieldCorrelation, d.CorrelationId,
		)
		_ = d.Nack(false, false)
		return
	}
	if msg.MessageID == "" {
		msg.MessageID = d.MessageId
	}

	reply, err := c.bot.Handle(ctx, bot.Message{ID: msg.MessageID, UserID: msg.UserID, Text: msg.Text})
	if err != nil {
		c.logger.ErrorContext(ctx, "Message rejected", applog.FieldUserID, msg.UserID, applog.FieldError, err)
		_ = d.Nack(false, false)
		return
	}

	out := OutboundMessage{
		MessageID: msg.MessageID,
		UserID:    msg.UserID,
		Reply:     reply.Text,
		Keyboard:  reply.Keyboard,
		Timestamp: time.Now().UTC(),
	}
	body, err := out.ToJSON()
	if err != nil {
		c.logger.ErrorContext(ctx, "Encode reply failed", applog.FieldError, err)
		_ = d.Nack(false, false)
		return
	}

	correlationID := d.CorrelationId
	if correlationID == "" {
		correlationID = msg.MessageID
	}
	if err := r.Reply(ctx, d.ReplyTo, correlationID, body); err != nil {
		errType := applog.ErrorTypeInternal
		if isConnectionError(err) {
			errType = applog.ErrorTypeNetwork
		}
		c.logger.ErrorContext(ctx, "Publish reply failed, requeueing",
			applog.FieldUserID, msg.UserID,
			applog.FieldError, err,
			applog.FieldErrorType, errType,
		)
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
	c.logger.DebugContext(ctx, "Reply published",
		applog.FieldUserID, msg.UserID,
		applog.FieldMessageID, msg.MessageID,
		applog.FieldCorrelation, correlationID,
		applog.FieldOperation, applog.OpPublish,
	)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
