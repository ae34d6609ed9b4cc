package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ledgerbot/internal/command"
)

// ErrInvalidMessage marks payloads that can never be processed.
var ErrInvalidMessage = errors.New("invalid inbound message")

// InboundMessage is one chat message delivered on the inbound queue.
type InboundMessage struct {
	MessageID string `json:"message_id,omitempty"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
}

// OutboundMessage carries the reply for an InboundMessage.
type OutboundMessage struct {
	MessageID string           `json:"message_id,omitempty"`
	UserID    string           `json:"user_id"`
	Reply     string           `json:"reply"`
	Keyboard  command.Keyboard `json:"keyboard"`
	Timestamp time.Time        `json:"timestamp"`
}

// DecodeInbound parses and validates an inbound payload.
func DecodeInbound(data []byte) (*InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	msg.UserID = strings.TrimSpace(msg.UserID)
	if msg.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidMessage)
	}
	return &msg, nil
}

// ToJSON converts the message to JSON bytes
func (m *OutboundMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
