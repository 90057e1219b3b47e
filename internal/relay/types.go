package relay

import (
	"context"
	"time"
)

// InboundMessage is a user text delivered by the messaging platform.
type InboundMessage struct {
	ConversationID int64
	SenderID       int64
	Text           string
	ReceivedAt     time.Time
}

// OutboundReply is the text sent back to a conversation.
type OutboundReply struct {
	ConversationID int64
	Text           string
}

// Kind tells the relay what to do with an inbound event.
type Kind int

const (
	// KindText is a plain user message answered by the model.
	KindText Kind = iota
	// KindStart is the begin-conversation command, answered with the greeting.
	KindStart
)

// Event is one accepted platform event.
type Event struct {
	Kind    Kind
	Message InboundMessage
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Sender delivers replies to the messaging platform.
type Sender interface {
	Send(ctx context.Context, reply OutboundReply) error
	Typing(ctx context.Context, conversationID int64) error
}
