package service

import (
	"context"
	"errors"
)

var (
	// ErrMessageNotFound means a dispatched message is no longer
	// retrievable; the reminder stays sent and is retried next cycle.
	ErrMessageNotFound = errors.New("message not found")

	// ErrDestinationUnknown means the channel could not resolve the
	// configured chat name to a destination id.
	ErrDestinationUnknown = errors.New("destination unknown")
)

// Reaction is an acknowledgment left on a dispatched message.
type Reaction struct {
	Emoji  string
	Sender string
}

// Channel is the messaging transport the lifecycle depends on. The real
// implementation lives in internal/bot; tests inject a fake.
type Channel interface {
	// SendMessage delivers text to the destination chat, mentioning the
	// given assignees, and returns the new message's id.
	SendMessage(ctx context.Context, destination, text string, mentions []string) (string, error)

	// MessageReactions returns the reactions observed on a message.
	MessageReactions(ctx context.Context, messageID string) ([]Reaction, error)

	// ResolveDestination maps a chat name to a destination id.
	ResolveDestination(ctx context.Context, name string) (string, error)
}
