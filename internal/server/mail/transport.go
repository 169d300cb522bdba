// Package mail delivers rendered reminders. Transports report Skipped when
// delivery is switched off or not configured, so callers can retry later.
package mail

import "context"

// Message is a single outgoing reminder.
type Message struct {
	// BorrowerID is not sent; decorators use it to file the message.
	BorrowerID string
	To         string
	Subject    string
	Text       string
	HTML       string
}

// Outcome is the non-error result of a Send.
type Outcome int

const (
	Delivered Outcome = iota
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Transport sends a Message. An error means the attempt failed; Skipped
// means no attempt was made.
type Transport interface {
	Send(ctx context.Context, m Message) (Outcome, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, m Message) (Outcome, error)

func (f TransportFunc) Send(ctx context.Context, m Message) (Outcome, error) {
	return f(ctx, m)
}
