package ports

import "context"

// EmailMessage is a single outbound email.
type EmailMessage struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// EmailSender delivers a message over one channel.
type EmailSender interface {
	Name() string
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailDispatcher delivers a message, falling back to a secondary channel
// when the primary fails. Channel reports which sender delivered it.
type EmailDispatcher interface {
	Dispatch(ctx context.Context, msg EmailMessage) (channel string, err error)
}
