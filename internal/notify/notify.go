// Package notify renders and delivers email notifications.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

var ErrInvalidMessage = errors.New("invalid message")

func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.Join(ErrInvalidMessage, errors.New("recipient is required"))
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.Join(ErrInvalidMessage, errors.New("subject is required"))
	}
	return nil
}

// Notifier delivers a message. Implementations must honor ctx cancellation.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the log instead of sending them. It is the
// default for local development.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.InfoContext(ctx, "Notification delivered to log",
		"recipient", msg.To,
		"subject", msg.Subject,
		"html_bytes", len(msg.HTML))
	return nil
}
