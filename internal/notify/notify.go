// Package notify delivers restock notifications to the shop's operators.
package notify

import (
	"context"
	"log/slog"
)

// Message is a plain-text notification.
type Message struct {
	Subject string
	Body    string
}

// Notifier sends a message through some transport.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// ConsoleNotifier writes messages to the structured log. It stands in for a
// real transport when none is configured.
type ConsoleNotifier struct {
	Logger *slog.Logger
}

// Notify logs the message at WARN so it shows up on the operator console.
func (c ConsoleNotifier) Notify(ctx context.Context, msg Message) error {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "notification", "subject", msg.Subject, "body", msg.Body)
	return nil
}
