// Package notify delivers short text messages to users and nominees.
package notify

import (
	"context"

	"github.com/BijjaSagar/vashihat-nama/internal/logging"
)

// Notifier sends message to recipient. The recipient format depends on
// the channel: a mobile number for SMS, an address for email.
type Notifier interface {
	Send(ctx context.Context, recipient, message string) error
}

// LogNotifier only logs. It stands in for real channels in development.
type LogNotifier struct {
	log     logging.Logger
	channel string
}

func NewLogNotifier(log logging.Logger, channel string) *LogNotifier {
	return &LogNotifier{log: log, channel: channel}
}

func (n *LogNotifier) Send(ctx context.Context, recipient, message string) error {
	n.log.Info(ctx, "notification not delivered (dev mode)", "channel", n.channel, "to", recipient, "message", message)
	return nil
}
