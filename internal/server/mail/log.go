package mail

import (
	"context"

	"github.com/dmitrijs2005/addressbook/internal/logging"
)

// LogTransport writes emails to the log instead of sending them. It is used
// when no SendGrid key is configured.
type LogTransport struct {
	log logging.Logger
}

func NewLogTransport(log logging.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(ctx context.Context, msg *Message) error {
	t.log.Info(ctx, "email not sent (log transport)",
		"to", msg.ToAddress,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}
