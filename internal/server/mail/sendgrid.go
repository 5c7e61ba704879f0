package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridTransport delivers mail through the SendGrid v3 API.
type SendGridTransport struct {
	client sendgridClient
	from   *sgmail.Email
}

func NewSendGridTransport(apiKey, fromAddress, fromName string) *SendGridTransport {
	return &SendGridTransport{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromAddress),
	}
}

func (t *SendGridTransport) Send(ctx context.Context, msg *Message) error {
	to := sgmail.NewEmail(msg.ToName, msg.ToAddress)
	message := sgmail.NewSingleEmail(t.from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := t.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
