package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/mizutanik/refurbwatch/internal/config"
)

// EmailChannel delivers the message over SMTP. The configured API key acts as
// the SMTP password (SendGrid-style relays use the fixed username "apikey").
type EmailChannel struct {
	cfg config.EmailConfig
}

// NewEmailChannel constructs an email channel from configuration.
func NewEmailChannel(cfg config.EmailConfig) *EmailChannel {
	return &EmailChannel{cfg: cfg}
}

// Name identifies this channel in delivery results and metrics.
func (c *EmailChannel) Name() string {
	return "email"
}

// Send composes and submits the mail. net/smtp offers no context support, so
// cancellation relies on the server-side timeout.
func (c *EmailChannel) Send(_ context.Context, msg Message) error {
	e := email.NewEmail()
	e.From = c.cfg.From
	e.To = []string{c.cfg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)

	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
	auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.APIKey, c.cfg.Host)
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("send email via %s: %w", addr, err)
	}
	return nil
}
