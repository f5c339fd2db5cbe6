package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookChannel posts the message text as JSON to a chat-style webhook.
type WebhookChannel struct {
	client *resty.Client
	url    string
}

type webhookPayload struct {
	Text string `json:"text"`
}

// NewWebhookChannel constructs a webhook channel for url.
func NewWebhookChannel(url string, timeout time.Duration) *WebhookChannel {
	client := resty.New()
	client.SetTimeout(timeout)
	return &WebhookChannel{client: client, url: url}
}

// Name identifies this channel in delivery results and metrics.
func (c *WebhookChannel) Name() string {
	return "webhook"
}

// Send posts the message. A non-2xx response counts as a delivery failure.
func (c *WebhookChannel) Send(ctx context.Context, msg Message) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{Text: msg.Text}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}
