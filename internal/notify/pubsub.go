package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// PubSubChannel publishes the message to a Google Cloud Pub/Sub topic so
// downstream automation can react to availability events.
type PubSubChannel struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

type pubsubPayload struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// NewPubSubChannel creates a Pub/Sub client and verifies the topic exists.
// Authentication uses Application Default Credentials.
func NewPubSubChannel(ctx context.Context, projectID, topicID string) (*PubSubChannel, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(topicID)
	ok, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("check pubsub topic %q: %w", topicID, err)
	}
	if !ok {
		_ = client.Close()
		return nil, fmt.Errorf("pubsub topic %q does not exist in project %q", topicID, projectID)
	}
	return &PubSubChannel{client: client, topic: topic}, nil
}

// Name identifies this channel in delivery results and metrics.
func (c *PubSubChannel) Name() string {
	return "pubsub"
}

// Send publishes the message and waits for the server acknowledgement, so the
// delivery result reflects what actually happened.
func (c *PubSubChannel) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(pubsubPayload{Subject: msg.Subject, Text: msg.Text})
	if err != nil {
		return fmt.Errorf("marshal pubsub payload: %w", err)
	}
	result := c.topic.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Close stops the topic publisher and closes the client.
func (c *PubSubChannel) Close() error {
	c.topic.Stop()
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
