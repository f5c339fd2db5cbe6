// Package notify delivers run summaries to the configured channels.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Message is a transport-agnostic notification. Subject is used where the
// channel supports one (email); chat-style channels send only Text.
type Message struct {
	Subject string
	Text    string
}

// Channel is a single notification endpoint.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Delivery is the per-channel outcome of one fan-out. Failures are reported
// to the caller rather than swallowed inline; they never abort the run.
type Delivery struct {
	Channel string
	Err     error
	Elapsed time.Duration
}

// Dispatcher fans a message out to every configured channel concurrently and
// waits for all of them. Channels share no state; partial failure of one
// never blocks another.
type Dispatcher struct {
	channels []Channel
	logger   *zap.Logger
}

// NewDispatcher constructs a Dispatcher over the given channels. Zero
// channels is valid: Notify becomes a no-op.
func NewDispatcher(logger *zap.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels, logger: logger}
}

// Channels reports the number of configured channels.
func (d *Dispatcher) Channels() int {
	return len(d.channels)
}

// Notify sends msg on every channel and returns one Delivery per channel, in
// channel order. It returns nil when no channel is configured.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) []Delivery {
	if len(d.channels) == 0 {
		return nil
	}
	deliveries := make([]Delivery, len(d.channels))
	var wg sync.WaitGroup
	for i, ch := range d.channels {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			start := time.Now()
			err := ch.Send(ctx, msg)
			deliveries[i] = Delivery{
				Channel: ch.Name(),
				Err:     err,
				Elapsed: time.Since(start),
			}
		}(i, ch)
	}
	wg.Wait()

	for _, del := range deliveries {
		if del.Err != nil {
			d.logger.Warn("notification delivery failed",
				zap.String("channel", del.Channel),
				zap.Duration("elapsed", del.Elapsed),
				zap.Error(del.Err),
			)
		}
	}
	return deliveries
}
