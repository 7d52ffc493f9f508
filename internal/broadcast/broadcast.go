// Package broadcast fans stored webhook events out to live subscribers
// (the inspector stream) over an in-process watermill pub/sub.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/josh-kwaku/kyc-verify/internal/domain"
)

const Topic = "kyc.webhook.stored"

type Broadcaster struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

// New builds a non-persistent broadcaster. Publish never waits for
// subscribers to acknowledge, so a slow stream cannot hold up the receiver.
func New(buffer int64, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            buffer,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewSlogLogger(logger),
	)
	return &Broadcaster{pubsub: pubsub, logger: logger}
}

func (b *Broadcaster) Publish(ctx context.Context, event domain.WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("Publish: marshal: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("webhook_event_id", event.ID)
	msg.Metadata.Set("kind", string(event.Kind))
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("Publish: %w", err)
	}
	return nil
}

// Subscribe delivers every event published after the call until ctx is
// done, then closes the returned channel.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan domain.WebhookEvent, error) {
	msgs, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, fmt.Errorf("Subscribe: %w", err)
	}

	out := make(chan domain.WebhookEvent)
	go func() {
		defer close(out)
		for msg := range msgs {
			var event domain.WebhookEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.logger.Warn("dropping undecodable broadcast message", "message_uuid", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			select {
			case out <- event:
				msg.Ack()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Broadcaster) Close() error {
	return b.pubsub.Close()
}
