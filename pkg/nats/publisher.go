package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher is the subset of jetstream.JetStream used to publish events.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type NatsPublisher struct {
	js Publisher
}

func NewNatsPublisher(js Publisher) *NatsPublisher {
	return &NatsPublisher{js: js}
}

func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	if _, err = p.js.Publish(ctx, event.Subject(), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Subject(), err)
	}
	return nil
}
