// Package nats connects to NATS JetStream and publishes domain events to it.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

func NewClient(url string, timeout time.Duration) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Timeout(timeout), nats.Name("product-service"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

func NewJetStreamContext(nc *nats.Conn) (jetstream.JetStream, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return js, nil
}

// EnsureStream creates the product events stream or updates it to capture all product subjects.
func EnsureStream(ctx context.Context, js jetstream.JetStream, name string) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: []string{messaging.ProductsSubjects},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create or update stream %s: %w", name, err)
	}
	return nil
}
