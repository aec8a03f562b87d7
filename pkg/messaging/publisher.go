// Package messaging defines the domain event contract and publisher decorators.
package messaging

import (
	"context"
)

const (
	ProductsSubjects         = "products.>"
	ProductPurchasedSubject  = "products.purchased"
	ProductOutOfStockSubject = "products.out_of_stock"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
