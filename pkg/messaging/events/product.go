// Package events contains the product domain events published to the broker.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/google/uuid"
)

type ProductPurchasedEvent struct {
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       int32     `json:"quantity"`
	RemainingStock int32     `json:"remaining_stock"`
	PurchasedAt    time.Time `json:"purchased_at"`
}

func (e ProductPurchasedEvent) Subject() string {
	return messaging.ProductPurchasedSubject
}

func (e ProductPurchasedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

type ProductOutOfStockEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	At        time.Time `json:"at"`
}

func (e ProductOutOfStockEvent) Subject() string {
	return messaging.ProductOutOfStockSubject
}

func (e ProductOutOfStockEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
