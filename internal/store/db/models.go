package db

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Price         int64         `json:"price"`
	StockQuantity int32         `json:"stockQuantity"`
	Status        ProductStatus `json:"status"`
	CreatedDate   time.Time     `json:"createdDate"`
}
