// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/abgdnv/productcatalog/internal/store/db"
	"github.com/google/uuid"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindAll returns all products ordered by creation date.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]db.Product, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*db.Product, error)

	// Create adds a new product to the system.
	Create(ctx context.Context, product db.Product) (*db.Product, error)

	// Update replaces the mutable fields of an existing product and recomputes its status.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, product db.Product) (*db.Product, error)

	// DeleteByID removes a product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DecrementStock atomically removes quantity units from the stock of an in-stock product.
	// Returns ErrProductNotFound if the product does not exist and
	// ErrInsufficientStock if it is out of stock or holds fewer units than requested.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int32) (*db.Product, error)
}

// Cache is the key-value cache used by CachedStore.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}
