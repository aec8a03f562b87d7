package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/store/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
	q  *db.Queries
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

// FindAll retrieves all products ordered by creation date.
func (p *PgStore) FindAll(ctx context.Context) ([]db.Product, error) {
	products, err := p.q.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*db.Product, error) {
	product, err := p.q.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

// Create adds a new product to the system.
func (p *PgStore) Create(ctx context.Context, product db.Product) (*db.Product, error) {
	created, err := p.q.Create(ctx, db.CreateParams{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		StockQuantity: product.StockQuantity,
		Status:        product.Status,
		CreatedDate:   product.CreatedDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &created, nil
}

// Update modifies an existing product's details.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, product db.Product) (*db.Product, error) {
	updated, err := p.q.Update(ctx, db.UpdateParams{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		StockQuantity: product.StockQuantity,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &updated, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	count, err := p.q.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if count == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// DecrementStock runs a single conditional UPDATE, so concurrent purchases never oversell.
// When no row matches, the product is looked up again to tell a missing product from short stock.
func (p *PgStore) DecrementStock(ctx context.Context, id uuid.UUID, quantity int32) (*db.Product, error) {
	if quantity > 0 {
		product, err := p.q.DecrementStock(ctx, db.DecrementStockParams{
			ID:            id,
			StockQuantity: quantity,
		})
		if err == nil {
			return &product, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to decrement product stock: %w", err)
		}
	}
	if _, err := p.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, perrors.ErrInsufficientStock
}
