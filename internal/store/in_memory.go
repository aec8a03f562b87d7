package store

import (
	"context"
	"sync"

	"github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/store/db"
	"github.com/google/uuid"
)

// InMemoryStore implements ProductStore using an in-memory map.
// Products are listed in insertion order.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[uuid.UUID]db.Product
	order    []uuid.UUID
}

// NewInMemoryStore creates a new, empty instance of InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[uuid.UUID]db.Product),
	}
}

// FindAll retrieves all products in insertion order.
func (s *InMemoryStore) FindAll(_ context.Context) ([]db.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]db.Product, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.products[id])
	}
	return list, nil
}

// FindByID retrieves a product by its ID.
func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*db.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	return &p, nil
}

// Create stores the product as given. A nil ID is replaced with a fresh one.
func (s *InMemoryStore) Create(_ context.Context, product db.Product) (*db.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if _, exists := s.products[product.ID]; !exists {
		s.order = append(s.order, product.ID)
	}
	s.products[product.ID] = product

	return &product, nil
}

// Update replaces the mutable fields of a product, keeping its creation date.
func (s *InMemoryStore) Update(_ context.Context, product db.Product) (*db.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products[product.ID]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	current.Name = product.Name
	current.Description = product.Description
	current.Price = product.Price
	current.StockQuantity = product.StockQuantity
	current.Status = db.StatusForStock(product.StockQuantity)
	s.products[current.ID] = current

	return &current, nil
}

// DeleteByID deletes a product by its ID.
func (s *InMemoryStore) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return errors.ErrProductNotFound
	}
	delete(s.products, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// DecrementStock removes quantity units from the product stock under the write lock.
func (s *InMemoryStore) DecrementStock(_ context.Context, id uuid.UUID, quantity int32) (*db.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	if p.Status != db.StatusInStock || quantity <= 0 || p.StockQuantity < quantity {
		return nil, errors.ErrInsufficientStock
	}
	p.StockQuantity -= quantity
	if p.StockQuantity == 0 {
		p.Status = db.StatusOutOfStock
	}
	s.products[id] = p

	return &p, nil
}
