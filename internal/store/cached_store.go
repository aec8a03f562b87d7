package store

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/abgdnv/productcatalog/internal/store/db"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// CachedStore decorates a ProductStore with a cache-aside layer for single product lookups.
// Cache failures are logged and never fail the underlying operation.
type CachedStore struct {
	next   ProductStore
	cache  Cache
	group  singleflight.Group
	logger *slog.Logger

	// generation is bumped by every invalidation. A lookup that started before a bump must not leave its result cached.
	generation atomic.Uint64
}

// NewCachedStore wraps next with the given cache.
func NewCachedStore(next ProductStore, cache Cache, logger *slog.Logger) *CachedStore {
	return &CachedStore{
		next:   next,
		cache:  cache,
		logger: logger.With("component", "cached_store"),
	}
}

func cacheKey(id uuid.UUID) string {
	return id.String()
}

func (s *CachedStore) FindAll(ctx context.Context) ([]db.Product, error) {
	return s.next.FindAll(ctx)
}

// FindByID serves the product from the cache when present. Concurrent misses for the same ID share one lookup.
func (s *CachedStore) FindByID(ctx context.Context, id uuid.UUID) (*db.Product, error) {
	key := cacheKey(id)

	var cached db.Product
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
	}
	if found {
		return &cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// shared by every waiting caller, so one caller going away must not fail the others
		ctx := context.WithoutCancel(ctx)
		gen := s.generation.Load()
		product, err := s.next.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		s.fill(ctx, key, product, gen)
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	product := *v.(*db.Product)
	return &product, nil
}

// fill caches product unless an invalidation happened since gen was read.
// The check after Set covers an invalidation racing with the write itself.
func (s *CachedStore) fill(ctx context.Context, key string, product *db.Product, gen uint64) {
	if s.generation.Load() != gen {
		return
	}
	if err := s.cache.Set(ctx, key, product); err != nil {
		s.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
		return
	}
	if s.generation.Load() != gen {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "cache delete failed", "key", key, "error", err)
		}
	}
}

func (s *CachedStore) Create(ctx context.Context, product db.Product) (*db.Product, error) {
	return s.next.Create(ctx, product)
}

func (s *CachedStore) Update(ctx context.Context, product db.Product) (*db.Product, error) {
	updated, err := s.next.Update(ctx, product)
	s.invalidate(ctx, product.ID)
	return updated, err
}

func (s *CachedStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	err := s.next.DeleteByID(ctx, id)
	s.invalidate(ctx, id)
	return err
}

func (s *CachedStore) DecrementStock(ctx context.Context, id uuid.UUID, quantity int32) (*db.Product, error) {
	product, err := s.next.DecrementStock(ctx, id, quantity)
	if err == nil {
		s.invalidate(ctx, id)
	}
	return product, err
}

func (s *CachedStore) invalidate(ctx context.Context, id uuid.UUID) {
	s.generation.Add(1)
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.logger.WarnContext(ctx, "cache delete failed", "key", cacheKey(id), "error", err)
	}
}
