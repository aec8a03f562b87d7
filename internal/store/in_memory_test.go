package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/store/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(name string, stock int32) db.Product {
	return db.Product{
		ID:            uuid.New(),
		Name:          name,
		Price:         1000,
		StockQuantity: stock,
		Status:        db.StatusInStock,
		CreatedDate:   time.Now().UTC(),
	}
}

func Test_InMemoryStore_CreateAndFind(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewInMemoryStore()
	a, err := s.Create(ctx, newProduct("A", 1))
	require.NoError(t, err)
	b, err := s.Create(ctx, newProduct("B", 2))
	require.NoError(t, err)
	// when
	all, err := s.FindAll(ctx)
	// then
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)

	found, err := s.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, *b, *found)
}

func Test_InMemoryStore_CreateAssignsID(t *testing.T) {
	// given
	s := NewInMemoryStore()
	p := newProduct("A", 1)
	p.ID = uuid.Nil
	// when
	created, err := s.Create(context.Background(), p)
	// then
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func Test_InMemoryStore_FindByID_NotFound(t *testing.T) {
	_, err := NewInMemoryStore().FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func Test_InMemoryStore_Update(t *testing.T) {
	ctx := context.Background()
	testCases := []struct {
		name           string
		stock          int32
		expectedStatus db.ProductStatus
	}{
		{name: "Stock left", stock: 4, expectedStatus: db.StatusInStock},
		{name: "Sold out", stock: 0, expectedStatus: db.StatusOutOfStock},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := NewInMemoryStore()
			created, err := s.Create(ctx, newProduct("A", 10))
			require.NoError(t, err)
			// when
			updated, err := s.Update(ctx, db.Product{
				ID:            created.ID,
				Name:          "B",
				Description:   "desc",
				Price:         5,
				StockQuantity: tc.stock,
				CreatedDate:   time.Time{},
			})
			// then
			require.NoError(t, err)
			assert.Equal(t, "B", updated.Name)
			assert.Equal(t, "desc", updated.Description)
			assert.Equal(t, int64(5), updated.Price)
			assert.Equal(t, tc.stock, updated.StockQuantity)
			assert.Equal(t, tc.expectedStatus, updated.Status)
			assert.Equal(t, created.CreatedDate, updated.CreatedDate)
		})
	}
}

func Test_InMemoryStore_Update_NotFound(t *testing.T) {
	_, err := NewInMemoryStore().Update(context.Background(), newProduct("A", 1))
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func Test_InMemoryStore_DeleteByID(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewInMemoryStore()
	a, _ := s.Create(ctx, newProduct("A", 1))
	b, _ := s.Create(ctx, newProduct("B", 1))
	c, _ := s.Create(ctx, newProduct("C", 1))
	// when
	err := s.DeleteByID(ctx, b.ID)
	// then
	require.NoError(t, err)
	all, _ := s.FindAll(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, c.ID, all[1].ID)
	assert.ErrorIs(t, s.DeleteByID(ctx, b.ID), perrors.ErrProductNotFound)
}

func Test_InMemoryStore_DecrementStock(t *testing.T) {
	testCases := []struct {
		name          string
		stock         int32
		status        db.ProductStatus
		quantity      int32
		expectedStock int32
		expectedState db.ProductStatus
		expectError   error
	}{
		{name: "Partial purchase", stock: 5, status: db.StatusInStock, quantity: 3, expectedStock: 2, expectedState: db.StatusInStock},
		{name: "Sells out", stock: 3, status: db.StatusInStock, quantity: 3, expectedStock: 0, expectedState: db.StatusOutOfStock},
		{name: "Insufficient stock", stock: 2, status: db.StatusInStock, quantity: 3, expectError: perrors.ErrInsufficientStock},
		{name: "Out of stock status", stock: 0, status: db.StatusOutOfStock, quantity: 1, expectError: perrors.ErrInsufficientStock},
		{name: "Zero quantity", stock: 5, status: db.StatusInStock, quantity: 0, expectError: perrors.ErrInsufficientStock},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			ctx := context.Background()
			s := NewInMemoryStore()
			p := newProduct("A", tc.stock)
			p.Status = tc.status
			created, _ := s.Create(ctx, p)
			// when
			updated, err := s.DecrementStock(ctx, created.ID, tc.quantity)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, updated)
				current, _ := s.FindByID(ctx, created.ID)
				assert.Equal(t, tc.stock, current.StockQuantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStock, updated.StockQuantity)
			assert.Equal(t, tc.expectedState, updated.Status)
		})
	}
}

func Test_InMemoryStore_DecrementStock_NotFound(t *testing.T) {
	_, err := NewInMemoryStore().DecrementStock(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func Test_InMemoryStore_DecrementStock_Concurrent(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewInMemoryStore()
	created, _ := s.Create(ctx, newProduct("A", 10))
	var succeeded atomic.Int32
	var wg sync.WaitGroup
	// when
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.DecrementStock(ctx, created.ID, 1); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()
	// then
	current, _ := s.FindByID(ctx, created.ID)
	assert.Equal(t, int32(10), succeeded.Load())
	assert.Equal(t, int32(0), current.StockQuantity)
	assert.Equal(t, db.StatusOutOfStock, current.Status)
}
