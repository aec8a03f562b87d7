package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/store/db"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/abgdnv/productcatalog/pkg/messaging/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	product   db.Product
	error     error
	decrement int
}

func (m *mockProductStore) FindAll(_ context.Context) ([]db.Product, error) {
	return []db.Product{m.product}, m.error
}

func (m *mockProductStore) FindByID(_ context.Context, _ uuid.UUID) (*db.Product, error) {
	return &m.product, m.error
}

func (m *mockProductStore) Create(_ context.Context, p db.Product) (*db.Product, error) {
	return &p, m.error
}

func (m *mockProductStore) Update(_ context.Context, p db.Product) (*db.Product, error) {
	return &p, m.error
}

func (m *mockProductStore) DeleteByID(_ context.Context, _ uuid.UUID) error {
	return m.error
}

// Simulate the conditional decrement
func (m *mockProductStore) DecrementStock(_ context.Context, _ uuid.UUID, _ int32) (*db.Product, error) {
	m.decrement++
	if m.error != nil {
		return nil, m.error
	}
	return &m.product, nil
}

// mockPublisher records published events
type mockPublisher struct {
	events []messaging.Event
	error  error
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	m.events = append(m.events, event)
	return m.error
}

func newTestService(t *testing.T, store *mockProductStore, publisher messaging.Publisher) *Service {
	t.Helper()
	s, err := NewService(store, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func Test_ProductService_Search(t *testing.T) {
	products := []db.Product{
		{Name: "Red Apple", Description: "Fresh fruit"},
		{Name: "Banana", Description: "Yellow and sweet"},
		{Name: "Green apple juice", Description: "Drink"},
	}
	testCases := []struct {
		name     string
		term     string
		expected []string
	}{
		{name: "Empty term returns all", term: "", expected: []string{"Red Apple", "Banana", "Green apple juice"}},
		{name: "Blank term returns all", term: "   ", expected: []string{"Red Apple", "Banana", "Green apple juice"}},
		{name: "Case-insensitive name match keeps order", term: "APPLE", expected: []string{"Red Apple", "Green apple juice"}},
		{name: "Description match", term: "sweet", expected: []string{"Banana"}},
		{name: "No match", term: "kiwi", expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := newTestService(t, &mockProductStore{}, messaging.NoopPublisher{})
			// when
			found := service.Search(products, tc.term)
			// then
			names := make([]string, 0, len(found))
			for _, p := range found {
				names = append(names, p.Name)
			}
			assert.Equal(t, tc.expected, names)
		})
	}
}

func Test_ProductService_Buy(t *testing.T) {
	ErrStoreError := errors.New("store error")
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name              string
		mockStore         *mockProductStore
		quantity          int32
		expected          bool
		expectError       error
		expectedDecrement int
		expectedSubjects  []string
	}{
		{
			name: "Success - stock left",
			mockStore: &mockProductStore{
				product: db.Product{ID: mockID, StockQuantity: 2, Status: db.StatusInStock},
			},
			quantity:          3,
			expected:          true,
			expectedDecrement: 1,
			expectedSubjects:  []string{messaging.ProductPurchasedSubject},
		},
		{
			name: "Success - sold out",
			mockStore: &mockProductStore{
				product: db.Product{ID: mockID, StockQuantity: 0, Status: db.StatusOutOfStock},
			},
			quantity:          2,
			expected:          true,
			expectedDecrement: 1,
			expectedSubjects:  []string{messaging.ProductPurchasedSubject, messaging.ProductOutOfStockSubject},
		},
		{
			name:              "Rejected - zero quantity",
			mockStore:         &mockProductStore{},
			quantity:          0,
			expected:          false,
			expectedDecrement: 0,
		},
		{
			name:              "Rejected - negative quantity",
			mockStore:         &mockProductStore{},
			quantity:          -1,
			expected:          false,
			expectedDecrement: 0,
		},
		{
			name:              "Rejected - insufficient stock",
			mockStore:         &mockProductStore{error: perrors.ErrInsufficientStock},
			quantity:          3,
			expected:          false,
			expectedDecrement: 1,
		},
		{
			name:              "Error - product not found",
			mockStore:         &mockProductStore{error: perrors.ErrProductNotFound},
			quantity:          1,
			expectError:       perrors.ErrProductNotFound,
			expectedDecrement: 1,
		},
		{
			name:              "Error - store error",
			mockStore:         &mockProductStore{error: ErrStoreError},
			quantity:          1,
			expectError:       ErrStoreError,
			expectedDecrement: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &mockPublisher{}
			service := newTestService(t, tc.mockStore, publisher)
			// when
			ok, err := service.Buy(context.Background(), mockID, tc.quantity)
			// then
			assert.Equal(t, tc.expectedDecrement, tc.mockStore.decrement)
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.False(t, ok)
				assert.Empty(t, publisher.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ok)
			subjects := make([]string, 0, len(publisher.events))
			for _, e := range publisher.events {
				subjects = append(subjects, e.Subject())
			}
			assert.ElementsMatch(t, tc.expectedSubjects, subjects)
		})
	}
}

func Test_ProductService_Buy_EventPayload(t *testing.T) {
	// given
	mockID := uuid.New()
	publisher := &mockPublisher{}
	service := newTestService(t, &mockProductStore{
		product: db.Product{ID: mockID, StockQuantity: 7, Status: db.StatusInStock},
	}, publisher)
	// when
	ok, err := service.Buy(context.Background(), mockID, 3)
	// then
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, events.ProductPurchasedEvent{
		ProductID:      mockID,
		Quantity:       3,
		RemainingStock: 7,
		PurchasedAt:    time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
	}, publisher.events[0])
}

func Test_ProductService_Buy_PublishFailureDoesNotFailPurchase(t *testing.T) {
	// given
	publisher := &mockPublisher{error: messaging.ErrPublisherUnavailable}
	service := newTestService(t, &mockProductStore{
		product: db.Product{StockQuantity: 0, Status: db.StatusOutOfStock},
	}, publisher)
	// when
	ok, err := service.Buy(context.Background(), uuid.New(), 1)
	// then
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, publisher.events, 2)
}
