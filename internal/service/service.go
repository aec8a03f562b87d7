// Package service provides the product business rules: catalogue search and stock purchase.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/internal/store/db"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/abgdnv/productcatalog/pkg/messaging/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/abgdnv/productcatalog/internal/service"

// ProductRules defines the business rules applied to products.
type ProductRules interface {
	// Search returns the products whose name or description contains term, ignoring case.
	// A blank term returns products unchanged.
	Search(products []db.Product, term string) []db.Product

	// Buy removes quantity units from the product stock.
	// Returns false without an error when the purchase is rejected (non-positive quantity, out of stock,
	// not enough units). Returns ErrProductNotFound if no product exists with the given ID.
	Buy(ctx context.Context, id uuid.UUID, quantity int32) (bool, error)
}

// Service implements ProductRules on top of a ProductStore.
type Service struct {
	store     store.ProductStore
	publisher messaging.Publisher
	logger    *slog.Logger
	now       func() time.Time

	purchases metric.Int64Counter
	unitsSold metric.Int64Counter
	rejected  metric.Int64Counter
}

// NewService creates a new instance of Service. Metrics are registered on the global meter provider.
func NewService(store store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) (*Service, error) {
	meter := otel.Meter(meterName)

	purchases, err := meter.Int64Counter("product.purchases",
		metric.WithDescription("Number of successful purchases"))
	if err != nil {
		return nil, fmt.Errorf("failed to create purchases counter: %w", err)
	}
	unitsSold, err := meter.Int64Counter("product.units_sold",
		metric.WithDescription("Number of product units sold"))
	if err != nil {
		return nil, fmt.Errorf("failed to create units sold counter: %w", err)
	}
	rejected, err := meter.Int64Counter("product.purchases_rejected",
		metric.WithDescription("Number of rejected purchases"))
	if err != nil {
		return nil, fmt.Errorf("failed to create rejected purchases counter: %w", err)
	}

	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger.With("component", "product_rules"),
		now:       time.Now,
		purchases: purchases,
		unitsSold: unitsSold,
		rejected:  rejected,
	}, nil
}

// Search keeps the relative order of products.
func (s *Service) Search(products []db.Product, term string) []db.Product {
	term = strings.TrimSpace(term)
	if term == "" {
		return products
	}
	needle := strings.ToLower(term)

	found := make([]db.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			found = append(found, p)
		}
	}
	return found
}

// Buy performs the purchase as one atomic stock decrement in the store.
func (s *Service) Buy(ctx context.Context, id uuid.UUID, quantity int32) (bool, error) {
	if quantity <= 0 {
		s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "invalid_quantity")))
		return false, nil
	}

	product, err := s.store.DecrementStock(ctx, id, quantity)
	if err != nil {
		if errors.Is(err, perrors.ErrInsufficientStock) {
			s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "insufficient_stock")))
			return false, nil
		}
		return false, fmt.Errorf("failed to buy product %s: %w", id, err)
	}

	s.purchases.Add(ctx, 1)
	s.unitsSold.Add(ctx, int64(quantity))
	s.logger.InfoContext(ctx, "product purchased",
		"product_id", id, "quantity", quantity, "remaining_stock", product.StockQuantity)

	at := s.now().UTC()
	s.publish(ctx, events.ProductPurchasedEvent{
		ProductID:      id,
		Quantity:       quantity,
		RemainingStock: product.StockQuantity,
		PurchasedAt:    at,
	})
	if product.Status == db.StatusOutOfStock {
		s.publish(ctx, events.ProductOutOfStockEvent{ProductID: id, At: at})
	}
	return true, nil
}

// publish never fails the caller: the purchase is already committed.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "subject", event.Subject(), "error", err)
	}
}
