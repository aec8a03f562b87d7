// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/service"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/internal/store/db"
	"github.com/abgdnv/productcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// BasePath is the route prefix of the product API.
const BasePath = "/api/products"

const (
	defaultSkip int32 = 0
	defaultTake int32 = 10
)

// ProductPayload is the request body of Create and Update.
// Status and creation date are owned by the server and are not accepted from clients.
type ProductPayload struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"          validate:"required,max=100"`
	Description   string    `json:"description"   validate:"max=1000"`
	Price         int64     `json:"price"         validate:"min=0"`
	StockQuantity int32     `json:"stockQuantity" validate:"min=0"`
}

type Handler struct {
	store    store.ProductStore
	rules    service.ProductRules
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates a new instance of Handler with the provided store and rules engine.
func NewHandler(store store.ProductStore, rules service.ProductRules, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		rules:    rules,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
		now:      time.Now,
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route(BasePath, func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
			r.Post("/buy", h.Buy)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindAll lists products matching the optional searchTerm, paginated with skip and take.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	skip, ok := web.ParseValidateGteOrDefault(r, w, h.logger, "skip", 0, defaultSkip)
	if !ok {
		return
	}
	take, ok := web.ParseValidateGteOrDefault(r, w, h.logger, "take", 0, defaultTake)
	if !ok {
		return
	}
	term := r.URL.Query().Get("searchTerm")

	h.logger.DebugContext(r.Context(), "Received request to find all products", "skip", skip, "take", take, "searchTerm", term)
	all, err := h.store.FindAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	list := paginate(h.rules.Search(all, term), skip, take)
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}

	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, ok := h.findProduct(w, r, id)
	if !ok {
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Create handles the creation of a new product. The server assigns ID, status and creation date.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	created, err := h.store.Create(r.Context(), db.Product{
		ID:            uuid.New(),
		Name:          payload.Name,
		Description:   payload.Description,
		Price:         payload.Price,
		StockQuantity: payload.StockQuantity,
		Status:        db.StatusInStock,
		CreatedDate:   h.now().UTC(),
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	w.Header().Set("Location", BasePath+"/"+created.ID.String())
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// Update replaces a product. The ID in the body must match the ID in the path.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	if payload.ID != id {
		h.logger.WarnContext(r.Context(), "Product ID mismatch", "ID", id, "payloadID", payload.ID)
		web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Product ID mismatch: path %s, body %s", id, payload.ID))
		return
	}

	updated, err := h.store.Update(r.Context(), db.Product{
		ID:            id,
		Name:          payload.Name,
		Description:   payload.Description,
		Price:         payload.Price,
		StockQuantity: payload.StockQuantity,
	})
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if _, ok := h.findProduct(w, r, id); !ok {
		return
	}

	if err := h.store.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// Buy purchases quantity units of a product.
// The stock check here only produces a precise message; the store decrement is what prevents overselling.
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	quantity, ok := web.ParseValidateGt(r, w, h.logger, "quantity", 0)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to buy product", "ID", id, "quantity", quantity)

	product, ok := h.findProduct(w, r, id)
	if !ok {
		return
	}
	if product.Status == db.StatusOutOfStock {
		h.logger.InfoContext(r.Context(), "Product is out of stock", "ID", id)
		web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Product with ID %s is out of stock", id))
		return
	}
	if quantity > product.StockQuantity {
		h.logger.InfoContext(r.Context(), "Insufficient stock", "ID", id, "requested", quantity, "available", product.StockQuantity)
		web.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Sprintf("Insufficient stock: requested %d, available %d", quantity, product.StockQuantity))
		return
	}

	bought, err := h.rules.Buy(r.Context(), id, quantity)
	switch {
	case errors.Is(err, perrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found for purchase", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
	case err != nil:
		h.logger.ErrorContext(r.Context(), "Error buying product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to buy product with ID %s", id))
	case !bought:
		h.logger.InfoContext(r.Context(), "Purchase rejected", "ID", id, "quantity", quantity)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Purchase failed")
	default:
		h.logger.InfoContext(r.Context(), "Product purchased successfully", "ID", id, "quantity", quantity)
		web.RespondText(w, http.StatusOK, fmt.Sprintf("Successfully purchased %d unit(s) of %s", quantity, product.Name))
	}
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// findProduct loads a product and writes the 404/500 response itself when it cannot.
func (h *Handler) findProduct(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*db.Product, bool) {
	found, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return nil, false
		}
		h.logger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return nil, false
	}
	return found, true
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (*ProductPayload, bool) {
	var payload ProductPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if err := h.validate.Struct(payload); err != nil {
		web.RespondValidationError(w, h.logger, err)
		return nil, false
	}
	return &payload, true
}

func paginate(products []db.Product, skip, take int32) []db.Product {
	start := min(int(skip), len(products))
	end := min(start+int(take), len(products))
	if start == end {
		return []db.Product{}
	}
	return products[start:end]
}
