// Package app contains the application setup for the product service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/service"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/internal/transport/rest"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/abgdnv/productcatalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const operationName = "product-service"

// Infrastructure holds the connections the service runs on.
// A nil DBPool selects the in-memory store, a nil Cache disables caching
// and a nil Publisher drops events.
type Infrastructure struct {
	DBPool    *pgxpool.Pool
	Cache     store.Cache
	Publisher messaging.Publisher
	Metrics   http.Handler
	// Checks are run by /readyz, keyed by the name reported on failure.
	Checks map[string]ReadinessCheck
}

// ReadinessCheck reports whether a backing connection can serve requests.
type ReadinessCheck func(ctx context.Context) error

type Dependencies struct {
	Store   store.ProductStore
	Rules   service.ProductRules
	Metrics http.Handler
	Checks  map[string]ReadinessCheck
	Logger  *slog.Logger
}

func SetupDependencies(infra Infrastructure, logger *slog.Logger) (*Dependencies, error) {
	var productStore store.ProductStore
	if infra.DBPool != nil {
		productStore = store.NewPgStore(infra.DBPool)
	} else {
		logger.Warn("No database configured, products are kept in memory")
		productStore = store.NewInMemoryStore()
	}
	if infra.Cache != nil {
		productStore = store.NewCachedStore(productStore, infra.Cache, logger)
	}

	publisher := infra.Publisher
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	rules, err := service.NewService(productStore, publisher, logger)
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		Store:   productStore,
		Rules:   rules,
		Metrics: infra.Metrics,
		Checks:  infra.Checks,
		Logger:  logger,
	}, nil
}

// SetupHttpHandler initializes the routes and middleware of the product service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.Store, deps.Rules, deps.Logger)
	productHandler.RegisterRoutes(mux)
	mux.Get("/readyz", readyHandler(deps.Checks, deps.Logger))
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
}

// readyHandler answers 200 when every check passes and 503 otherwise.
func readyHandler(checks map[string]ReadinessCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eg, ctx := errgroup.WithContext(r.Context())
		for name, check := range checks {
			eg.Go(func() error {
				if err := check(ctx); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			logger.ErrorContext(r.Context(), "Readiness check failed", "error", err)
			http.Error(w, "Service Unavailable: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// SetupHttpServer creates and configures an HTTP server for the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, operationName, mux)
}
