// Package main runs the product catalogue HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/abgdnv/productcatalog/internal/app"
	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/migrations"
	"github.com/abgdnv/productcatalog/pkg/bootstrap"
	"github.com/abgdnv/productcatalog/pkg/cache"
	pkgconfig "github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/config/configloader"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	pkgnats "github.com/abgdnv/productcatalog/pkg/nats"
	"github.com/abgdnv/productcatalog/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "product"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, connects the infrastructure and serves HTTP (and pprof) until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry.Traces)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer shutdownProvider(logger, "tracer", shutdownTracer, cfg)

	metrics, err := telemetry.NewMeterProvider(serviceName, cfg.Telemetry.Metrics)
	if err != nil {
		return fmt.Errorf("failed to set up metrics: %w", err)
	}
	defer shutdownProvider(logger, "meter", metrics.Shutdown, cfg)

	infra := app.Infrastructure{
		Metrics: metrics.Handler,
		Checks:  make(map[string]app.ReadinessCheck),
	}

	if cfg.Database.Driver == pkgconfig.DriverPostgres {
		if cfg.Database.Migrate {
			if err := bootstrap.Migrate(migrations.FS, ".", cfg.Database.URL); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			logger.Info("Database migrations applied")
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return fmt.Errorf("failed to create database connection pool: %w", err)
		}
		defer dbPool.Close()
		logger.Info("Successfully connected to the database!")
		infra.DBPool = dbPool
		infra.Checks["postgres"] = dbPool.Ping
	}

	if cfg.Redis.Enabled {
		redisClient, err := bootstrap.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("failed to close redis client", "error", err)
			}
		}()
		productCache := cache.New(redisClient, cfg.Redis.Prefix, cfg.Redis.TTL)
		defer func() {
			logger.Info("Cache statistics", "stats", productCache.Stats())
		}()
		logger.Info("Successfully connected to Redis", "addr", cfg.Redis.Addr)
		infra.Cache = productCache
		infra.Checks["redis"] = productCache.Ping
	}

	if cfg.NATS.Enabled {
		nc, err := pkgnats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
		if err != nil {
			return err
		}
		defer nc.Close()
		js, err := pkgnats.NewJetStreamContext(nc)
		if err != nil {
			return err
		}
		if err := pkgnats.EnsureStream(ctx, js, cfg.NATS.Stream); err != nil {
			return err
		}
		logger.Info("Successfully connected to NATS", "url", cfg.NATS.Url, "stream", cfg.NATS.Stream)
		infra.Publisher = messaging.NewBreakerPublisher(pkgnats.NewNatsPublisher(js), cfg.Resilience.CircuitBreaker)
	}

	deps, err := app.SetupDependencies(infra, logger)
	if err != nil {
		return fmt.Errorf("failed to set up dependencies: %w", err)
	}
	httpServer := app.SetupHttpServer(deps, cfg)
	pprofServer := &http.Server{
		Addr: cfg.PProf.Addr,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := cfg.Shutdown.Context()
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := cfg.Shutdown.Context()
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// shutdownProvider flushes a telemetry provider within the configured shutdown timeout.
func shutdownProvider(logger *slog.Logger, name string, shutdown telemetry.ShutdownFunc, cfg *config.Config) {
	ctx, cancel := cfg.Shutdown.Context()
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("failed to shut down telemetry provider", "provider", name, "error", err)
	}
}
