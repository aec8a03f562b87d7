package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func Test_NewTracerProvider_Disabled(t *testing.T) {
	// when
	shutdown, err := NewTracerProvider(context.Background(), "product", config.TracesConfig{Enabled: false})
	// then
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func Test_NewMeterProvider(t *testing.T) {
	t.Run("Disabled - handler answers 404", func(t *testing.T) {
		// given
		metrics, err := NewMeterProvider("product", config.MetricsConfig{Enabled: false})
		require.NoError(t, err)
		rr := httptest.NewRecorder()
		// when
		metrics.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		// then
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.NoError(t, metrics.Shutdown(context.Background()))
	})

	t.Run("Enabled - recorded counter is exposed", func(t *testing.T) {
		// given
		metrics, err := NewMeterProvider("product", config.MetricsConfig{Enabled: true})
		require.NoError(t, err)
		defer func() { _ = metrics.Shutdown(context.Background()) }()
		counter, err := otel.Meter("test").Int64Counter("test.requests")
		require.NoError(t, err)
		counter.Add(context.Background(), 3)
		rr := httptest.NewRecorder()
		// when
		metrics.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		// then
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "test_requests_total")
	})
}
