package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func newRouter(t *testing.T) (*gin.Engine, *sdkmetric.ManualReader) {
	t.Helper()
	ResetMetricsForTesting()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(HTTPMetrics(provider.Meter("test")))
	router.GET("/clients/:id/config", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	return router, reader
}

func TestHTTPMetrics(t *testing.T) {
	t.Run("Should record totals and latency by route template", func(t *testing.T) {
		router, reader := newRouter(t)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clients/acme/config", http.NoBody))
		assert.Equal(t, http.StatusOK, w.Code)

		got := collect(t, reader)
		total, ok := got["floworx_http_requests_total"]
		require.True(t, ok)
		sum, ok := total.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)
		path, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("path"))
		assert.Equal(t, "/clients/:id/config", path.AsString())
		_, ok = got["floworx_http_request_duration_seconds"]
		assert.True(t, ok)
	})

	t.Run("Should label unknown routes as unmatched", func(t *testing.T) {
		router, reader := newRouter(t)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))
		assert.Equal(t, http.StatusNotFound, w.Code)
		sum := collect(t, reader)["floworx_http_requests_total"].Data.(metricdata.Sum[int64])
		require.Len(t, sum.DataPoints, 1)
		path, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("path"))
		assert.Equal(t, "unmatched", path.AsString())
	})

	t.Run("Should pass through with a nil meter", func(t *testing.T) {
		ResetMetricsForTesting()
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(HTTPMetrics(nil))
		router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", http.NoBody))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
