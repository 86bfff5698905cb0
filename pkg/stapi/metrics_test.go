package stapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	require.NoError(t, metrics.Register())
	require.NoError(t, metrics.Register())

	metrics.Observe(http.MethodPost, "/:id", http.StatusCreated, "", 10*time.Millisecond)
	metrics.Observe(http.MethodPost, "/:id", http.StatusBadRequest, "CORE-0002", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues(http.MethodPost, "/:id", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues(http.MethodPost, "/:id", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.exceptionsTotal.WithLabelValues("CORE-0002", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.exceptionsTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.durationHist))
}

func TestMetrics_AlreadyRegistered(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewMetrics(registry)
	require.NoError(t, first.Register())

	second := NewMetrics(registry)
	require.NoError(t, second.Register())
	second.Observe(http.MethodGet, "/users/:id", http.StatusOK, "", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(first.requestsTotal.WithLabelValues(http.MethodGet, "/users/:id", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(registry, "stapi_http_request_duration_seconds"))
}

func TestMetrics_Nil(t *testing.T) {
	var metrics *Metrics

	assert.NotPanics(t, func() {
		metrics.Observe(http.MethodGet, "/", http.StatusOK, "", time.Millisecond)
	})
}

func TestMetrics_CompiledRoute(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, metrics.Register())

	registry := NewRegistry()
	registry.Annotate(&resultHandler{}).Route(http.MethodGet, "/teapot")
	route := compile(t, registry, &resultHandler{err: errTeapot("")}, func(o *CompilerOptions) {
		o.Metrics = metrics
	})

	serve(t, route, newFakeRequest(http.MethodGet, "/teapot"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues(http.MethodGet, "/teapot", "418")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.exceptionsTotal.WithLabelValues("TEST-0001", "418")))
}
