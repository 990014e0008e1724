package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCatalogRequest("search", "ok", time.Millisecond)
	m.ObserveDetailCache(true)
	m.ObserveCountWrite(nil)
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCatalogRequest("search", "ok", 10*time.Millisecond)
	m.ObserveCatalogRequest("search", "ok", 10*time.Millisecond)
	m.ObserveCatalogRequest("discover", "http_error", time.Millisecond)
	m.ObserveDetailCache(true)
	m.ObserveDetailCache(false)
	m.ObserveDetailCache(false)
	m.ObserveCountWrite(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.catalogRequests.WithLabelValues("search", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.catalogRequests.WithLabelValues("discover", "http_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.detailCache.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.detailCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.countWrites.WithLabelValues("error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.countWrites.WithLabelValues("ok")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveCatalogRequest("genres", "ok", time.Millisecond)

	server := httptest.NewServer(Handler(reg))
	defer server.Close()

	res, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, strings.Contains(string(body), `moviefinder_catalog_requests_total{endpoint="genres",outcome="ok"} 1`))
}
