package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsBusinessMetrics(t *testing.T) {
	c := NewCollector("test")

	c.CollectionCreated()
	c.CollectionsRemoved("cascade", 3)
	c.CollectionsRemoved("promote", 1)
	c.CacheHit("collections")
	c.CacheMiss("collections")
	c.CacheMiss("collections")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.CollectionsCreated))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.CollectionsDeleted.WithLabelValues("cascade")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CollectionsDeleted.WithLabelValues("promote")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheHits.WithLabelValues("collections")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.CacheMisses.WithLabelValues("collections")))
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a := NewCollector("test")
	b := NewCollector("test")

	a.ObserveRequest(http.MethodGet, "/api/collections", 200, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.HTTPRequests.WithLabelValues("GET", "/api/collections", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.HTTPRequests.WithLabelValues("GET", "/api/collections", "200")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("test")
	c.CollectionCreated()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_collections_created_total 1")
}
