package metrics

import (
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

func newTestManager() *Manager {
	return NewManager(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))
}

func TestManager_Recording(t *testing.T) {
	m := newTestManager()

	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()
	m.ObserveDatasetLoad(LoadOK, 20*time.Millisecond)
	m.ObserveDatasetLoad(LoadNotFound, time.Millisecond)
	m.SetDatasetRows(40, 2)
	m.RecordRender("ready")
	m.RecordSectionError("summary")
	m.ObserveHTTPRequest("GET /api/view", http.MethodGet, http.StatusOK, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.datasetLoads.WithLabelValues(LoadNotFound)))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.datasetRows))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.datasetDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renders.WithLabelValues("ready")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sectionErrors.WithLabelValues("summary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET /api/view", "GET", "200")))
}

func TestManager_Handler(t *testing.T) {
	m := newTestManager()
	m.CacheMiss()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_dashboard_dataset_cache_misses_total 1"))
}

func TestManager_Nil(t *testing.T) {
	var m *Manager

	assert.NotPanics(t, func() {
		m.CacheHit()
		m.CacheMiss()
		m.ObserveDatasetLoad(LoadError, time.Second)
		m.SetDatasetRows(1, 0)
		m.RecordRender("ready")
		m.RecordSectionError("trend")
		m.ObserveHTTPRequest("/", http.MethodGet, http.StatusOK, time.Second)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDefaultRegistryIncludesRuntimeCollectors(t *testing.T) {
	m := NewManager()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "go_") {
			found = true
			break
		}
	}
	assert.True(t, found)
}
