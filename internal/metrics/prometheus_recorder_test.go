package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums the counter samples of family name whose labels include want.
func counterValue(t *testing.T, reg *prom.Registry, name string, want map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metrics
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestPrometheusRecorder(t *testing.T) {
	t.Parallel()

	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveHTTPRequest(http.MethodGet, "/api/tasks", 200, 15*time.Millisecond)
	pr.IncCacheResult(CacheHit)
	pr.IncCacheResult(CacheHit)
	pr.IncCacheResult(CacheMiss)
	pr.IncTaskMutation("created")

	assert.Equal(t, 1.0, counterValue(t, reg, "todo_api_http_requests_total",
		map[string]string{"route": "/api/tasks", "status": "200"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "todo_api_task_list_cache_results_total",
		map[string]string{"result": "hit"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "todo_api_task_list_cache_results_total",
		map[string]string{"result": "miss"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "todo_api_task_mutations_total",
		map[string]string{"action": "created"}))
}

func TestPrometheusRecorder_NilReceiver(t *testing.T) {
	t.Parallel()

	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveHTTPRequest(http.MethodGet, "/", 200, time.Second)
		pr.IncCacheResult(CacheBypass)
		pr.IncTaskMutation("deleted")
	})
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	t.Parallel()

	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	r := chi.NewRouter()
	r.Use(Middleware(pr))
	r.Get("/api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 3.0, counterValue(t, reg, "todo_api_http_requests_total",
		map[string]string{"route": "/api/tasks/{id}", "status": "404"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "todo_api_http_requests_total",
		map[string]string{"route": unmatchedRoute}))
}

func TestHTTPHandler(t *testing.T) {
	t.Parallel()

	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncTaskMutation("updated")

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `todo_api_task_mutations_total{action="updated"} 1`))
}
