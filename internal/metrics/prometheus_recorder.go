package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "todo_api"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	httpRequests  *prom.CounterVec
	httpDuration  *prom.HistogramVec
	cacheResults  *prom.CounterVec
	taskMutations *prom.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs the collectors and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern",
			Buckets:   prom.DefBuckets,
		}, []string{"method", "route"}),
		cacheResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "task_list_cache_results_total",
			Help:      "Task list cache lookups by outcome",
		}, []string{"result"}),
		taskMutations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "task_mutations_total",
			Help:      "Successful task writes by action",
		}, []string{"action"}),
	}
	reg.MustRegister(pr.httpRequests, pr.httpDuration, pr.cacheResults, pr.taskMutations)
	return pr
}

func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCacheResult(result CacheResult) {
	if p == nil {
		return
	}
	p.cacheResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncTaskMutation(action string) {
	if p == nil {
		return
	}
	p.taskMutations.WithLabelValues(action).Inc()
}
