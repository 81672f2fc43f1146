// Package metrics exposes flag engine activity as Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/flaggraph/internal/engine"
	"github.com/roach88/flaggraph/internal/model"
)

// Collector records engine and HTTP activity.
//
// It implements engine.Observer. All metrics are registered on the registry
// passed to New, so tests can use a private registry.
type Collector struct {
	// transitions counts committed audit records by action.
	transitions *prometheus.CounterVec

	// rejections counts caller errors by error code.
	rejections *prometheus.CounterVec

	// cascadeSize tracks auto-disabled dependents per manual disable.
	cascadeSize prometheus.Histogram

	// requests counts HTTP requests by route and status.
	requests *prometheus.CounterVec

	// requestDuration tracks HTTP handler latency by route.
	requestDuration *prometheus.HistogramVec
}

var _ engine.Observer = (*Collector)(nil)

// New creates a Collector and registers its metrics on reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	c := &Collector{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flaggraph_transitions_total",
			Help: "Committed audit records by action",
		}, []string{"action"}),

		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flaggraph_rejections_total",
			Help: "Rejected create/toggle operations by error code",
		}, []string{"code"}),

		cascadeSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "flaggraph_cascade_size",
			Help:    "Dependents auto-disabled per manual disable",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),

		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flaggraph_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flaggraph_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		}, []string{"method", "route"}),
	}

	// Pre-create the action series so dashboards see zeros.
	for _, action := range model.Actions {
		c.transitions.WithLabelValues(action.String())
	}

	return c
}

// AuditRecorded implements engine.Observer.
func (c *Collector) AuditRecorded(action model.Action) {
	c.transitions.WithLabelValues(action.String()).Inc()
}

// CascadeCompleted implements engine.Observer.
func (c *Collector) CascadeCompleted(_ string, disabled int) {
	c.cascadeSize.Observe(float64(disabled))
}

// OperationRejected implements engine.Observer.
func (c *Collector) OperationRejected(code engine.ErrorCode) {
	c.rejections.WithLabelValues(string(code)).Inc()
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
