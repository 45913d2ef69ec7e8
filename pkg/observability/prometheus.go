package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks records store and render events as Prometheus metrics.
type PrometheusHooks struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tasks    prometheus.Gauge
	renders  *prometheus.CounterVec
}

// NewPrometheusHooks creates the tasktree metrics and registers them with reg.
// It panics if the metrics are already registered, like prometheus.MustRegister.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tasktree",
			Name:      "store_operations_total",
			Help:      "Graph store operations by backend, operation and result.",
		}, []string{"backend", "op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tasktree",
			Name:      "store_operation_duration_seconds",
			Help:      "Latency of graph store operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
		tasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tasktree",
			Name:      "reachable_tasks",
			Help:      "Reachable tasks in the most recently loaded or saved graph.",
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tasktree",
			Name:      "renders_total",
			Help:      "Diagram renders by format and result.",
		}, []string{"format", "result"}),
	}
	reg.MustRegister(h.ops, h.duration, h.tasks, h.renders)
	return h
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) observe(backend, op string, tasks int, d time.Duration, err error) {
	h.ops.WithLabelValues(backend, op, result(err)).Inc()
	h.duration.WithLabelValues(backend, op).Observe(d.Seconds())
	if err == nil {
		h.tasks.Set(float64(tasks))
	}
}

// OnLoad implements StoreHooks.
func (h *PrometheusHooks) OnLoad(_ context.Context, backend string, tasks int, d time.Duration, err error) {
	h.observe(backend, "load", tasks, d, err)
}

// OnSave implements StoreHooks.
func (h *PrometheusHooks) OnSave(_ context.Context, backend string, tasks int, d time.Duration, err error) {
	h.observe(backend, "save", tasks, d, err)
}

// OnRender implements RenderHooks.
func (h *PrometheusHooks) OnRender(_ context.Context, format string, _ int, _ time.Duration, err error) {
	h.renders.WithLabelValues(format, result(err)).Inc()
}

var (
	_ StoreHooks  = (*PrometheusHooks)(nil)
	_ RenderHooks = (*PrometheusHooks)(nil)
)
