package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DispatcherMetrics are the manager's collectors
type DispatcherMetrics struct {
	Dispatches     *prometheus.CounterVec
	ForwardLatency *prometheus.HistogramVec
	StatusUpdates  *prometheus.CounterVec
	FreshNodes     prometheus.Gauge
	StaleNodes     prometheus.Gauge
}

func NewDispatcherMetrics() *DispatcherMetrics {
	return &DispatcherMetrics{
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "manager_dispatch_total", Help: "Offload requests by outcome"},
			[]string{"status"},
		),
		ForwardLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "manager_forward_seconds", Help: "Forward round trip to a fog node"},
			[]string{"node"},
		),
		StatusUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "manager_status_updates_total", Help: "Status updates received by result"},
			[]string{"result"},
		),
		FreshNodes: prometheus.NewGauge(prometheus.GaugeOpts{Name: "manager_fresh_nodes", Help: "Fog nodes within the staleness threshold"}),
		StaleNodes: prometheus.NewGauge(prometheus.GaugeOpts{Name: "manager_stale_nodes", Help: "Fog nodes past the staleness threshold"}),
	}
}

func (m *DispatcherMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Dispatches, m.ForwardLatency, m.StatusUpdates, m.FreshNodes, m.StaleNodes}
}

// WorkerMetrics are a fog node's collectors
type WorkerMetrics struct {
	Tasks        *prometheus.CounterVec
	TaskDelay    prometheus.Histogram
	InFlight     prometheus.Gauge
	StatusPushes *prometheus.CounterVec
}

func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		Tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "fog_tasks_total", Help: "Tasks answered by cache outcome"},
			[]string{"cache"},
		),
		TaskDelay: prometheus.NewHistogram(
			prometheus.HistogramOpts{Name: "fog_task_delay_seconds", Help: "Simulated task delay", Buckets: prometheus.LinearBuckets(0, 2.5, 12)},
		),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{Name: "fog_tasks_in_flight", Help: "Tasks currently occupying the node"}),
		StatusPushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "fog_status_push_total", Help: "Status push attempts by result"},
			[]string{"result"},
		),
	}
}

func (m *WorkerMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Tasks, m.TaskDelay, m.InFlight, m.StatusPushes}
}

// NewRegistry builds a private registry holding the given collectors
func NewRegistry(collectors ...prometheus.Collector) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	for _, c := range collectors {
		registry.MustRegister(c)
	}
	return registry
}

// RuntimeCollectors are the Go runtime and process collectors every binary exports
func RuntimeCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
}

// Handler exposes a registry over HTTP
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
