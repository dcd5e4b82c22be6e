// Package metrics holds the Prometheus collectors of the GraphQL server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "worldgraph"

// Metrics groups the server collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	failedRequests *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	rebuilds       *prometheus.CounterVec
	schemaTypes    prometheus.Gauge
	storageTypes   prometheus.Gauge
}

// New creates and registers every collector, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graphql",
			Name:      "requests",
		}, []string{"method"}),
		failedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graphql",
			Name:      "failed_requests",
		}, []string{"error_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graphql",
			Name:      "requests_latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		rebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schema",
			Name:      "rebuilds",
		}, []string{"outcome"}),
		schemaTypes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "schema",
			Name:      "types",
		}),
		storageTypes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "schema",
			Name:      "storage_types",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.failedRequests,
		m.requestLatency,
		m.rebuilds,
		m.schemaTypes,
		m.storageTypes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one GraphQL request. codes lists the error codes
// of the failed fields, if any.
func (m *Metrics) ObserveRequest(method string, took time.Duration, codes []string) {
	m.requests.WithLabelValues(method).Inc()
	m.requestLatency.WithLabelValues(method).Observe(took.Seconds())
	for _, c := range codes {
		m.failedRequests.WithLabelValues(c).Inc()
	}
}

// ObserveRebuild records a schema assembly.
func (m *Metrics) ObserveRebuild(err error, types, storageTypes int) {
	if err != nil {
		m.rebuilds.WithLabelValues("failed").Inc()
		return
	}
	m.rebuilds.WithLabelValues("ok").Inc()
	m.schemaTypes.Set(float64(types))
	m.storageTypes.Set(float64(storageTypes))
}
