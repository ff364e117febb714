package cache

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "ccattrib"
	metricsSubsystem = "cache"
)

// cacheMetrics is nil when metrics are disabled; every method is nil-safe.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	stales    prometheus.Counter
	puts      prometheus.Counter
	evictions prometheus.Counter
	documents prometheus.Gauge
}

func newCacheMetrics(registerer prometheus.Registerer) *cacheMetrics {
	if registerer == nil {
		return nil
	}

	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "hits_total",
			Help:      "Freshness checks answered by a fresh entry",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "misses_total",
			Help:      "Freshness checks for documents with no entry",
		}),
		stales: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "stale_total",
			Help:      "Freshness checks that found an outdated entry",
		}),
		puts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "puts_total",
			Help:      "Entries stored or replaced",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "evictions_total",
			Help:      "Entries evicted by the document bound",
		}),
		documents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "documents",
			Help:      "Documents currently cached",
		}),
	}

	m.hits = register(registerer, m.hits)
	m.misses = register(registerer, m.misses)
	m.stales = register(registerer, m.stales)
	m.puts = register(registerer, m.puts)
	m.evictions = register(registerer, m.evictions)
	m.documents = register(registerer, m.documents)

	return m
}

// register returns the already-registered collector when an identical one
// exists, so several caches can share a registry.
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return collector
}

func (m *cacheMetrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) stale() {
	if m != nil {
		m.stales.Inc()
	}
}

func (m *cacheMetrics) put(documents int) {
	if m != nil {
		m.puts.Inc()
		m.documents.Set(float64(documents))
	}
}

func (m *cacheMetrics) evict(documents int) {
	if m != nil {
		m.evictions.Inc()
		m.documents.Set(float64(documents))
	}
}

func (m *cacheMetrics) setDocuments(documents int) {
	if m != nil {
		m.documents.Set(float64(documents))
	}
}
