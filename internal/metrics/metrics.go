// Package metrics exposes Prometheus metrics for contract analyses.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/rainier/internal/cache"
	"github.com/ppiankov/rainier/internal/model"
)

const namespace = "rainier"

// Metrics holds the analysis counters. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	analyses      *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageOutcomes *prometheus.CounterVec
	matches       *prometheus.CounterVec
	answers       *prometheus.CounterVec
	uploadBytes   prometheus.Histogram
}

// New creates a registry with the analysis metrics plus the Go and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Contract analyses by result",
		}, []string{"result"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each analysis stage",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		stageOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_outcomes_total",
			Help:      "Analysis stage outcomes",
		}, []string{"stage", "outcome"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flag_matches_total",
			Help:      "Phrase matches by category",
		}, []string{"category"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Questions answered by provider and source",
		}, []string{"provider", "source"}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_bytes",
			Help:      "Size of analyzed documents",
			Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 8),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.analyses,
		m.stageDuration,
		m.stageOutcomes,
		m.matches,
		m.answers,
		m.uploadBytes,
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterCache exposes answer cache hit counters, read on each scrape.
// Only one cache can be registered per registry.
func (m *Metrics) RegisterCache(stats StatsSource) error {
	if m == nil || stats == nil {
		return nil
	}
	return m.registry.Register(&CacheCollector{source: stats})
}

// ObserveStage records the duration and outcome of one stage
func (m *Metrics) ObserveStage(stage string, d time.Duration, outcome model.StageOutcome) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	m.stageOutcomes.WithLabelValues(stage, string(outcome)).Inc()
}

// ObserveDocument records the size of an analyzed document
func (m *Metrics) ObserveDocument(bytes int) {
	if m == nil {
		return
	}
	m.uploadBytes.Observe(float64(bytes))
}

// ObserveReport records per-category matches and answers of a finished report
func (m *Metrics) ObserveReport(r *model.Report) {
	if m == nil || r == nil {
		return
	}
	m.analyses.WithLabelValues("ok").Inc()
	for _, f := range r.Flags {
		if f.Count > 0 {
			m.matches.WithLabelValues(f.Category.ID).Add(float64(f.Count))
		}
	}
	if r.QA == nil {
		return
	}
	for _, a := range r.Answers {
		source := "model"
		if a.Cached {
			source = "cache"
		}
		m.answers.WithLabelValues(r.QA.Provider, source).Inc()
	}
}

// ObserveFailure records an analysis that produced no report
func (m *Metrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues("error").Inc()
}

// StatsSource reports cache hit counters
type StatsSource interface {
	Stats() cache.Stats
}

var cacheLookupsDesc = prometheus.NewDesc(
	namespace+"_answer_cache_lookups_total",
	"Answer cache lookups by tier",
	[]string{"tier"},
	nil,
)

// CacheCollector is a custom Prometheus collector that reads cache counters
// on each scrape.
type CacheCollector struct {
	source StatsSource
}

// Describe sends the metric descriptor to the channel.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- cacheLookupsDesc
}

// Collect emits the current cache counters.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	for tier, v := range map[string]uint64{
		"memory": s.MemoryHits,
		"disk":   s.DiskHits,
		"miss":   s.Misses,
	} {
		ch <- prometheus.MustNewConstMetric(cacheLookupsDesc, prometheus.CounterValue, float64(v), tier)
	}
}
