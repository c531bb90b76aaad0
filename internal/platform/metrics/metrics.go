package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "expense_tracker"

// RateMetrics holds the collectors for the exchange rate cache.
// A nil *RateMetrics is valid and records nothing.
type RateMetrics struct {
	lookups          *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	refreshPairs     *prometheus.CounterVec
	refreshDuration  prometheus.Histogram
	cacheEntries     prometheus.Gauge
}

// NewRateMetrics registers the rate collectors on reg.
func NewRateMetrics(reg prometheus.Registerer) *RateMetrics {
	factory := promauto.With(reg)
	return &RateMetrics{
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fx",
			Name:      "rate_lookups_total",
			Help:      "Rate resolutions by the layer that answered them.",
		}, []string{"source"}),
		providerRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fx",
			Name:      "provider_requests_total",
			Help:      "Upstream rate provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		refreshPairs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fx",
			Name:      "refresh_pairs_total",
			Help:      "Pairs processed by bulk refreshes by outcome.",
		}, []string{"outcome"}),
		refreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fx",
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of bulk rate refreshes.",
			Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		cacheEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fx",
			Name:      "memory_cache_entries",
			Help:      "Rates currently held in the in-process cache.",
		}),
	}
}

// ObserveLookup counts one resolved rate by source.
func (m *RateMetrics) ObserveLookup(source string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(source).Inc()
}

// ObserveProvider counts one provider call.
func (m *RateMetrics) ObserveProvider(provider string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.providerRequests.WithLabelValues(provider, outcome).Inc()
}

// ObserveRefresh records the result of one bulk refresh.
func (m *RateMetrics) ObserveRefresh(succeeded, failed int, took time.Duration) {
	if m == nil {
		return
	}
	m.refreshPairs.WithLabelValues("success").Add(float64(succeeded))
	m.refreshPairs.WithLabelValues("failure").Add(float64(failed))
	m.refreshDuration.Observe(took.Seconds())
}

// SetCacheEntries reports the in-process cache size.
func (m *RateMetrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.cacheEntries.Set(float64(n))
}
