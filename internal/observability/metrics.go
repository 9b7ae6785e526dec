package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// geocoding pipeline.
type Metrics struct {
	RecordsProcessed *prometheus.CounterVec // label: status
	BatchesCompleted prometheus.Counter
	BatchSize        prometheus.Histogram
	BatchDuration    prometheus.Histogram
	BatchInFlight    prometheus.Gauge

	// Provider metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: provider, outcome={found,no_result,error}
	GeocodeAPIDuration *prometheus.HistogramVec // label: provider
	GeocodeCache       *prometheus.CounterVec   // label: result={hit,miss}
	ProviderSwitches   prometheus.Counter

	// Clustering metrics.
	ClusterCount prometheus.Histogram
	NoisePoints  prometheus.Histogram

	RenderFallbacks prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locmapper",
			Name:      "records_processed_total",
			Help:      "Records processed by final geocode status.",
		}, []string{"status"}),
		BatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "locmapper",
			Name:      "batches_completed_total",
			Help:      "Batches run to completion, including cancelled ones.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "locmapper",
			Name:      "batch_size",
			Help:      "Number of input records per batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "locmapper",
			Name:      "batch_duration_seconds",
			Help:      "Duration of a complete validate-geocode-cluster run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 120, 300, 600},
		}),
		BatchInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "locmapper",
			Name:      "batch_in_flight",
			Help:      "1 while a batch is being processed, 0 otherwise.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locmapper",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "locmapper",
			Name:      "geocode_api_duration_seconds",
			Help:      "Provider API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "locmapper",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		ProviderSwitches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "locmapper",
			Name:      "provider_switches_total",
			Help:      "Batch-global fallbacks from one provider to the next.",
		}),
		ClusterCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "locmapper",
			Name:      "cluster_count",
			Help:      "Clusters found per batch.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		NoisePoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "locmapper",
			Name:      "noise_points",
			Help:      "Unclustered (noise) points per batch.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		RenderFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "locmapper",
			Name:      "render_fallbacks_total",
			Help:      "Renderer attempts that failed and fell through the chain.",
		}),
	}

	prometheus.MustRegister(
		m.RecordsProcessed,
		m.BatchesCompleted,
		m.BatchSize,
		m.BatchDuration,
		m.BatchInFlight,
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
		m.GeocodeCache,
		m.ProviderSwitches,
		m.ClusterCount,
		m.NoisePoints,
		m.RenderFallbacks,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsProcessed:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "locmapper", Name: "records_processed_total"}, []string{"status"}),
		BatchesCompleted:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "locmapper", Name: "batches_completed_total"}),
		BatchSize:          prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "locmapper", Name: "batch_size"}),
		BatchDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "locmapper", Name: "batch_duration_seconds"}),
		BatchInFlight:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "locmapper", Name: "batch_in_flight"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "locmapper", Name: "geocode_requests_total"}, []string{"provider", "outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "locmapper", Name: "geocode_api_duration_seconds"}, []string{"provider"}),
		GeocodeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "locmapper", Name: "geocode_cache_total"}, []string{"result"}),
		ProviderSwitches:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "locmapper", Name: "provider_switches_total"}),
		ClusterCount:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "locmapper", Name: "cluster_count"}),
		NoisePoints:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "locmapper", Name: "noise_points"}),
		RenderFallbacks:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "locmapper", Name: "render_fallbacks_total"}),
	}
}
