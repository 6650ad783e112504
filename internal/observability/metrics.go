package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Perimeter labeling metrics.
	PerimeterLabels  *prometheus.CounterVec // labels: source={matched,clear,failed,skipped}
	PerimeterEnabled prometheus.Gauge

	// Model scoring metrics.
	ScoreDuration  prometheus.Histogram
	ScoredPositive prometheus.Counter
	ScoringEnabled prometheus.Gauge

	// Region lookup metrics.
	RegionRequests    *prometheus.CounterVec   // labels: outcome={success,error,empty}
	RegionCache       *prometheus.CounterVec   // labels: result={hit,miss}
	RegionAPIDuration prometheus.Histogram
	RegionEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_etl",
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_etl",
			Name:      "messages_produced_total",
			Help:      "Total detections written to the sinks.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_etl",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_etl",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		PerimeterLabels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_etl",
			Name:      "perimeter_labels_total",
			Help:      "Perimeter label outcomes by source.",
		}, []string{"source"}),
		PerimeterEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_etl",
			Name:      "perimeter_enabled",
			Help:      "1 when perimeter labeling is enabled, 0 otherwise.",
		}),
		ScoreDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_etl",
			Name:      "score_duration_seconds",
			Help:      "Model scoring duration per detection.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		ScoredPositive: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_etl",
			Name:      "scored_positive_total",
			Help:      "Total detections classified as forest fire.",
		}),
		ScoringEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_etl",
			Name:      "scoring_enabled",
			Help:      "1 when model scoring is enabled, 0 otherwise.",
		}),
		RegionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_etl",
			Name:      "region_requests_total",
			Help:      "Region lookup API requests by outcome.",
		}, []string{"outcome"}),
		RegionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_etl",
			Name:      "region_cache_total",
			Help:      "Region lookup cache lookups by result.",
		}, []string{"result"}),
		RegionAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_etl",
			Name:      "region_api_duration_seconds",
			Help:      "Region lookup API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		RegionEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_etl",
			Name:      "region_enabled",
			Help:      "1 when region enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.PerimeterLabels,
		m.PerimeterEnabled,
		m.ScoreDuration,
		m.ScoredPositive,
		m.ScoringEnabled,
		m.RegionRequests,
		m.RegionCache,
		m.RegionAPIDuration,
		m.RegionEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MessagesConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_etl", Name: "messages_consumed_total"}),
		MessagesProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_etl", Name: "messages_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_etl", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "fire_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fire_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fire_etl", Name: "batch_processing_duration_seconds"}),
		PerimeterLabels:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "fire_etl", Name: "perimeter_labels_total"}, []string{"source"}),
		PerimeterEnabled:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "fire_etl", Name: "perimeter_enabled"}),
		ScoreDuration:           prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fire_etl", Name: "score_duration_seconds"}),
		ScoredPositive:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fire_etl", Name: "scored_positive_total"}),
		ScoringEnabled:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "fire_etl", Name: "scoring_enabled"}),
		RegionRequests:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "fire_etl", Name: "region_requests_total"}, []string{"outcome"}),
		RegionCache:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "fire_etl", Name: "region_cache_total"}, []string{"result"}),
		RegionAPIDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fire_etl", Name: "region_api_duration_seconds"}),
		RegionEnabled:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "fire_etl", Name: "region_enabled"}),
	}
}
