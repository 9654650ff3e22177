package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Recommendation Metrics
var (
	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRecommendationsGenerated,
			Help: HelpTextRecommendationsGenerated,
		},
		[]string{LabelType, LabelPriority},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameGenerationDuration,
			Help:    HelpTextGenerationDuration,
			Buckets: GenerationLatencyBuckets,
		},
	)

	GenerationsCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameGenerationsCoalesced,
			Help: HelpTextGenerationsCoalesced,
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCacheLookups,
			Help: HelpTextCacheLookups,
		},
		[]string{LabelResult},
	)

	SourceFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSourceFetchFailures,
			Help: HelpTextSourceFetchFailures,
		},
		[]string{LabelSource},
	)
)

// Crop Cycle Metrics
var (
	RiskAlertsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRiskAlertsRaised,
			Help: HelpTextRiskAlertsRaised,
		},
		[]string{LabelRiskType, LabelSeverity},
	)

	TaskTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTaskTransitions,
			Help: HelpTextTaskTransitions,
		},
		[]string{LabelStatus},
	)

	ConflictRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameConflictRetries,
			Help: HelpTextConflictRetries,
		},
	)
)
