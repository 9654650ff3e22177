package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Recommendation metric names
const (
	MetricNameRecommendationsGenerated = "recommendations_generated_total"
	MetricNameGenerationDuration       = "recommendation_generation_duration_seconds"
	MetricNameGenerationsCoalesced     = "recommendation_generations_coalesced_total"
	MetricNameCacheLookups             = "recommendation_cache_lookups_total"
	MetricNameSourceFetchFailures      = "datasource_fetch_failures_total"
)

// Crop cycle metric names
const (
	MetricNameRiskAlertsRaised = "risk_alerts_raised_total"
	MetricNameTaskTransitions  = "task_transitions_total"
	MetricNameConflictRetries  = "conflicting_update_retries_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Recommendation metric help text
const (
	HelpTextRecommendationsGenerated = "Total number of recommendations produced by generation runs"
	HelpTextGenerationDuration       = "Recommendation generation latency in seconds"
	HelpTextGenerationsCoalesced     = "Generate calls that shared an in-flight generation for the same client"
	HelpTextCacheLookups             = "Recommendation cache lookups by result"
	HelpTextSourceFetchFailures      = "Upstream data source fetches that failed, timed out or returned stale data"
)

// Crop cycle metric help text
const (
	HelpTextRiskAlertsRaised = "Risk alerts created or escalated"
	HelpTextTaskTransitions  = "Task status transitions by target status"
	HelpTextConflictRetries  = "Store mutations retried after a conflicting update"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelType     = "type"
	LabelPriority = "priority"
	LabelResult   = "result"
	LabelSource   = "source"
	LabelRiskType = "risk_type"
	LabelSeverity = "severity"
)

// Cache lookup results
const (
	CacheResultHit  = "hit"
	CacheResultMiss = "miss"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// GenerationLatencyBuckets covers generation runs bounded by the overall generation timeout
var GenerationLatencyBuckets = []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10, 30}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgMetricsRecorded = "Metrics recorded for event"
)
