package metrics

import "time"

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations MUST NOT block or propagate errors.
// If the metrics backend is unavailable, implementations log warnings and continue.
type Sink interface {
	// Preview service metrics
	OperationCompleted(operation string, outcome string, duration time.Duration)
	ExecutionsComputed(count int)

	// Cache metrics
	CacheLookup(result string)
	CacheCircuitOpen()

	// HTTP metrics
	HTTPRequestCompleted(route string, statusClass string, duration time.Duration)
}

// Operation constants for OperationCompleted.
const (
	OperationPreview  = "preview"
	OperationNext     = "next_executions"
	OperationDescribe = "describe"
	OperationFormat   = "format"
)

// OutcomeSuccess is recorded for operations that returned no error. Failed
// operations record the error kind (invalid_cron, search_exhausted, ...).
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Cache lookup results for CacheLookup.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheError  = "error"
	CacheBypass = "bypass"
)

// StatusClass constants for HTTPRequestCompleted.
const (
	StatusClass2xx   = "2xx"
	StatusClass4xx   = "4xx"
	StatusClass5xx   = "5xx"
	StatusClassOther = "other"
)

// ClassifyStatus maps an HTTP status code to a status class.
func ClassifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return StatusClass2xx
	case statusCode >= 400 && statusCode < 500:
		return StatusClass4xx
	case statusCode >= 500 && statusCode < 600:
		return StatusClass5xx
	default:
		return StatusClassOther
	}
}
