package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) OperationCompleted(operation string, outcome string, duration time.Duration) {}
func (n *NoopSink) ExecutionsComputed(count int)                                                {}
func (n *NoopSink) CacheLookup(result string)                                                   {}
func (n *NoopSink) CacheCircuitOpen()                                                           {}
func (n *NoopSink) HTTPRequestCompleted(route string, statusClass string, d time.Duration)      {}
