package domain

import "time"

// SchedulePreview is the composed result of a preview request.
//
// Executions are strictly ascending and each carries the location of the
// requested timezone. Formatted[i] renders Executions[i].
type SchedulePreview struct {
	Expression  string      `json:"expression" yaml:"expression"`
	Timezone    string      `json:"timezone" yaml:"timezone"`
	Description string      `json:"description" yaml:"description"`
	Executions  []time.Time `json:"executions" yaml:"executions"`
	Formatted   []string    `json:"formatted" yaml:"formatted"`
}

// Consistent reports whether the preview satisfies its ordering and pairing
// invariants.
func (p SchedulePreview) Consistent() bool {
	if len(p.Executions) != len(p.Formatted) {
		return false
	}
	for i := 1; i < len(p.Executions); i++ {
		if !p.Executions[i].After(p.Executions[i-1]) {
			return false
		}
	}
	return true
}
