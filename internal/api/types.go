package api

import (
	"time"

	"github.com/djlord-it/cronpreview/internal/domain"
)

type PreviewResponse struct {
	Expression  string   `json:"expression"`
	Timezone    string   `json:"timezone"`
	Description string   `json:"description"`
	Executions  []string `json:"executions"`
	Formatted   []string `json:"formatted"`
}

type ExecutionsResponse struct {
	Expression string   `json:"expression"`
	Timezone   string   `json:"timezone"`
	Executions []string `json:"executions"`
}

type DescribeResponse struct {
	Expression  string `json:"expression"`
	Timezone    string `json:"timezone"`
	Description string `json:"description"`
}

type FormatResponse struct {
	Instant   string `json:"instant"`
	Timezone  string `json:"timezone"`
	Formatted string `json:"formatted"`
}

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// ErrorResponse carries the user-facing message and, for engine errors,
// the machine-readable kind.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func newPreviewResponse(p domain.SchedulePreview) PreviewResponse {
	return PreviewResponse{
		Expression:  p.Expression,
		Timezone:    p.Timezone,
		Description: p.Description,
		Executions:  formatTimes(p.Executions),
		Formatted:   p.Formatted,
	}
}

// formatTime renders t as RFC 3339 with the offset of its own location.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimes(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = formatTime(t)
	}
	return out
}
