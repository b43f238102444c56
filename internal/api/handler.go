package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/djlord-it/cronpreview/internal/cron"
	"github.com/djlord-it/cronpreview/internal/domain"
	"github.com/djlord-it/cronpreview/internal/metrics"
	"github.com/djlord-it/cronpreview/internal/preview"
)

// RequestIDHeader carries the request ID. A valid UUID sent by the client
// is echoed back; otherwise a new one is generated.
const RequestIDHeader = "X-Request-ID"

type Previewer interface {
	Preview(ctx context.Context, expression, timezone string, count int, opts ...preview.Option) (domain.SchedulePreview, error)
	NextExecutions(ctx context.Context, expression, timezone string, count int, opts ...preview.Option) ([]time.Time, error)
	DescribeSchedule(ctx context.Context, expression, timezone string, opts ...preview.Option) (string, error)
	FormatExecution(instant time.Time, timezone string) (string, error)
}

// HealthChecker provides cache health status for the /health endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// MetricsSink defines the interface for recording HTTP metrics.
type MetricsSink interface {
	HTTPRequestCompleted(route string, statusClass string, duration time.Duration)
}

type Handler struct {
	previewer      Previewer
	cache          HealthChecker // optional, nil = no cache configured
	metrics        MetricsSink   // optional, nil = disabled
	logger         zerolog.Logger
	requestTimeout time.Duration
}

func NewHandler(previewer Previewer) *Handler {
	return &Handler{
		previewer:      previewer,
		logger:         zerolog.Nop(),
		requestTimeout: 5 * time.Second,
	}
}

// WithHealthChecker sets the cache health checker for verbose /health responses.
func (h *Handler) WithHealthChecker(cache HealthChecker) *Handler {
	h.cache = cache
	return h
}

// WithMetrics attaches a metrics sink to the handler.
func (h *Handler) WithMetrics(sink MetricsSink) *Handler {
	h.metrics = sink
	return h
}

func (h *Handler) WithLogger(logger zerolog.Logger) *Handler {
	h.logger = logger.With().Str("component", "api").Logger()
	return h
}

// WithRequestTimeout bounds every request. Non-positive values are ignored.
func (h *Handler) WithRequestTimeout(d time.Duration) *Handler {
	if d > 0 {
		h.requestTimeout = d
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	requestID := r.Header.Get(RequestIDHeader)
	if _, err := uuid.Parse(requestID); err != nil {
		requestID = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, requestID)

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()
	r = r.WithContext(h.logger.With().Str("request_id", requestID).Logger().WithContext(ctx))

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	route := h.route(rec, r)

	if h.metrics != nil {
		h.metrics.HTTPRequestCompleted(route, metrics.ClassifyStatus(rec.status), time.Since(start))
	}
}

// route dispatches the request and returns the route label for metrics.
func (h *Handler) route(w http.ResponseWriter, r *http.Request) string {
	path := r.URL.Path

	switch path {
	case "/health", "/preview", "/executions", "/describe", "/format":
	default:
		writeError(w, http.StatusNotFound, "not found")
		return "unmatched"
	}

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return path
	}

	switch path {
	case "/health":
		h.health(w, r)
	case "/preview":
		h.preview(w, r)
	case "/executions":
		h.executions(w, r)
	case "/describe":
		h.describe(w, r)
	case "/format":
		h.format(w, r)
	}
	return path
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	// Check if verbose mode requested via ?verbose=true
	verbose := r.URL.Query().Get("verbose") == "true"

	if !verbose || h.cache == nil {
		// Simple health check - just return ok
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}

	// Verbose health check - check all components
	resp := HealthResponse{
		Status:     "ok",
		Components: make(map[string]string),
	}

	// Check cache connectivity with timeout
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// Previews are still served without the cache, so an unhealthy cache
	// only degrades the service.
	if err := h.cache.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Components["cache"] = "unhealthy: " + err.Error()
	} else {
		resp.Components["cache"] = "healthy"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	q, err := parseScheduleQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	p, err := h.previewer.Preview(r.Context(), q.Expression, q.Timezone, q.Count, q.Options...)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newPreviewResponse(p))
}

func (h *Handler) executions(w http.ResponseWriter, r *http.Request) {
	q, err := parseScheduleQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	executions, err := h.previewer.NextExecutions(r.Context(), q.Expression, q.Timezone, q.Count, q.Options...)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ExecutionsResponse{
		Expression: q.Expression,
		Timezone:   q.Timezone,
		Executions: formatTimes(executions),
	})
}

func (h *Handler) describe(w http.ResponseWriter, r *http.Request) {
	q, err := parseScheduleQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	desc, err := h.previewer.DescribeSchedule(r.Context(), q.Expression, q.Timezone, q.Options...)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DescribeResponse{
		Expression:  q.Expression,
		Timezone:    q.Timezone,
		Description: desc,
	})
}

func (h *Handler) format(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	instant, err := cron.ParseInstant(query.Get("instant"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	timezone := strings.TrimSpace(query.Get("timezone"))
	formatted, err := h.previewer.FormatExecution(instant, timezone)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, FormatResponse{
		Instant:   formatTime(instant),
		Timezone:  timezone,
		Formatted: formatted,
	})
}

// writeServiceError maps engine error kinds to status codes. Caller mistakes
// are 400, a schedule that never fires is 422 and anything else is 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := cron.KindOf(err)
	switch kind {
	case "":
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	case cron.KindSearchExhausted:
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: string(kind)})
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: string(kind)})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("api: json encode error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
