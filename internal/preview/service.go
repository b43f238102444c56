// Package preview composes the cron engine into the caller-facing
// operations: full previews, bare execution lists, descriptions and
// formatting of single instants.
package preview

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/djlord-it/cronpreview/internal/cache"
	"github.com/djlord-it/cronpreview/internal/circuitbreaker"
	"github.com/djlord-it/cronpreview/internal/cron"
	"github.com/djlord-it/cronpreview/internal/domain"
	"github.com/djlord-it/cronpreview/internal/metrics"
)

// DefaultCount is used when the caller does not ask for a specific number
// of executions.
const DefaultCount = 5

// Cache stores composed previews. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (domain.SchedulePreview, bool, error)
	Set(ctx context.Context, key string, p domain.SchedulePreview) error
}

// MetricsSink defines the interface for recording preview metrics.
// All methods must be non-blocking and fire-and-forget.
type MetricsSink interface {
	OperationCompleted(operation string, outcome string, duration time.Duration)
	ExecutionsComputed(count int)
	CacheLookup(result string)
	CacheCircuitOpen()
}

type Config struct {
	// HorizonYears bounds the search for matching instants. Zero means
	// cron.DefaultHorizonYears.
	HorizonYears int
}

type Service struct {
	config  Config
	clock   func() time.Time
	cache   Cache       // optional, nil = disabled
	metrics MetricsSink // optional, nil = disabled
	logger  zerolog.Logger
}

func New(config Config) *Service {
	if config.HorizonYears <= 0 {
		config.HorizonYears = cron.DefaultHorizonYears
	}
	return &Service{
		config: config,
		clock:  time.Now,
		logger: zerolog.Nop(),
	}
}

// WithClock replaces the source of the default reference instant.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.clock = now
	return s
}

// WithCache attaches a preview cache.
func (s *Service) WithCache(c Cache) *Service {
	s.cache = c
	return s
}

// WithMetrics attaches a metrics sink to the service.
func (s *Service) WithMetrics(sink MetricsSink) *Service {
	s.metrics = sink
	return s
}

func (s *Service) WithLogger(logger zerolog.Logger) *Service {
	s.logger = logger.With().Str("component", "preview").Logger()
	return s
}

type request struct {
	after    time.Time
	hasAfter bool
}

// Option adjusts a single call.
type Option func(*request)

// At sets the reference instant. Executions are computed strictly after it.
// Without At the service clock is used.
func At(t time.Time) Option {
	return func(r *request) {
		r.after = t
		r.hasAfter = true
	}
}

func (s *Service) reference(opts []Option) time.Time {
	var r request
	for _, opt := range opts {
		opt(&r)
	}
	if r.hasAfter {
		return r.after
	}
	return s.clock()
}

// ParseCount parses a decimal count and checks it is within bounds.
// Non-integers such as "3.5" are rejected, never rounded.
func ParseCount(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, cron.ErrInvalidCount
	}
	if err := cron.ValidateCount(n); err != nil {
		return 0, err
	}
	return n, nil
}

// Preview parses expression, resolves timezone and returns the description
// together with the next count executions and their formatted strings.
func (s *Service) Preview(ctx context.Context, expression, timezone string, count int, opts ...Option) (p domain.SchedulePreview, err error) {
	start := time.Now()
	defer func() { s.record(metrics.OperationPreview, start, err) }()

	expr, zone, err := s.resolve(expression, timezone)
	if err != nil {
		return domain.SchedulePreview{}, err
	}
	if err := cron.ValidateCount(count); err != nil {
		return domain.SchedulePreview{}, err
	}
	after := s.reference(opts)

	key := cache.Key(expression, zone.Name(), count, after)
	if cached, ok := s.cacheGet(ctx, key); ok {
		return rezone(cached, zone), nil
	}

	executions, err := cron.NextN(expr, zone, after, count, s.horizon())
	if err != nil {
		return domain.SchedulePreview{}, s.logExhausted(err, expression, timezone)
	}
	s.computed(len(executions))

	formatted := make([]string, len(executions))
	for i, t := range executions {
		if formatted[i], err = cron.Format(t); err != nil {
			return domain.SchedulePreview{}, err
		}
	}

	p = domain.SchedulePreview{
		Expression:  expression,
		Timezone:    zone.Name(),
		Description: cron.DescribeAt(expr, zone.Abbreviation(executions[0])),
		Executions:  executions,
		Formatted:   formatted,
	}
	s.cacheSet(ctx, key, p)
	return p, nil
}

// NextExecutions returns the next count execution instants of expression in
// timezone.
func (s *Service) NextExecutions(ctx context.Context, expression, timezone string, count int, opts ...Option) (out []time.Time, err error) {
	start := time.Now()
	defer func() { s.record(metrics.OperationNext, start, err) }()

	expr, zone, err := s.resolve(expression, timezone)
	if err != nil {
		return nil, err
	}
	if err := cron.ValidateCount(count); err != nil {
		return nil, err
	}

	out, err = cron.NextN(expr, zone, s.reference(opts), count, s.horizon())
	if err != nil {
		return nil, s.logExhausted(err, expression, timezone)
	}
	s.computed(len(out))
	return out, nil
}

// DescribeSchedule renders expression as an English sentence with the
// abbreviation of timezone at the next execution.
func (s *Service) DescribeSchedule(ctx context.Context, expression, timezone string, opts ...Option) (desc string, err error) {
	start := time.Now()
	defer func() { s.record(metrics.OperationDescribe, start, err) }()

	expr, zone, err := s.resolve(expression, timezone)
	if err != nil {
		return "", err
	}

	desc, err = cron.Describe(expr, zone, s.reference(opts), s.horizon())
	if err != nil {
		return "", s.logExhausted(err, expression, timezone)
	}
	return desc, nil
}

// FormatExecution renders instant in timezone.
func (s *Service) FormatExecution(instant time.Time, timezone string) (out string, err error) {
	start := time.Now()
	defer func() { s.record(metrics.OperationFormat, start, err) }()

	zone, err := cron.LoadZone(timezone)
	if err != nil {
		return "", err
	}
	return cron.FormatIn(instant, zone)
}

func (s *Service) resolve(expression, timezone string) (cron.Expression, *cron.Zone, error) {
	expr, err := cron.Parse(expression)
	if err != nil {
		return cron.Expression{}, nil, err
	}
	zone, err := cron.LoadZone(timezone)
	if err != nil {
		return cron.Expression{}, nil, err
	}
	return expr, zone, nil
}

func (s *Service) horizon() cron.Option {
	return cron.WithHorizon(s.config.HorizonYears)
}

func (s *Service) logExhausted(err error, expression, timezone string) error {
	if errors.Is(err, cron.ErrSearchExhausted) {
		s.logger.Warn().
			Err(err).
			Str("expression", expression).
			Str("timezone", timezone).
			Int("horizon_years", s.config.HorizonYears).
			Msg("schedule never fires within horizon")
	}
	return err
}

func (s *Service) cacheGet(ctx context.Context, key string) (domain.SchedulePreview, bool) {
	if s.cache == nil {
		return domain.SchedulePreview{}, false
	}

	p, found, err := s.cache.Get(ctx, key)
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		s.cacheResult(metrics.CacheBypass)
		if s.metrics != nil {
			s.metrics.CacheCircuitOpen()
		}
		return domain.SchedulePreview{}, false
	case err != nil:
		s.cacheResult(metrics.CacheError)
		s.logger.Warn().Err(err).Msg("cache lookup failed")
		return domain.SchedulePreview{}, false
	case !found:
		s.cacheResult(metrics.CacheMiss)
		return domain.SchedulePreview{}, false
	}

	s.cacheResult(metrics.CacheHit)
	return p, true
}

func (s *Service) cacheSet(ctx context.Context, key string, p domain.SchedulePreview) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, p); err != nil && !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		s.logger.Warn().Err(err).Msg("cache store failed")
	}
}

func (s *Service) cacheResult(result string) {
	if s.metrics != nil {
		s.metrics.CacheLookup(result)
	}
}

func (s *Service) computed(n int) {
	if s.metrics != nil {
		s.metrics.ExecutionsComputed(n)
	}
}

func (s *Service) record(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		if kind := cron.KindOf(err); kind != "" {
			outcome = string(kind)
		}
	}
	s.metrics.OperationCompleted(operation, outcome, time.Since(start))
}

// rezone restores the zone location on executions decoded from the cache,
// which only carry a fixed offset.
func rezone(p domain.SchedulePreview, zone *cron.Zone) domain.SchedulePreview {
	executions := make([]time.Time, len(p.Executions))
	for i, t := range p.Executions {
		executions[i] = zone.In(t)
	}
	p.Executions = executions
	return p
}
