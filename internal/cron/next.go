package cron

import (
	"iter"
	"time"
)

// Count limits for a single request.
const (
	MinCount = 1
	MaxCount = 10
)

// DefaultHorizonYears bounds the search. Eight years spans at least one leap
// day even across a skipped century leap year.
const DefaultHorizonYears = 8

type options struct {
	horizonYears int
}

// Option configures the search.
type Option func(*options)

// WithHorizon overrides the search horizon in years. Values below 1 are ignored.
func WithHorizon(years int) Option {
	return func(o *options) {
		if years >= 1 {
			o.horizonYears = years
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{horizonYears: DefaultHorizonYears}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ValidateCount rejects counts outside [MinCount, MaxCount].
func ValidateCount(count int) error {
	if count < MinCount || count > MaxCount {
		return invalidCount()
	}
	return nil
}

// Iterator lazily yields the execution instants of an expression in
// ascending order. It is not safe for concurrent use.
type Iterator struct {
	expr    Expression
	zone    *Zone
	horizon int

	after  time.Time // instants must be strictly later than this
	cursor Civil     // next civil minute to test
	err    error
}

// NewIterator returns an iterator over the instants strictly after after.
// after is truncated to the minute; the search starts at the following minute.
func NewIterator(expr Expression, zone *Zone, after time.Time, opts ...Option) *Iterator {
	o := buildOptions(opts)
	after = after.Truncate(time.Minute)
	return &Iterator{
		expr:    expr,
		zone:    zone,
		horizon: o.horizonYears,
		after:   after,
		cursor:  zone.Civil(after.Add(time.Minute)),
	}
}

// Next returns the next execution instant in the iterator's zone. Once an
// error is returned, every later call returns the same error.
func (it *Iterator) Next() (time.Time, error) {
	if it.err != nil {
		return time.Time{}, it.err
	}

	start := it.cursor
	limit := civilOf(start.wall().AddDate(it.horizon, 0, 0))

	for {
		c, ok := it.nextCivil(it.cursor, limit)
		if !ok {
			it.err = searchExhausted(it.horizon, start)
			return time.Time{}, it.err
		}
		it.cursor = civilOf(c.wall().Add(time.Minute))

		t := it.zone.Instant(c)
		if !t.After(it.after) {
			// Earlier half of a repeated hour, or a gap that collapsed onto
			// an instant already yielded.
			continue
		}
		it.after = t
		return t, nil
	}
}

// All adapts the iterator to a range-over-func sequence. Iteration stops
// after the first error is yielded.
func (it *Iterator) All() iter.Seq2[time.Time, error] {
	return func(yield func(time.Time, error) bool) {
		for {
			t, err := it.Next()
			if !yield(t, err) || err != nil {
				return
			}
		}
	}
}

// nextCivil returns the first civil minute at or after c that matches every
// field, or false if none exists before limit.
func (it *Iterator) nextCivil(c Civil, limit Civil) (Civil, bool) {
	e := it.expr
	t := c.wall()
	end := limit.wall()

	for t.Before(end) {
		if !e.Month.Matches(int(t.Month())) {
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
			continue
		}

		if !e.dayMatches(t.Day(), t.Weekday()) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
			continue
		}

		if !e.Hour.Matches(t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, time.UTC)
			continue
		}

		m := e.Minute.bits.next(t.Minute())
		if m < 0 {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, time.UTC)
			continue
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), m, 0, 0, time.UTC)
		return civilOf(t), true
	}
	return Civil{}, false
}

// dayMatches applies the standard cron rule: when both day fields are
// restricted a day matches if either does; otherwise both must match, which
// reduces to the restricted one.
func (e Expression) dayMatches(day int, weekday time.Weekday) bool {
	domOK := e.DayOfMonth.Matches(day)
	dowOK := e.DayOfWeek.Matches(int(weekday))
	if e.DayOfMonth.Restricted() && e.DayOfWeek.Restricted() {
		return domOK || dowOK
	}
	return domOK && dowOK
}

// Matches reports whether the civil time c satisfies the expression.
func (e Expression) Matches(c Civil) bool {
	return e.Minute.Matches(c.Minute) &&
		e.Hour.Matches(c.Hour) &&
		e.Month.Matches(int(c.Month)) &&
		e.dayMatches(c.Day, c.Weekday())
}

// NextN returns the next count execution instants strictly after after.
func NextN(expr Expression, zone *Zone, after time.Time, count int, opts ...Option) ([]time.Time, error) {
	if err := ValidateCount(count); err != nil {
		return nil, err
	}

	it := NewIterator(expr, zone, after, opts...)
	out := make([]time.Time, 0, count)
	for len(out) < count {
		t, err := it.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Next returns the first execution instant strictly after after.
func Next(expr Expression, zone *Zone, after time.Time, opts ...Option) (time.Time, error) {
	return NewIterator(expr, zone, after, opts...).Next()
}
