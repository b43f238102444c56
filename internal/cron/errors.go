package cron

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for callers that need to branch on it.
type ErrorKind string

const (
	KindInvalidCron     ErrorKind = "invalid_cron"
	KindInvalidTimezone ErrorKind = "invalid_timezone"
	KindInvalidCount    ErrorKind = "invalid_count"
	KindInvalidDate     ErrorKind = "invalid_date"
	KindSearchExhausted ErrorKind = "search_exhausted"
)

// Base messages surfaced to end users.
const (
	msgInvalidCron     = "Invalid cron expression"
	msgInvalidTimezone = "Invalid timezone"
	msgInvalidCount    = "Count must be an integer between 1 and 10"
	msgInvalidDate     = "Invalid date"
	msgSearchExhausted = "No matching execution found"
)

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrInvalidCron     = &Error{Kind: KindInvalidCron, Message: msgInvalidCron}
	ErrInvalidTimezone = &Error{Kind: KindInvalidTimezone, Message: msgInvalidTimezone}
	ErrInvalidCount    = &Error{Kind: KindInvalidCount, Message: msgInvalidCount}
	ErrInvalidDate     = &Error{Kind: KindInvalidDate, Message: msgInvalidDate}
	ErrSearchExhausted = &Error{Kind: KindSearchExhausted, Message: msgSearchExhausted}
)

// Error is returned by every operation in this package.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func invalidCron(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidCron, Message: msgInvalidCron, Err: fmt.Errorf(format, args...)}
}

func invalidTimezone(err error) *Error {
	return &Error{Kind: KindInvalidTimezone, Message: msgInvalidTimezone, Err: err}
}

func invalidCount() *Error {
	return &Error{Kind: KindInvalidCount, Message: msgInvalidCount}
}

func invalidDate(err error) *Error {
	return &Error{Kind: KindInvalidDate, Message: msgInvalidDate, Err: err}
}

func searchExhausted(years int, from Civil) *Error {
	return &Error{
		Kind:    KindSearchExhausted,
		Message: msgSearchExhausted,
		Err:     fmt.Errorf("no match within %d years of %s", years, from),
	}
}

// KindOf returns the ErrorKind carried by err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
