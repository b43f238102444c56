package cron

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// executionLayout renders "Monday, January 15, 2024 at 9:00 AM EST".
const executionLayout = "Monday, January 2, 2006 at 3:04 PM MST"

// Format renders t in its own location.
func Format(t time.Time) (string, error) {
	if t.IsZero() {
		return "", invalidDate(errors.New("zero time"))
	}
	return t.Format(executionLayout), nil
}

// FormatIn renders t in zone.
func FormatIn(t time.Time, zone *Zone) (string, error) {
	return Format(zone.In(t))
}

// ParseInstant parses an RFC 3339 timestamp.
func ParseInstant(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, invalidDate(errors.New("instant is required"))
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, invalidDate(fmt.Errorf("parse %q: %w", raw, err))
	}
	return t, nil
}
