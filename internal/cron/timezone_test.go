package cron

import (
	"errors"
	"testing"
	"time"
)

func TestLoadZone_Valid(t *testing.T) {
	zones := []string{
		"UTC",
		"America/New_York",
		"Europe/Paris",
		"Asia/Tokyo",
		"Australia/Sydney",
		"Pacific/Auckland",
	}

	for _, name := range zones {
		t.Run(name, func(t *testing.T) {
			z, err := LoadZone(name)
			if err != nil {
				t.Fatalf("LoadZone(%q) returned error: %v", name, err)
			}
			if z.Name() != name {
				t.Errorf("Name() = %q, want %q", z.Name(), name)
			}
		})
	}
}

func TestLoadZone_Invalid(t *testing.T) {
	tests := []struct {
		name string
		tz   string
	}{
		{"empty", ""},
		{"local", "Local"},
		{"nonexistent", "Invalid/Zone"},
		{"abbreviation", "NOPE"},
		{"path traversal", "../etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadZone(tt.tz)
			if err == nil {
				t.Fatalf("LoadZone(%q) should return error", tt.tz)
			}
			if !errors.Is(err, ErrInvalidTimezone) {
				t.Errorf("LoadZone(%q) error = %v, want ErrInvalidTimezone", tt.tz, err)
			}
		})
	}
}

func TestZone_OffsetAndAbbreviation(t *testing.T) {
	ny := mustLoadZone(t, "America/New_York")

	tests := []struct {
		name   string
		at     time.Time
		offset int
		abbr   string
	}{
		{"winter", time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), -5 * 3600, "EST"},
		{"summer", time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC), -4 * 3600, "EDT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ny.Offset(tt.at); got != tt.offset {
				t.Errorf("Offset() = %d, want %d", got, tt.offset)
			}
			if got := ny.Abbreviation(tt.at); got != tt.abbr {
				t.Errorf("Abbreviation() = %q, want %q", got, tt.abbr)
			}
		})
	}
}

func TestZone_CivilRoundTrip(t *testing.T) {
	zones := []string{"America/New_York", "Asia/Kolkata", "Australia/Sydney"}
	instants := []time.Time{
		time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 23, 59, 0, 0, time.UTC),
		time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
	}

	for _, name := range zones {
		z := mustLoadZone(t, name)
		for _, at := range instants {
			c := z.Civil(at)
			if got := z.Instant(c); !got.Equal(at) {
				t.Errorf("%s: Instant(Civil(%v)) = %v, want %v", name, at, got.UTC(), at)
			}
		}
	}
}

func TestZone_InstantSpringForwardGap(t *testing.T) {
	ny := mustLoadZone(t, "America/New_York")

	// 2024-03-10 02:30 does not exist in New York; clocks jump 02:00 EST -> 03:00 EDT.
	got := ny.Instant(Civil{Year: 2024, Month: time.March, Day: 10, Hour: 2, Minute: 30})
	want := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Instant() = %v, want %v", got.UTC(), want)
	}
	if h, m := got.Hour(), got.Minute(); h != 3 || m != 0 {
		t.Errorf("local time = %d:%02d, want 3:00", h, m)
	}
}

func TestZone_InstantFallBackFold(t *testing.T) {
	ny := mustLoadZone(t, "America/New_York")

	// 2024-11-03 01:30 happens twice: 05:30 UTC (EDT) and 06:30 UTC (EST).
	got := ny.Instant(Civil{Year: 2024, Month: time.November, Day: 3, Hour: 1, Minute: 30})
	want := time.Date(2024, 11, 3, 5, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Instant() = %v, want earlier occurrence %v", got.UTC(), want)
	}
	if abbr := ny.Abbreviation(got); abbr != "EDT" {
		t.Errorf("Abbreviation() = %q, want EDT", abbr)
	}
}

func TestZone_InstantSouthernHemisphere(t *testing.T) {
	syd := mustLoadZone(t, "Australia/Sydney")

	// 2024-10-06 02:30 does not exist in Sydney (02:00 AEST -> 03:00 AEDT).
	got := syd.Instant(Civil{Year: 2024, Month: time.October, Day: 6, Hour: 2, Minute: 30})
	want := time.Date(2024, 10, 5, 16, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Instant() = %v, want %v", got.UTC(), want)
	}
}

func mustLoadZone(t *testing.T, name string) *Zone {
	t.Helper()
	z, err := LoadZone(name)
	if err != nil {
		t.Fatalf("LoadZone(%q): %v", name, err)
	}
	return z
}
