package cron

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDescribe_WeekdaysNewYork(t *testing.T) {
	ny := mustLoadZone(t, "America/New_York")
	expr := MustParse("0 9 * * 1-5")

	winter, err := Describe(expr, ny, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if !strings.Contains(winter, "Monday through Friday") || !strings.Contains(winter, "9:00 AM") {
		t.Errorf("description %q missing weekday range or time", winter)
	}
	if want := "At 9:00 AM, Monday through Friday (EST)"; winter != want {
		t.Errorf("Describe() = %q, want %q", winter, want)
	}

	summer, err := Describe(expr, ny, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if want := "At 9:00 AM, Monday through Friday (EDT)"; summer != want {
		t.Errorf("Describe() = %q, want %q", summer, want)
	}
}

func TestDescribe_UsesNextExecutionAbbreviation(t *testing.T) {
	ny := mustLoadZone(t, "America/New_York")

	// Reference is in January (EST) but the next run is on July 4th (EDT).
	got, err := Describe(MustParse("0 12 4 7 *"), ny, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if !strings.HasSuffix(got, "(EDT)") {
		t.Errorf("Describe() = %q, want EDT suffix", got)
	}
}

func TestDescribe_Deterministic(t *testing.T) {
	ny := mustLoadZone(t, "America/New_York")
	expr := MustParse("*/15 9-17 * * 1-5")
	after := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	first, err := Describe(expr, ny, after)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	second, err := Describe(expr, ny, after)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if first != second {
		t.Errorf("Describe() not stable: %q vs %q", first, second)
	}
}

func TestDescribe_SearchExhausted(t *testing.T) {
	utc := mustLoadZone(t, "UTC")
	_, err := Describe(MustParse("0 0 30 2 *"), utc, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), WithHorizon(1))
	if !errors.Is(err, ErrSearchExhausted) {
		t.Errorf("error = %v, want ErrSearchExhausted", err)
	}
}

func TestDescribeAt(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"0 12 * * *", "At 12:00 PM"},
		{"0 0 * * *", "At 12:00 AM"},
		{"30 17 * * 5", "At 5:30 PM, Friday"},
		{"0 9 * * 7", "At 9:00 AM, Sunday"},
		{"0 9 1 * *", "At 9:00 AM, on day 1 of the month"},
		{"0 9 1,15 * *", "At 9:00 AM, on days 1 and 15 of the month"},
		{"0 9 15 * 1", "At 9:00 AM, on day 15 of the month or Monday"},
		{"0 9,17 * * 1,3,5", "At 9:00 AM and 5:00 PM, Monday, Wednesday and Friday"},
		{"0 9 * * 1-3,5", "At 9:00 AM, Monday through Wednesday and Friday"},
		{"0 0 1 1 *", "At 12:00 AM, on day 1 of the month, in January"},
		{"0 6 * 3-5 *", "At 6:00 AM, in March through May"},
		{"*/15 * * * *", "Every 15 minutes"},
		{"* * * * *", "Every minute"},
		{"0 * * * *", "Every hour"},
		{"45 * * * *", "At 45 minutes past every hour"},
		{"0 9-17 * * *", "On the hour, between 9:00 AM and 5:59 PM"},
		{"*/15 9-17 * * 1-5", "Every 15 minutes, between 9:00 AM and 5:59 PM, Monday through Friday"},
		{"0 */6 * * *", "On the hour, every 6 hours"},
		{"0 */2 * * *", "On the hour, every 2 hours"},
		{"15 9-17 * * *", "At 15 minutes past the hour, between 9:00 AM and 5:59 PM"},
		{"0 9 * * 1,2,3,4,5", "At 9:00 AM, Monday through Friday"},
		{"0 9 * * 1-5/1", "At 9:00 AM, Monday through Friday"},
		{"0 9 * * 1-5/2", "At 9:00 AM, Monday, Wednesday and Friday"},
		{"0 9 * * 0,1,2,5", "At 9:00 AM, Sunday through Tuesday and Friday"},
		{"0 9 * * 5-7", "At 9:00 AM, Sunday and Friday through Saturday"},
		{"* 9 * * *", "Every minute, between 9:00 AM and 9:59 AM"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := DescribeAt(MustParse(tt.expr), ""); got != tt.want {
				t.Errorf("DescribeAt(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestClockTime(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{0, 0, "12:00 AM"},
		{0, 30, "12:30 AM"},
		{9, 0, "9:00 AM"},
		{11, 59, "11:59 AM"},
		{12, 0, "12:00 PM"},
		{13, 5, "1:05 PM"},
		{23, 59, "11:59 PM"},
	}

	for _, tt := range tests {
		if got := ClockTime(tt.hour, tt.minute); got != tt.want {
			t.Errorf("ClockTime(%d, %d) = %q, want %q", tt.hour, tt.minute, got, tt.want)
		}
	}
}
