package cron

import (
	"errors"
	"fmt"
	"time"
)

// Civil is a calendar date and time-of-day with no UTC offset attached.
// Its fields are always normalised (Day is valid for Month, and so on).
type Civil struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

// civilOf reads the wall clock of t in whatever location t carries.
func civilOf(t time.Time) Civil {
	return Civil{
		Year:   t.Year(),
		Month:  t.Month(),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}
}

// wall returns c as a time.Time in UTC. UTC has no transitions, so this is a
// safe carrier for calendar arithmetic and normalisation.
func (c Civil) wall() time.Time {
	return time.Date(c.Year, c.Month, c.Day, c.Hour, c.Minute, 0, 0, time.UTC)
}

// Weekday returns the day of the week of the civil date.
func (c Civil) Weekday() time.Weekday {
	return c.wall().Weekday()
}

// Before reports whether c is earlier than other.
func (c Civil) Before(other Civil) bool {
	return c.wall().Before(other.wall())
}

func (c Civil) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute)
}

// Zone is a resolved IANA timezone.
type Zone struct {
	name string
	loc  *time.Location
}

// LoadZone resolves an IANA timezone name. There is no fallback: "" and
// "Local" are rejected even though time.LoadLocation accepts them.
func LoadZone(name string) (*Zone, error) {
	if name == "" {
		return nil, invalidTimezone(errors.New("timezone is required"))
	}
	if name == "Local" {
		return nil, invalidTimezone(errors.New(`"Local" is not an IANA timezone`))
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, invalidTimezone(fmt.Errorf("load timezone %q: %w", name, err))
	}
	return &Zone{name: name, loc: loc}, nil
}

// Name returns the IANA name the zone was loaded from.
func (z *Zone) Name() string {
	return z.name
}

// Location returns the underlying *time.Location.
func (z *Zone) Location() *time.Location {
	return z.loc
}

// In returns t expressed in the zone.
func (z *Zone) In(t time.Time) time.Time {
	return t.In(z.loc)
}

// Offset returns the offset from UTC, in seconds east, in effect at t.
func (z *Zone) Offset(t time.Time) int {
	_, offset := t.In(z.loc).Zone()
	return offset
}

// Abbreviation returns the zone abbreviation in effect at t (EST, EDT, ...).
func (z *Zone) Abbreviation(t time.Time) string {
	abbr, _ := t.In(z.loc).Zone()
	return abbr
}

// Civil returns the wall-clock date and time of t in the zone.
func (z *Zone) Civil(t time.Time) Civil {
	return civilOf(t.In(z.loc))
}

// Instant returns the instant that civil time c denotes in the zone.
//
// A civil time inside a spring-forward gap resolves to the first instant
// after the gap. A civil time repeated by a fall-back transition resolves to
// the earlier of its two instants.
func (z *Zone) Instant(c Civil) time.Time {
	wall := c.wall()

	var best time.Time
	found := false
	for _, offset := range z.candidateOffsets(wall) {
		t := wall.Add(-time.Duration(offset) * time.Second)
		if civilOf(t.In(z.loc)) != c {
			continue
		}
		if !found || t.Before(best) {
			best = t
			found = true
		}
	}
	if found {
		return best.In(z.loc)
	}

	// Gap. Interpreting c with the pre-transition offset lands past the
	// transition; the period containing that instant starts right at it.
	before := z.Offset(wall.Add(-48 * time.Hour))
	t := wall.Add(-time.Duration(before) * time.Second).In(z.loc)
	start, _ := t.ZoneBounds()
	if start.IsZero() || start.After(t) {
		return t
	}
	return start.In(z.loc)
}

// candidateOffsets samples the offsets in effect around wall. Any instant
// that could display as wall lies within 14 hours of it.
func (z *Zone) candidateOffsets(wall time.Time) []int {
	var offsets []int
	for _, d := range []time.Duration{-48 * time.Hour, -14 * time.Hour, 0, 14 * time.Hour, 48 * time.Hour} {
		o := z.Offset(wall.Add(d))
		seen := false
		for _, existing := range offsets {
			if existing == o {
				seen = true
				break
			}
		}
		if !seen {
			offsets = append(offsets, o)
		}
	}
	return offsets
}
