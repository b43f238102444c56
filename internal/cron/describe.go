package cron

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxListedTimes caps how many explicit times of day are spelled out before
// the describer falls back to minute/hour phrases.
const maxListedTimes = 6

var weekdayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Describe renders expr as an English sentence, suffixed with the zone
// abbreviation in effect at the first execution after after.
//
//	"0 9 * * 1-5" -> "At 9:00 AM, Monday through Friday (EDT)"
func Describe(expr Expression, zone *Zone, after time.Time, opts ...Option) (string, error) {
	next, err := Next(expr, zone, after, opts...)
	if err != nil {
		return "", err
	}
	return DescribeAt(expr, zone.Abbreviation(next)), nil
}

// DescribeAt renders expr with the given zone abbreviation. An empty
// abbreviation omits the suffix.
func DescribeAt(expr Expression, abbreviation string) string {
	var sb strings.Builder
	sb.WriteString(describeTime(expr.Minute, expr.Hour))

	if days := describeDays(expr.DayOfMonth, expr.DayOfWeek); days != "" {
		sb.WriteString(", ")
		sb.WriteString(days)
	}
	if months := describeMonths(expr.Month); months != "" {
		sb.WriteString(", ")
		sb.WriteString(months)
	}
	if abbreviation != "" {
		sb.WriteString(" (")
		sb.WriteString(abbreviation)
		sb.WriteString(")")
	}
	return sb.String()
}

// ClockTime renders an hour and minute on the 12-hour clock: "9:00 AM",
// "12:00 PM" for noon, "12:00 AM" for midnight.
func ClockTime(hour, minute int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, suffix)
}

func describeTime(minute, hour Field) string {
	if explicit(minute) && explicit(hour) {
		minutes, hours := minute.Values(), hour.Values()
		if len(minutes)*len(hours) <= maxListedTimes {
			var times []string
			for _, h := range hours {
				for _, m := range minutes {
					times = append(times, ClockTime(h, m))
				}
			}
			return "At " + joinAnd(times)
		}
	}

	if !hour.Restricted() && minute.Kind == FieldSingle {
		if minute.Value == 0 {
			return "Every hour"
		}
		return fmt.Sprintf("At %d minutes past every hour", minute.Value)
	}

	minutePart := describeMinute(minute)
	hourPart := describeHour(hour)
	if hourPart == "" {
		return capitalize(minutePart)
	}
	return capitalize(minutePart) + ", " + hourPart
}

// explicit reports whether the field is a closed set of written values.
func explicit(f Field) bool {
	return f.Kind == FieldSingle || f.Kind == FieldList || f.Kind == FieldRange
}

func describeMinute(f Field) string {
	switch f.Kind {
	case FieldAll:
		return "every minute"
	case FieldSingle:
		if f.Value == 0 {
			return "on the hour"
		}
		return fmt.Sprintf("at %d minutes past the hour", f.Value)
	case FieldStep:
		if !f.Restricted() {
			return "every minute"
		}
		if f.Wildcard {
			return fmt.Sprintf("every %d minutes", f.Step)
		}
		return fmt.Sprintf("every %d minutes, minutes %d through %d past the hour", f.Step, f.Start, f.End)
	case FieldRange:
		return fmt.Sprintf("every minute from %d through %d past the hour", f.Start, f.End)
	default:
		return "at minutes " + joinAnd(intStrings(f.Values())) + " past the hour"
	}
}

func describeHour(f Field) string {
	switch f.Kind {
	case FieldAll:
		return ""
	case FieldSingle:
		return fmt.Sprintf("between %s and %s", ClockTime(f.Value, 0), ClockTime(f.Value, 59))
	case FieldRange:
		return fmt.Sprintf("between %s and %s", ClockTime(f.Start, 0), ClockTime(f.End, 59))
	case FieldStep:
		if !f.Restricted() {
			return ""
		}
		if f.Wildcard {
			return fmt.Sprintf("every %d hours", f.Step)
		}
		return fmt.Sprintf("every %d hours, between %s and %s", f.Step, ClockTime(f.Start, 0), ClockTime(f.End, 59))
	default:
		var hours []string
		for _, h := range f.Values() {
			hours = append(hours, ClockTime(h, 0))
		}
		return "during the hours starting " + joinAnd(hours)
	}
}

func describeDays(dom, dow Field) string {
	domPart := describeDayOfMonth(dom)
	dowPart := describeWeekdays(dow)
	switch {
	case domPart != "" && dowPart != "":
		return domPart + " or " + dowPart
	case domPart != "":
		return domPart
	default:
		return dowPart
	}
}

func describeDayOfMonth(f Field) string {
	if !f.Restricted() {
		return ""
	}
	switch f.Kind {
	case FieldSingle:
		return fmt.Sprintf("on day %d of the month", f.Value)
	case FieldRange:
		return fmt.Sprintf("on days %d through %d of the month", f.Start, f.End)
	case FieldStep:
		if f.Wildcard {
			return fmt.Sprintf("every %d days of the month", f.Step)
		}
		return fmt.Sprintf("every %d days of the month, days %d through %d", f.Step, f.Start, f.End)
	default:
		return "on days " + joinAnd(intStrings(f.Values())) + " of the month"
	}
}

func describeWeekdays(f Field) string {
	if !f.Restricted() {
		return ""
	}
	values := f.Values()
	var parts []string
	for i := 0; i < len(values); {
		j := i
		for j+1 < len(values) && values[j+1] == values[j]+1 {
			j++
		}
		parts = append(parts, weekdayRange(values[i], values[j]))
		i = j + 1
	}
	return joinAnd(parts)
}

func weekdayRange(start, end int) string {
	if start == end {
		return weekdayName(start)
	}
	return weekdayName(start) + " through " + weekdayName(end)
}

// weekdayName accepts 0-7; 7 is Sunday.
func weekdayName(v int) string {
	return weekdayNames[v%7]
}

func describeMonths(f Field) string {
	if !f.Restricted() {
		return ""
	}
	switch f.Kind {
	case FieldSingle:
		return "in " + time.Month(f.Value).String()
	case FieldRange:
		return "in " + time.Month(f.Start).String() + " through " + time.Month(f.End).String()
	default:
		var names []string
		for _, v := range f.Values() {
			names = append(names, time.Month(v).String())
		}
		return "in " + joinAnd(names)
	}
}

// joinAnd joins items as "a", "a and b" or "a, b and c".
func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func intStrings(values []int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Itoa(v)
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
