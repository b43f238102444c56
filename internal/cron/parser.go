// Package cron parses five-field cron expressions and computes, describes
// and formats their upcoming executions in an IANA timezone.
//
// Day-of-week uses 0 for Sunday; 7 is accepted as an alias and stored as 0.
package cron

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKind tags the syntactic form a field was written in.
type FieldKind int

const (
	FieldAll FieldKind = iota
	FieldSingle
	FieldRange
	FieldList
	FieldStep
)

func (k FieldKind) String() string {
	switch k {
	case FieldAll:
		return "all"
	case FieldSingle:
		return "single"
	case FieldRange:
		return "range"
	case FieldList:
		return "list"
	case FieldStep:
		return "step"
	default:
		return "unknown"
	}
}

// bitset64 uses a uint64 as a compact set of integers 0-63.
type bitset64 uint64

func (b bitset64) has(value int) bool { return value >= 0 && value < 64 && b&(1<<uint(value)) != 0 }
func (b *bitset64) set(value int)     { *b |= 1 << uint(value) }

// next returns the smallest member >= from, or -1.
func (b bitset64) next(from int) int {
	for v := from; v < 64; v++ {
		if b.has(v) {
			return v
		}
	}
	return -1
}

func (b bitset64) values() []int {
	var out []int
	for v := 0; v < 64; v++ {
		if b.has(v) {
			out = append(out, v)
		}
	}
	return out
}

// Field is one parsed cron field.
//
// Single uses Value. Range uses Start and End. Step uses Start, End and Step,
// with Wildcard set when the base was "*". List holds Single, Range or Step
// items in source order.
type Field struct {
	Kind     FieldKind
	Value    int
	Start    int
	End      int
	Step     int
	Wildcard bool
	Items    []Field

	bits bitset64
}

// Matches reports whether v is admitted by the field.
func (f Field) Matches(v int) bool {
	return f.bits.has(v)
}

// Values returns the admitted values in ascending order.
func (f Field) Values() []int {
	return f.bits.values()
}

// Restricted reports whether the field narrows its domain syntactically.
// "*" and "*/1" are unrestricted; this decides the day-of-month/day-of-week
// OR rule, so "0-6" in the weekday field still counts as restricted.
func (f Field) Restricted() bool {
	switch f.Kind {
	case FieldAll:
		return false
	case FieldStep:
		return !(f.Wildcard && f.Step == 1)
	default:
		return true
	}
}

func (f Field) String() string {
	switch f.Kind {
	case FieldAll:
		return "*"
	case FieldSingle:
		return strconv.Itoa(f.Value)
	case FieldRange:
		return fmt.Sprintf("%d-%d", f.Start, f.End)
	case FieldStep:
		if f.Wildcard {
			return fmt.Sprintf("*/%d", f.Step)
		}
		return fmt.Sprintf("%d-%d/%d", f.Start, f.End, f.Step)
	case FieldList:
		parts := make([]string, len(f.Items))
		for i, item := range f.Items {
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	default:
		return "?"
	}
}

// Expression is a parsed five-field cron expression.
type Expression struct {
	Minute     Field
	Hour       Field
	DayOfMonth Field
	Month      Field
	DayOfWeek  Field
}

// String renders the normalised expression.
func (e Expression) String() string {
	return strings.Join([]string{
		e.Minute.String(),
		e.Hour.String(),
		e.DayOfMonth.String(),
		e.Month.String(),
		e.DayOfWeek.String(),
	}, " ")
}

type bounds struct {
	name  string
	min   int
	max   int
	names map[string]int
}

var (
	minuteBounds = bounds{name: "minute", min: 0, max: 59}
	hourBounds   = bounds{name: "hour", min: 0, max: 23}
	domBounds    = bounds{name: "day-of-month", min: 1, max: 31}
	monthBounds  = bounds{name: "month", min: 1, max: 12, names: map[string]int{
		"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
		"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
	}}
	// Sunday is 0. 7 is accepted on input and folded onto 0.
	dowBounds = bounds{name: "day-of-week", min: 0, max: 7, names: map[string]int{
		"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
	}}
)

// Parse parses a standard 5-field cron expression. The whole expression is
// rejected if any field fails.
func Parse(expression string) (Expression, error) {
	if strings.TrimSpace(expression) == "" {
		return Expression{}, ErrInvalidCron
	}

	fields := strings.Fields(expression)
	if len(fields) != 5 {
		return Expression{}, invalidCron("expected 5 fields, got %d", len(fields))
	}

	var expr Expression
	targets := []struct {
		dst *Field
		b   bounds
	}{
		{&expr.Minute, minuteBounds},
		{&expr.Hour, hourBounds},
		{&expr.DayOfMonth, domBounds},
		{&expr.Month, monthBounds},
		{&expr.DayOfWeek, dowBounds},
	}
	for i, t := range targets {
		f, err := parseField(fields[i], t.b)
		if err != nil {
			return Expression{}, invalidCron("%s field: %v", t.b.name, err)
		}
		*t.dst = f
	}
	expr.DayOfWeek = foldSunday(expr.DayOfWeek)

	return expr, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level variables.
func MustParse(expression string) Expression {
	expr, err := Parse(expression)
	if err != nil {
		panic("cron.MustParse: " + err.Error())
	}
	return expr
}

func parseField(field string, b bounds) (Field, error) {
	terms := strings.Split(field, ",")
	if len(terms) == 1 {
		return parseTerm(terms[0], b)
	}

	list := Field{Kind: FieldList}
	for _, term := range terms {
		if term == "*" {
			return Field{}, fmt.Errorf("wildcard not allowed in list %q", field)
		}
		item, err := parseTerm(term, b)
		if err != nil {
			return Field{}, err
		}
		list.Items = append(list.Items, item)
		list.bits |= item.bits
	}
	return list, nil
}

// parseTerm parses *, */N, V, V-V, V-V/N or V/N.
func parseTerm(term string, b bounds) (Field, error) {
	if term == "" {
		return Field{}, fmt.Errorf("empty term")
	}

	base, stepStr, hasStep := strings.Cut(term, "/")
	step := 1
	if hasStep {
		n, err := strconv.Atoi(stepStr)
		if err != nil {
			return Field{}, fmt.Errorf("invalid step %q", stepStr)
		}
		if n <= 0 {
			return Field{}, fmt.Errorf("step must be positive, got %d", n)
		}
		step = n
	}

	var f Field
	switch {
	case base == "*":
		f = Field{Kind: FieldAll, Start: b.min, End: b.max, Wildcard: true}
		if hasStep {
			f.Kind = FieldStep
			f.Step = step
		}
	case strings.Contains(base, "-"):
		startStr, endStr, _ := strings.Cut(base, "-")
		start, err := parseValue(startStr, b)
		if err != nil {
			return Field{}, err
		}
		end, err := parseValue(endStr, b)
		if err != nil {
			return Field{}, err
		}
		if start > end {
			return Field{}, fmt.Errorf("range start %d > end %d", start, end)
		}
		f = Field{Kind: FieldRange, Start: start, End: end}
		if hasStep {
			f.Kind = FieldStep
			f.Step = step
		}
	default:
		v, err := parseValue(base, b)
		if err != nil {
			return Field{}, err
		}
		f = Field{Kind: FieldSingle, Value: v, Start: v, End: v}
		if hasStep {
			// "V/N" runs from V to the top of the domain.
			f = Field{Kind: FieldStep, Start: v, End: b.max, Step: step}
		}
	}

	for v := f.Start; v <= f.End; v += step {
		f.bits.set(v)
	}
	if f.bits == 0 {
		return Field{}, fmt.Errorf("term %q produces empty set", term)
	}
	return f, nil
}

func parseValue(s string, b bounds) (int, error) {
	if v, ok := b.names[strings.ToLower(s)]; ok {
		return v, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if v < b.min || v > b.max {
		return 0, fmt.Errorf("value %d out of range [%d-%d]", v, b.min, b.max)
	}
	return v, nil
}

// foldSunday maps the day-of-week value 7 onto 0 and rebuilds the bitset
// over [0,6]. A full-week wildcard stays unrestricted.
func foldSunday(f Field) Field {
	if f.bits.has(7) {
		f.bits &^= 1 << 7
		f.bits.set(0)
	}
	if f.Kind == FieldAll {
		f.End = 6
	}
	if f.Kind == FieldSingle && f.Value == 7 {
		f.Value, f.Start, f.End = 0, 0, 0
	}
	for i := range f.Items {
		f.Items[i] = foldSunday(f.Items[i])
	}
	return f
}
