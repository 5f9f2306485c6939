// Package dates normalizes user-supplied calendar dates into the epoch
// timestamps used by price-query APIs.
//
// Accepted inputs are "YYYY-MM-DD" and "YY-MM-DD" strings (single-digit month
// and day are allowed). Timestamps are always computed in ReferenceZone, a
// fixed UTC-4 offset, so the same input string yields the same value on every
// machine regardless of its local timezone.
package dates

import (
	"fmt"
	"time"
)

// ReferenceZone is the fixed UTC-4 offset every timestamp is localized to.
// A fixed offset, not America/New_York, so daylight saving never shifts it.
var ReferenceZone = time.FixedZone("UTC-4", -4*60*60)

// Layouts tried in order by Parse.
var layouts = []string{
	"2006-1-2",
	"06-1-2",
}

// CalendarDate is a naive calendar date with no time of day or zone.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a CalendarDate.
func NewDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Year: year, Month: month, Day: day}
}

// FromTime returns the calendar date of t in t's own location.
func FromTime(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// String formats the date as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero date.
func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Before reports whether d is strictly earlier than other.
func (d CalendarDate) Before(other CalendarDate) bool {
	return d.In(time.UTC).Before(other.In(time.UTC))
}

// In returns midnight of d in loc.
func (d CalendarDate) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// --- Errors ---

// InvalidDateInputError is returned when a date arrives as something other
// than a string (integers in particular).
type InvalidDateInputError struct {
	Value any
}

func (e *InvalidDateInputError) Error() string {
	return fmt.Sprintf("date should be a string in YYYY-MM-DD or YY-MM-DD format, got %T (%v)", e.Value, e.Value)
}

// DateFormatError is returned when a date string matches none of the
// accepted layouts.
type DateFormatError struct {
	Input string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("date %q does not match YYYY-MM-DD or YY-MM-DD", e.Input)
}

// --- Normalizer ---

// Normalizer parses dates against an injectable clock. The clock only matters
// for absent input, which defaults to today.
type Normalizer struct {
	Now func() time.Time
}

// Default is the package-level normalizer backed by time.Now.
var Default = &Normalizer{Now: time.Now}

// Today returns the current date in the normalizer's local clock.
func (n *Normalizer) Today() CalendarDate {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	return FromTime(now())
}

// Parse parses input as YYYY-MM-DD, falling back to YY-MM-DD. Empty input
// means today.
func (n *Normalizer) Parse(input string) (CalendarDate, error) {
	if input == "" {
		return n.Today(), nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, input); err == nil {
			return FromTime(t), nil
		}
	}
	return CalendarDate{}, &DateFormatError{Input: input}
}

// ParseValue accepts loosely typed input such as config values or decoded
// JSON. nil means today, strings go through Parse and every other type is
// rejected with InvalidDateInputError.
func (n *Normalizer) ParseValue(v any) (CalendarDate, error) {
	switch val := v.(type) {
	case nil:
		return n.Today(), nil
	case string:
		return n.Parse(val)
	case *string:
		if val == nil {
			return n.Today(), nil
		}
		return n.Parse(*val)
	default:
		return CalendarDate{}, &InvalidDateInputError{Value: v}
	}
}

// ParseOr parses input but substitutes fallback when input is empty. Callers
// use it for policies such as a fixed historical floor for start dates.
func (n *Normalizer) ParseOr(input string, fallback CalendarDate) (CalendarDate, error) {
	if input == "" {
		return fallback, nil
	}
	return n.Parse(input)
}

// --- Package-level helpers ---

// Parse parses input using the default normalizer.
func Parse(input string) (CalendarDate, error) {
	return Default.Parse(input)
}

// ParseValue parses loosely typed input using the default normalizer.
func ParseValue(v any) (CalendarDate, error) {
	return Default.ParseValue(v)
}

// ToTimestamp localizes d to zone at midnight and returns epoch seconds.
func ToTimestamp(d CalendarDate, zone *time.Location) int64 {
	if zone == nil {
		zone = ReferenceZone
	}
	return d.In(zone).Unix()
}

// Timestamp converts d to epoch seconds in ReferenceZone.
func Timestamp(d CalendarDate) int64 {
	return ToTimestamp(d, ReferenceZone)
}

// EndTimestamp returns the exclusive upper bound covering all of d: midnight
// of the following day in ReferenceZone. Price APIs treat the range end as
// exclusive, so an end date of 2021-08-10 becomes 1628654400.
func EndTimestamp(d CalendarDate) int64 {
	return d.In(ReferenceZone).AddDate(0, 0, 1).Unix()
}

// StringToTimestamp parses input and converts it in one step.
func StringToTimestamp(input string) (int64, error) {
	d, err := Parse(input)
	if err != nil {
		return 0, err
	}
	return Timestamp(d), nil
}

// FormatTimestamp renders an epoch timestamp as a YYYY-MM-DD date in
// ReferenceZone.
func FormatTimestamp(ts int64) string {
	return time.Unix(ts, 0).In(ReferenceZone).Format("2006-01-02")
}
