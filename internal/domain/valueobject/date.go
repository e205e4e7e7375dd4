// Package valueobject defines immutable value types shared across the domain layer.
package valueobject

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a timezone-independent calendar date. All recurrence arithmetic in
// the system operates on this (year, month, day) triplet directly; time.Time
// is only used internally for calendar normalization and never carries a
// location other than UTC. This keeps occurrence math immune to the
// off-by-one-day shifts that local-timezone conversions introduce.
type Date struct {
	Year  int
	Month int
	Day   int
}

// NewDate creates a Date from a (year, month, day) triplet.
// The triplet is normalized through the calendar, so NewDate(2024, 2, 30)
// yields 2024-03-01.
func NewDate(year, month, day int) Date {
	return FromTime(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses a strict YYYY-MM-DD string into a Date.
// Anything beyond a bare calendar date (time component, offset, zone) is rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid calendar date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// MustParseDate parses a YYYY-MM-DD string and panics on failure.
// Intended for constants and tests.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime extracts the calendar date from a time.Time, discarding clock and
// location. Used at persistence and transport boundaries only.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// ToTime converts the date to a UTC midnight instant for storage in a SQL
// date column. Never feed the result back into occurrence arithmetic.
func (d Date) ToTime() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(d.Month - other.Month)
	default:
		return sign(d.Day - other.Day)
	}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.Compare(other) > 0 }

// Equal reports whether d and other are the same calendar date.
func (d Date) Equal(other Date) bool { return d.Compare(other) == 0 }

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return FromTime(d.ToTime().AddDate(0, 0, n))
}

// DaysSince returns the number of days from other to d. Positive when d is
// later than other.
func (d Date) DaysSince(other Date) int {
	return int(d.ToTime().Sub(other.ToTime()).Hours() / 24)
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.ToTime().Weekday()
}

// DaysInMonth returns the length of the month containing d.
func (d Date) DaysInMonth() int {
	return daysInMonth(d.Year, d.Month)
}

// MarshalJSON encodes the date as a YYYY-MM-DD JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD JSON string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid calendar date %s: expected JSON string", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer so a Date can be bound to a SQL date column.
func (d Date) Value() (driver.Value, error) {
	return d.ToTime(), nil
}

// Scan implements sql.Scanner for reading SQL date columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		parsed, err := ParseDate(v[:min(len(v), len(DateLayout))])
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// daysInMonth returns the number of days in the given month of the given year.
func daysInMonth(year, month int) int {
	// Day 0 of the next month normalizes to the last day of this month.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsLeapYear reports whether the given year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
