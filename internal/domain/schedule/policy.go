// Package schedule implements the pure calendar-date logic behind recurring
// series: occurrence validity, calendar advance and bounded forward search.
// It performs no I/O; both the generation engine and the effective view build
// on this single implementation so materialized history and display
// projections can never disagree.
package schedule

import (
	"github.com/recurrent-ledger/backend/internal/domain/entity"
	"github.com/recurrent-ledger/backend/internal/domain/valueobject"
)

// MaxSearchIterations bounds FindNextValidOccurrence. Clamped monthly and
// yearly series can otherwise search indefinitely for a day that never
// recurs under corner-case month lengths; hitting the cap is a silent
// "no further occurrence", not an error.
const MaxSearchIterations = 100

// Policy decides which calendar dates are legitimate occurrences of a
// recurring series and how to advance between them.
type Policy struct{}

// NewPolicy creates an occurrence policy.
func NewPolicy() Policy {
	return Policy{}
}

// IsValidOccurrence reports whether the given date is a legitimate occurrence
// of the series. Dates outside [start_date, end_date] are never valid.
//
//   - daily: every date within the window.
//   - weekly: same weekday as start_date, i.e. a whole number of 7-day
//     strides from it.
//   - monthly: same day-of-month as start_date, clamped to short months
//     (start day 31 fires on Feb 28/29 and Apr 30).
//   - yearly: same month and day as start_date; a Feb-29 start fires on
//     Feb 29 in leap years and Feb 28 otherwise.
func (p Policy) IsValidOccurrence(d valueobject.Date, s *entity.RecurringSeries) bool {
	if !s.WindowContains(d) {
		return false
	}

	switch s.Frequency {
	case entity.FrequencyDaily:
		return true
	case entity.FrequencyWeekly:
		return d.DaysSince(s.StartDate)%7 == 0
	case entity.FrequencyMonthly:
		return d.Day == monthlyDay(s.StartDate.Day, d.Year, d.Month)
	case entity.FrequencyYearly:
		m, day := yearlyMonthDay(s.StartDate, d.Year)
		return d.Month == m && d.Day == day
	default:
		return false
	}
}

// NextOccurrence advances a date by one recurrence step: +1 day, +7 days,
// +1 calendar month or +1 calendar year. Month and year advances use calendar
// rollover with day clamping, never fixed day counts.
func (p Policy) NextOccurrence(d valueobject.Date, f entity.Frequency) valueobject.Date {
	switch f {
	case entity.FrequencyDaily:
		return d.AddDays(1)
	case entity.FrequencyWeekly:
		return d.AddDays(7)
	case entity.FrequencyMonthly:
		year, month := d.Year, d.Month+1
		if month > 12 {
			year, month = year+1, 1
		}
		return valueobject.Date{Year: year, Month: month, Day: clampDay(d.Day, year, month)}
	case entity.FrequencyYearly:
		year := d.Year + 1
		return valueobject.Date{Year: year, Month: d.Month, Day: clampDay(d.Day, year, d.Month)}
	default:
		return d
	}
}

// FindNextValidOccurrence returns the earliest valid occurrence of the series
// on or after the given date, searching forward one recurrence step at a time.
// The search gives up when the candidate leaves the series window, fails to
// advance, or MaxSearchIterations is exhausted; all three cases report
// (zero, false) rather than an error.
func (p Policy) FindNextValidOccurrence(from valueobject.Date, s *entity.RecurringSeries) (valueobject.Date, bool) {
	cur := from
	if cur.Before(s.StartDate) {
		cur = s.StartDate
	}

	for i := 0; i < MaxSearchIterations; i++ {
		if s.EndDate != nil && cur.After(*s.EndDate) {
			return valueobject.Date{}, false
		}
		if p.IsValidOccurrence(cur, s) {
			return cur, true
		}

		next := p.advanceCandidate(cur, s)
		if !next.After(cur) {
			// Stuck guard: the candidate failed to move forward.
			return valueobject.Date{}, false
		}
		cur = next
	}

	return valueobject.Date{}, false
}

// advanceCandidate moves an invalid candidate date toward the next possible
// occurrence. For monthly and yearly series the candidate is re-anchored to
// the series' valid day in each period, so a cursor sitting on a clamped date
// (e.g. Feb 29 of a day-31 series) climbs back to the true day instead of
// drifting downward forever.
func (p Policy) advanceCandidate(cur valueobject.Date, s *entity.RecurringSeries) valueobject.Date {
	switch s.Frequency {
	case entity.FrequencyDaily:
		return cur.AddDays(1)

	case entity.FrequencyWeekly:
		if rem := cur.DaysSince(s.StartDate) % 7; rem != 0 {
			return cur.AddDays(7 - rem)
		}
		return cur.AddDays(7)

	case entity.FrequencyMonthly:
		day := monthlyDay(s.StartDate.Day, cur.Year, cur.Month)
		if cur.Day < day {
			return valueobject.Date{Year: cur.Year, Month: cur.Month, Day: day}
		}
		year, month := cur.Year, cur.Month+1
		if month > 12 {
			year, month = year+1, 1
		}
		return valueobject.Date{Year: year, Month: month, Day: monthlyDay(s.StartDate.Day, year, month)}

	case entity.FrequencyYearly:
		month, day := yearlyMonthDay(s.StartDate, cur.Year)
		candidate := valueobject.Date{Year: cur.Year, Month: month, Day: day}
		if candidate.After(cur) {
			return candidate
		}
		month, day = yearlyMonthDay(s.StartDate, cur.Year+1)
		return valueobject.Date{Year: cur.Year + 1, Month: month, Day: day}

	default:
		return cur
	}
}

// monthlyDay returns the valid day-of-month for a monthly series in the given
// month: the start day, clamped to the month length when the start day
// exceeds 28.
func monthlyDay(startDay, year, month int) int {
	if startDay > 28 {
		return clampDay(startDay, year, month)
	}
	return startDay
}

// yearlyMonthDay returns the valid (month, day) for a yearly series in the
// given year. A Feb-29 start falls back to Feb 28 in non-leap years.
func yearlyMonthDay(start valueobject.Date, year int) (int, int) {
	if start.Month == 2 && start.Day == 29 && !valueobject.IsLeapYear(year) {
		return 2, 28
	}
	return start.Month, start.Day
}

// clampDay limits a day-of-month to the length of the given month.
func clampDay(day, year, month int) int {
	last := (valueobject.Date{Year: year, Month: month, Day: 1}).DaysInMonth()
	if day > last {
		return last
	}
	return day
}
