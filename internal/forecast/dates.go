// Package forecast generates future occurrences for recurring expense
// templates. All date math is done at midnight UTC so comparisons are stable
// across timezones.
package forecast

import (
	"fmt"
	"time"
)

// MidnightUTC truncates t to midnight UTC.
func MidnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextMonthly returns the occurrence in the calendar month after base, on
// dayOfMonth clamped to the length of that month. Anchor day 31 lands on
// Feb 28 (29 in leap years).
func NextMonthly(base time.Time, dayOfMonth int) time.Time {
	base = MidnightUTC(base)
	year, month := base.Year(), base.Month()+1
	if month > time.December {
		year++
		month = time.January
	}
	day := dayOfMonth
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NextWeekly returns the next date strictly after base whose weekday equals
// dayOfWeek (0 = Sunday). A base already on that weekday advances a full week.
func NextWeekly(base time.Time, dayOfWeek int) time.Time {
	base = MidnightUTC(base)
	daysAhead := dayOfWeek - int(base.Weekday())
	if daysAhead <= 0 {
		daysAhead += 7
	}
	return base.AddDate(0, 0, daysAhead)
}

// FormatCadence renders a template's cadence for display, e.g.
// "Monthly on the 21st" or "Weekly on Friday".
func FormatCadence(frequency string, dayOfMonth, dayOfWeek *int) string {
	if frequency == "monthly" && dayOfMonth != nil {
		return fmt.Sprintf("Monthly on the %d%s", *dayOfMonth, ordinalSuffix(*dayOfMonth))
	}
	if frequency == "weekly" && dayOfWeek != nil && *dayOfWeek >= 0 && *dayOfWeek <= 6 {
		days := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
		return "Weekly on " + days[*dayOfWeek]
	}
	return frequency
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
