package recurrence

import (
	"math"
	"time"

	"github.com/julianstephens/cadence/internal/utils"
)

// Calendar gating utilities: pure helpers that normalize dates to the start
// of their calendar period and count whole periods between two normalized
// period starts. Weeks begin on a configurable weekday; months and years use
// the proleptic Gregorian calendar of the standard library.

// StartOfWeek normalizes a date to midnight of the first day of its week,
// where weeks begin on weekStart.
func StartOfWeek(date time.Time, weekStart time.Weekday) time.Time {
	day := utils.DayStart(date)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth normalizes a date to midnight of the first day of its month.
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// StartOfYear normalizes a date to midnight of January 1st of its year.
func StartOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, date.Location())
}

// DaysBetween counts whole days from one day start to another. Date-based
// arithmetic with explicit rounding avoids off-by-one results on DST
// transitions.
func DaysBetween(from, to time.Time) int {
	return int(math.Round(utils.DayStart(to).Sub(utils.DayStart(from)).Hours() / 24))
}

// WeeksBetween counts whole weeks between the week starts of two dates.
func WeeksBetween(from, to time.Time, weekStart time.Weekday) int {
	return DaysBetween(StartOfWeek(from, weekStart), StartOfWeek(to, weekStart)) / 7
}

// MonthsBetween counts whole months between the month starts of two dates.
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// YearsBetween counts whole years between the year starts of two dates.
func YearsBetween(from, to time.Time) int {
	return to.Year() - from.Year()
}
