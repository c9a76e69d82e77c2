package recurrence

import (
	"time"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// Evaluator decides whether a recurrence rule occurs on a given calendar day.
// Evaluation splits into two stages: period-level gating (which weeks, months,
// or years count at all, via the rule's interval/modulo modifiers) and the
// day-level match (which day inside a qualifying period). The stages mirror
// how a rule reads aloud: "every 2nd week, on Mon/Wed".
type Evaluator struct {
	WeekStart time.Weekday
}

// Default evaluates rules with weeks beginning on Monday.
var Default = Evaluator{WeekStart: time.Monday}

// OccursOn reports whether rule occurs on date. The date is normalized to its
// day start; dates before the anchor's day or after the end date never occur.
func (e Evaluator) OccursOn(rule models.RecurrenceRule, date time.Time) bool {
	day := utils.DayStart(date)
	anchor := utils.DayStart(rule.AnchorStart)

	if day.Before(anchor) {
		return false
	}
	if rule.EndDate != nil && day.After(utils.DayStart(*rule.EndDate)) {
		return false
	}

	return e.periodGate(rule, anchor, day) && dayMatch(rule, anchor, day)
}

// periodGate applies the coarse interval/modulo filters for the rule's kind.
// A gate whose period count would be negative (anchor normalization landing
// after the date's period start) is treated as ungated.
func (e Evaluator) periodGate(rule models.RecurrenceRule, anchor, day time.Time) bool {
	switch rule.Kind {
	case models.RuleDaily:
		// The caller already rejected days before the anchor, so the day
		// count is never negative here.
		if rule.DayInterval > 1 && DaysBetween(anchor, day)%rule.DayInterval != 0 {
			return false
		}
		return true

	case models.RuleWeekly:
		weeks := WeeksBetween(anchor, day, e.WeekStart)
		if weeks < 0 {
			return true
		}
		if rule.WeekModuloK > 1 && weeks%rule.WeekModuloK != rule.WeekModuloOffset {
			return false
		}
		if rule.WeekInterval > 1 && weeks%rule.WeekInterval != 0 {
			return false
		}
		return true

	case models.RuleMonthlyDate, models.RuleMonthlyOrdinal:
		months := MonthsBetween(StartOfMonth(anchor), StartOfMonth(day))
		if months >= 0 && rule.MonthInterval > 1 && months%rule.MonthInterval != 0 {
			return false
		}
		return rule.HasMonth(day.Month())

	case models.RuleYearly:
		years := YearsBetween(StartOfYear(anchor), StartOfYear(day))
		if years < 0 {
			return true
		}
		if rule.YearModuloK > 1 && years%rule.YearModuloK != rule.YearModuloOffset {
			return false
		}
		if rule.YearInterval > 1 && years%rule.YearInterval != 0 {
			return false
		}
		return true
	}
	return false
}

// dayMatch applies the fine-grained day selector for the rule's kind.
func dayMatch(rule models.RecurrenceRule, anchor, day time.Time) bool {
	switch rule.Kind {
	case models.RuleDaily:
		return true
	case models.RuleWeekly:
		return rule.HasWeekday(day.Weekday())
	case models.RuleMonthlyDate:
		return rule.HasMonthDay(day.Day())
	case models.RuleMonthlyOrdinal:
		for _, p := range rule.OrdinalPatterns {
			if matchesOrdinal(day, p) {
				return true
			}
		}
		return false
	case models.RuleYearly:
		return day.Month() == anchor.Month() && day.Day() == anchor.Day()
	}
	return false
}

// matchesOrdinal checks if day is the pattern's N-th occurrence of its weekday
// in the month. occurrence -1 means the last occurrence: the day whose
// same-weekday successor falls in the next month.
func matchesOrdinal(day time.Time, p models.OrdinalPattern) bool {
	if day.Weekday() != p.Weekday {
		return false
	}

	if p.Occurrence == -1 {
		nextWeek := day.AddDate(0, 0, 7)
		return nextWeek.Month() != day.Month()
	}

	if p.Occurrence < 1 || p.Occurrence > 4 {
		return false
	}
	return (day.Day()-1)/7+1 == p.Occurrence
}
