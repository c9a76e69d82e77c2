package models

import (
	"fmt"
	"time"
)

type RuleKind string

const (
	RuleDaily          RuleKind = "daily"
	RuleWeekly         RuleKind = "weekly"
	RuleMonthlyDate    RuleKind = "monthly_date"
	RuleMonthlyOrdinal RuleKind = "monthly_ordinal"
	RuleYearly         RuleKind = "yearly"
)

// OrdinalPattern selects the N-th occurrence of a weekday within a month.
// Occurrence is 1-4 counting from the start of the month, or -1 for the last
// occurrence.
type OrdinalPattern struct {
	Occurrence int          `json:"occurrence"`
	Weekday    time.Weekday `json:"weekday"`
}

// RecurrenceRule describes which calendar days a task is due on. The base kind
// picks candidate days (weekday set, month-day set, ordinal patterns, or the
// anchor's anniversary); the optional gating modifiers filter whole weeks,
// months, or years out of the candidate set. Modifiers only ever narrow the
// set of matching days.
type RecurrenceRule struct {
	Kind        RuleKind   `json:"kind"`
	AnchorStart time.Time  `json:"anchor_start"`
	EndDate     *time.Time `json:"end_date,omitempty"` // inclusive

	// Day-level selectors, by kind.
	Weekdays        []time.Weekday   `json:"weekdays,omitempty"`         // weekly
	MonthDays       []int            `json:"month_days,omitempty"`       // monthly_date, 1-31
	OrdinalPatterns []OrdinalPattern `json:"ordinal_patterns,omitempty"` // monthly_ordinal

	// Gating modifiers. Zero values mean "not set".
	DayInterval      int          `json:"day_interval,omitempty"` // daily only
	WeekInterval     int          `json:"week_interval,omitempty"`
	WeekModuloK      int          `json:"week_modulo_k,omitempty"`
	WeekModuloOffset int          `json:"week_modulo_offset,omitempty"`
	MonthInterval    int          `json:"month_interval,omitempty"`
	SelectedMonths   []time.Month `json:"selected_months,omitempty"` // monthly kinds, 1-12
	YearInterval     int          `json:"year_interval,omitempty"`
	YearModuloK      int          `json:"year_modulo_k,omitempty"`
	YearModuloOffset int          `json:"year_modulo_offset,omitempty"`
}

func (r *RecurrenceRule) Validate() error {
	switch r.Kind {
	case RuleDaily, RuleYearly:
		// No day-level selector required.
	case RuleWeekly:
		if len(r.Weekdays) == 0 {
			return fmt.Errorf("weekdays must be specified for weekly recurrence")
		}
	case RuleMonthlyDate:
		if len(r.MonthDays) == 0 {
			return fmt.Errorf("month days must be specified for monthly_date recurrence")
		}
		for _, d := range r.MonthDays {
			if d < 1 || d > 31 {
				return fmt.Errorf("month day %d out of range (1-31)", d)
			}
		}
	case RuleMonthlyOrdinal:
		if len(r.OrdinalPatterns) == 0 {
			return fmt.Errorf("ordinal patterns must be specified for monthly_ordinal recurrence")
		}
		for _, p := range r.OrdinalPatterns {
			if p.Occurrence != -1 && (p.Occurrence < 1 || p.Occurrence > 4) {
				return fmt.Errorf("ordinal occurrence must be -1 (last) or 1-4, got %d", p.Occurrence)
			}
		}
	default:
		return fmt.Errorf("unknown recurrence kind %q", r.Kind)
	}

	if r.AnchorStart.IsZero() {
		return fmt.Errorf("anchor start must be set")
	}
	if r.EndDate != nil && r.EndDate.Before(r.AnchorStart) {
		return fmt.Errorf("end date %s precedes anchor start %s",
			r.EndDate.Format("2006-01-02"), r.AnchorStart.Format("2006-01-02"))
	}
	for _, m := range r.SelectedMonths {
		if m < time.January || m > time.December {
			return fmt.Errorf("selected month %d out of range (1-12)", m)
		}
	}
	if r.WeekModuloK > 1 && (r.WeekModuloOffset < 0 || r.WeekModuloOffset >= r.WeekModuloK) {
		return fmt.Errorf("week modulo offset %d out of range for modulus %d", r.WeekModuloOffset, r.WeekModuloK)
	}
	if r.YearModuloK > 1 && (r.YearModuloOffset < 0 || r.YearModuloOffset >= r.YearModuloK) {
		return fmt.Errorf("year modulo offset %d out of range for modulus %d", r.YearModuloOffset, r.YearModuloK)
	}
	return nil
}

// HasWeekday reports whether the rule's weekday set contains wd.
func (r *RecurrenceRule) HasWeekday(wd time.Weekday) bool {
	for _, w := range r.Weekdays {
		if w == wd {
			return true
		}
	}
	return false
}

// HasMonthDay reports whether the rule's month-day set contains day.
func (r *RecurrenceRule) HasMonthDay(day int) bool {
	for _, d := range r.MonthDays {
		if d == day {
			return true
		}
	}
	return false
}

// HasMonth reports whether m is in the selected-months set. An empty set
// selects every month.
func (r *RecurrenceRule) HasMonth(m time.Month) bool {
	if len(r.SelectedMonths) == 0 {
		return true
	}
	for _, sm := range r.SelectedMonths {
		if sm == m {
			return true
		}
	}
	return false
}
