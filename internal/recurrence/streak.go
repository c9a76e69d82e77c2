package recurrence

import (
	"time"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// StreakEndingAt counts consecutive completed occurrences of rule, walking
// backward one day at a time from date. Days the rule does not occur on are
// transparent: they neither break nor extend the streak. The walk stops at
// the first occurring day that is not marked done, or once it passes the
// rule's anchor day. The caller is expected to bound date to today; a rule
// with no required occurrence before date yields 0.
func (e Evaluator) StreakEndingAt(rule models.RecurrenceRule, completions map[string]models.CompletionRecord, date time.Time) int {
	day := utils.DayStart(date)
	anchor := utils.DayStart(rule.AnchorStart)

	streak := 0
	for !day.Before(anchor) {
		if e.OccursOn(rule, day) {
			rec, ok := completions[utils.DayKey(day)]
			if !ok || !rec.IsDone {
				break
			}
			streak++
		}
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
