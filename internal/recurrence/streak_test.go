package recurrence

import (
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

func done(days ...string) map[string]models.CompletionRecord {
	completions := make(map[string]models.CompletionRecord)
	for _, d := range days {
		completions[d] = models.CompletionRecord{Day: d, IsDone: true}
	}
	return completions
}

func TestStreakEndingAt_SkipsNonOccurringDays(t *testing.T) {
	// Mon/Wed rule anchored Monday Jan 1 2024. Jan 3, 8, and 10 are done;
	// the anchor Monday itself is not. Tue/Thu/weekend days are transparent.
	rule := models.RecurrenceRule{
		Kind:        models.RuleWeekly,
		AnchorStart: mustDay(t, "2024-01-01"),
		Weekdays:    []time.Weekday{time.Monday, time.Wednesday},
	}
	completions := done("2024-01-03", "2024-01-08", "2024-01-10")

	// Thursday Jan 11 does not occur; the walk passes through it.
	if got := Default.StreakEndingAt(rule, completions, mustDay(t, "2024-01-11")); got != 3 {
		t.Errorf("StreakEndingAt = %d, want 3", got)
	}
}

func TestStreakEndingAt_BrokenByMissedOccurrence(t *testing.T) {
	rule := models.RecurrenceRule{
		Kind:        models.RuleWeekly,
		AnchorStart: mustDay(t, "2024-01-01"),
		Weekdays:    []time.Weekday{time.Monday, time.Wednesday},
	}
	// Monday Jan 8 was missed; only Wednesday Jan 10 counts.
	completions := done("2024-01-01", "2024-01-03", "2024-01-10")

	if got := Default.StreakEndingAt(rule, completions, mustDay(t, "2024-01-10")); got != 1 {
		t.Errorf("StreakEndingAt = %d, want 1", got)
	}
}

func TestStreakEndingAt_ZeroWhenLatestOccurrenceIncomplete(t *testing.T) {
	rule := models.RecurrenceRule{
		Kind:        models.RuleDaily,
		AnchorStart: mustDay(t, "2024-01-01"),
	}
	completions := done("2024-01-01", "2024-01-02")

	// Jan 3 occurs but is not done, so no streak ends there.
	if got := Default.StreakEndingAt(rule, completions, mustDay(t, "2024-01-03")); got != 0 {
		t.Errorf("StreakEndingAt = %d, want 0", got)
	}
}

func TestStreakEndingAt_DailyInterval(t *testing.T) {
	// Every 2nd day: Jan 1, 3, 5, 7 occur. Jan 5 and 7 done, Jan 3 missed.
	rule := models.RecurrenceRule{
		Kind:        models.RuleDaily,
		AnchorStart: mustDay(t, "2024-01-01"),
		DayInterval: 2,
	}
	completions := done("2024-01-05", "2024-01-07")

	// Jan 8 does not occur (odd day index); walk skips it transparently.
	if got := Default.StreakEndingAt(rule, completions, mustDay(t, "2024-01-08")); got != 2 {
		t.Errorf("StreakEndingAt = %d, want 2", got)
	}
}

func TestStreakEndingAt_StopsAtAnchor(t *testing.T) {
	rule := models.RecurrenceRule{
		Kind:        models.RuleDaily,
		AnchorStart: mustDay(t, "2024-01-05"),
	}
	completions := done("2024-01-05", "2024-01-06", "2024-01-07")

	// Days before the anchor are excluded; streak is bounded at 3 even though
	// earlier completions would exist.
	completions["2024-01-04"] = models.CompletionRecord{Day: "2024-01-04", IsDone: true}
	if got := Default.StreakEndingAt(rule, completions, mustDay(t, "2024-01-07")); got != 3 {
		t.Errorf("StreakEndingAt = %d, want 3", got)
	}
}

func TestStreakEndingAt_NoOccurrencesYieldsZero(t *testing.T) {
	// Weekly rule whose first occurrence is after the reference date.
	rule := models.RecurrenceRule{
		Kind:        models.RuleWeekly,
		AnchorStart: mustDay(t, "2024-01-01"),
		Weekdays:    []time.Weekday{time.Friday},
	}

	if got := Default.StreakEndingAt(rule, nil, mustDay(t, "2024-01-03")); got != 0 {
		t.Errorf("StreakEndingAt = %d, want 0", got)
	}
}
