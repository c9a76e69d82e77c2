package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/sync"
	"github.com/julianstephens/cadence/internal/utils"
)

type Context struct {
	Store storage.Provider
	Sync  *sync.Orchestrator
}

// evaluator builds a rule evaluator honoring the configured week start.
func (ctx *Context) evaluator() (recurrence.Evaluator, error) {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return recurrence.Default, fmt.Errorf("failed to read settings: %w", err)
	}
	ws, err := utils.ParseWeekday(settings.WeekStart)
	if err != nil {
		return recurrence.Default, fmt.Errorf("invalid week start in settings: %w", err)
	}
	return recurrence.Evaluator{WeekStart: ws}, nil
}

// resolveDay parses a day argument, defaulting to today in the configured
// timezone.
func (ctx *Context) resolveDay(day string) (time.Time, error) {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read settings: %w", err)
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone in settings: %w", err)
	}
	if day == "" || day == "today" {
		return utils.DayStart(time.Now().In(loc)), nil
	}
	return utils.ParseDay(day, loc)
}

// findTask resolves a task reference: a full UUID, a unique ID prefix, or an
// exact name.
func findTask(store storage.Provider, ref string) (models.Task, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return store.GetTask(id)
	}

	tasks, err := store.GetAllTasks(false)
	if err != nil {
		return models.Task{}, err
	}

	var matches []models.Task
	for _, t := range tasks {
		if t.Name == ref || strings.HasPrefix(t.ID.String(), ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("no task matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Task{}, fmt.Errorf("%q is ambiguous (%d tasks match)", ref, len(matches))
	}
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	var weekdays []time.Weekday
	for _, part := range strings.Split(s, ",") {
		wd, err := utils.ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		weekdays = append(weekdays, wd)
	}
	return weekdays, nil
}

func formatRule(rule *models.RecurrenceRule) string {
	if rule == nil {
		return "none"
	}
	switch rule.Kind {
	case models.RuleDaily:
		if rule.DayInterval > 1 {
			return fmt.Sprintf("every %d days", rule.DayInterval)
		}
		return "daily"
	case models.RuleWeekly:
		var days []string
		for _, wd := range rule.Weekdays {
			days = append(days, wd.String()[:3])
		}
		desc := fmt.Sprintf("weekly on %s", strings.Join(days, ","))
		if rule.WeekInterval > 1 {
			desc += fmt.Sprintf(" every %d weeks", rule.WeekInterval)
		}
		if rule.WeekModuloK > 1 {
			desc += fmt.Sprintf(" (week %d of %d)", rule.WeekModuloOffset+1, rule.WeekModuloK)
		}
		return desc
	case models.RuleMonthlyDate:
		return fmt.Sprintf("monthly on days %v", rule.MonthDays)
	case models.RuleMonthlyOrdinal:
		var pats []string
		for _, p := range rule.OrdinalPatterns {
			if p.Occurrence == -1 {
				pats = append(pats, fmt.Sprintf("last %s", p.Weekday))
			} else {
				pats = append(pats, fmt.Sprintf("%d%s %s", p.Occurrence, ordinalSuffix(p.Occurrence), p.Weekday))
			}
		}
		return fmt.Sprintf("monthly on the %s", strings.Join(pats, ", "))
	case models.RuleYearly:
		return "yearly"
	default:
		return "unknown"
	}
}

func ordinalSuffix(n int) string {
	switch n {
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
