package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

type TaskAddCmd struct {
	Name     string   `arg:"" help:"Task name."`
	Notes    string   `short:"n" help:"Free-form notes."`
	Tags     []string `short:"t" help:"Tags (repeatable)."`
	Subitems []string `short:"s" help:"Subitem names (repeatable)."`
	Points   int      `short:"p" help:"Points granted on completion." default:"0"`

	Recurrence string `short:"r" help:"Recurrence kind (daily|weekly|monthly|ordinal|yearly)."`
	Anchor     string `help:"Anchor start day (YYYY-MM-DD, default today)."`
	End        string `help:"Last day the rule applies (YYYY-MM-DD)."`
	Weekdays   string `short:"w" help:"Comma-separated weekdays for weekly recurrence."`
	MonthDays  []int  `help:"Days of month (1-31) for monthly recurrence."`
	Ordinal    string `help:"Ordinal pattern for ordinal recurrence, e.g. 'last friday' or '2nd tuesday'."`
	Interval   int    `short:"i" help:"Gating interval in the rule's base period." default:"0"`
}

func (c *TaskAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task := models.Task{
		ID:         uuid.New(),
		Name:       c.Name,
		Notes:      c.Notes,
		Tags:       c.Tags,
		PointValue: c.Points,
	}
	for _, name := range c.Subitems {
		task.Subitems = append(task.Subitems, models.Subitem{ID: uuid.New(), Name: name})
	}

	if c.Recurrence != "" {
		rule, err := c.buildRule(ctx)
		if err != nil {
			return err
		}
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("invalid recurrence rule: %w", err)
		}
		task.Rule = rule
	}

	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := task.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AddTask(task); err != nil {
		return err
	}

	fmt.Printf("Added task %q (%s)\n", task.Name, task.ID)
	if task.Rule != nil {
		fmt.Printf("  recurs: %s\n", formatRule(task.Rule))
	}
	return nil
}

func (c *TaskAddCmd) buildRule(ctx *Context) (*models.RecurrenceRule, error) {
	anchor, err := ctx.resolveDay(c.Anchor)
	if err != nil {
		return nil, fmt.Errorf("invalid anchor: %w", err)
	}

	rule := &models.RecurrenceRule{AnchorStart: anchor}

	if c.End != "" {
		end, err := ctx.resolveDay(c.End)
		if err != nil {
			return nil, fmt.Errorf("invalid end day: %w", err)
		}
		rule.EndDate = &end
	}

	switch c.Recurrence {
	case "daily":
		rule.Kind = models.RuleDaily
		rule.DayInterval = c.Interval
	case "weekly":
		rule.Kind = models.RuleWeekly
		if c.Weekdays == "" {
			return nil, fmt.Errorf("weekly recurrence requires --weekdays")
		}
		wds, err := parseWeekdays(c.Weekdays)
		if err != nil {
			return nil, err
		}
		rule.Weekdays = wds
		rule.WeekInterval = c.Interval
	case "monthly":
		rule.Kind = models.RuleMonthlyDate
		if len(c.MonthDays) == 0 {
			return nil, fmt.Errorf("monthly recurrence requires --month-days")
		}
		rule.MonthDays = c.MonthDays
		rule.MonthInterval = c.Interval
	case "ordinal":
		rule.Kind = models.RuleMonthlyOrdinal
		if c.Ordinal == "" {
			return nil, fmt.Errorf("ordinal recurrence requires --ordinal")
		}
		pat, err := parseOrdinal(c.Ordinal)
		if err != nil {
			return nil, err
		}
		rule.OrdinalPatterns = []models.OrdinalPattern{pat}
		rule.MonthInterval = c.Interval
	case "yearly":
		rule.Kind = models.RuleYearly
		rule.YearInterval = c.Interval
	default:
		return nil, fmt.Errorf("invalid recurrence kind: %s", c.Recurrence)
	}

	return rule, nil
}

// parseOrdinal parses patterns like "last friday", "1st monday", "3rd tuesday".
func parseOrdinal(s string) (models.OrdinalPattern, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) != 2 {
		return models.OrdinalPattern{}, fmt.Errorf("invalid ordinal pattern %q (expected e.g. 'last friday')", s)
	}

	var occurrence int
	switch fields[0] {
	case "last":
		occurrence = -1
	case "1st", "first":
		occurrence = 1
	case "2nd", "second":
		occurrence = 2
	case "3rd", "third":
		occurrence = 3
	case "4th", "fourth":
		occurrence = 4
	case "5th", "fifth":
		occurrence = 5
	default:
		return models.OrdinalPattern{}, fmt.Errorf("invalid ordinal occurrence %q", fields[0])
	}

	wd, err := utils.ParseWeekday(fields[1])
	if err != nil {
		return models.OrdinalPattern{}, err
	}

	return models.OrdinalPattern{Occurrence: occurrence, Weekday: wd}, nil
}
