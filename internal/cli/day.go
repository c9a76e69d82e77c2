package cli

import (
	"fmt"
	"sort"

	"github.com/julianstephens/cadence/internal/utils"
)

type DayCmd struct {
	Day string `arg:"" optional:"" help:"Day to show (YYYY-MM-DD, default today)."`
}

func (c *DayCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := ctx.resolveDay(c.Day)
	if err != nil {
		return err
	}
	eval, err := ctx.evaluator()
	if err != nil {
		return err
	}

	tasks, err := ctx.Store.GetAllTasks(false)
	if err != nil {
		return err
	}

	day := utils.DayKey(date)
	fmt.Printf("Due on %s:\n", day)

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })

	due := 0
	for _, t := range tasks {
		if t.Rule == nil || !eval.OccursOn(*t.Rule, date) {
			continue
		}
		due++
		mark := " "
		rec, ok := t.Completions[day]
		if ok && rec.IsDone {
			mark = "x"
		}
		line := fmt.Sprintf("  [%s] %-30s", mark, t.Name)
		if len(t.Subitems) > 0 {
			done := 0
			if ok {
				done = len(rec.CompletedSubitems)
			}
			line += fmt.Sprintf(" (%d/%d subitems)", done, len(t.Subitems))
		}
		fmt.Println(line)
	}
	if due == 0 {
		fmt.Println("  nothing due")
	}

	entries, err := ctx.Store.GetEntriesForDay(day)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		fmt.Printf("Journal: %d entries\n", len(entries))
	}
	return nil
}
