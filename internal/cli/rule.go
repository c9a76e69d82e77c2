package cli

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/utils"
)

type RuleCheckCmd struct {
	Task string `arg:"" help:"Task name or id."`
	Day  string `arg:"" optional:"" help:"Day to check (YYYY-MM-DD, default today)."`
}

func (c *RuleCheckCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task, err := findTask(ctx.Store, c.Task)
	if err != nil {
		return err
	}
	if task.Rule == nil {
		fmt.Printf("%q has no recurrence rule\n", task.Name)
		return nil
	}

	date, err := ctx.resolveDay(c.Day)
	if err != nil {
		return err
	}
	eval, err := ctx.evaluator()
	if err != nil {
		return err
	}

	if eval.OccursOn(*task.Rule, date) {
		fmt.Printf("%q occurs on %s\n", task.Name, utils.DayKey(date))
	} else {
		fmt.Printf("%q does not occur on %s\n", task.Name, utils.DayKey(date))
	}
	return nil
}

type RuleNextCmd struct {
	Task  string `arg:"" help:"Task name or id."`
	Count int    `short:"n" help:"How many occurrences to show." default:"5"`
	From  string `short:"d" help:"Day to search from (YYYY-MM-DD, default today)."`
}

func (c *RuleNextCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task, err := findTask(ctx.Store, c.Task)
	if err != nil {
		return err
	}
	if task.Rule == nil {
		return fmt.Errorf("task %q has no recurrence rule", task.Name)
	}

	date, err := ctx.resolveDay(c.From)
	if err != nil {
		return err
	}
	eval, err := ctx.evaluator()
	if err != nil {
		return err
	}

	// Bounded scan: an end-dated or heavily gated rule may have fewer
	// occurrences than asked for.
	const horizonDays = 5 * 366
	found := 0
	for i := 0; i < horizonDays && found < c.Count; i++ {
		day := date.AddDate(0, 0, i)
		if eval.OccursOn(*task.Rule, day) {
			fmt.Println(utils.DayKey(day))
			found++
		}
	}
	if found == 0 {
		fmt.Printf("No occurrences of %q within the next five years\n", task.Name)
	}
	return nil
}
