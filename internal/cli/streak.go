package cli

import "fmt"

type StreakCmd struct {
	Task string `arg:"" help:"Task name or id."`
	Day  string `short:"d" help:"Day the streak ends at (YYYY-MM-DD, default today)."`
}

func (c *StreakCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task, err := findTask(ctx.Store, c.Task)
	if err != nil {
		return err
	}
	if task.Rule == nil {
		return fmt.Errorf("task %q has no recurrence rule, streaks are undefined", task.Name)
	}

	date, err := ctx.resolveDay(c.Day)
	if err != nil {
		return err
	}
	eval, err := ctx.evaluator()
	if err != nil {
		return err
	}

	streak := eval.StreakEndingAt(*task.Rule, task.Completions, date)
	switch streak {
	case 1:
		fmt.Printf("%q: 1 day streak\n", task.Name)
	default:
		fmt.Printf("%q: %d day streak\n", task.Name, streak)
	}
	return nil
}
