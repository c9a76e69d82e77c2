package cli

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/utils"
)

type TaskDoneCmd struct {
	Task string `arg:"" help:"Task name or id."`
	Day  string `short:"d" help:"Day to toggle (YYYY-MM-DD, default today)."`
}

func (c *TaskDoneCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task, err := findTask(ctx.Store, c.Task)
	if err != nil {
		return err
	}
	date, err := ctx.resolveDay(c.Day)
	if err != nil {
		return err
	}
	day := utils.DayKey(date)

	updated, err := ctx.Sync.ToggleDone(task.ID, day)
	if err != nil {
		return err
	}

	if updated.Completions[day].IsDone {
		fmt.Printf("Marked %q done on %s\n", updated.Name, day)
	} else {
		fmt.Printf("Marked %q not done on %s\n", updated.Name, day)
	}
	return nil
}
