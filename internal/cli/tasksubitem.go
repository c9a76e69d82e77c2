package cli

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

type TaskSubitemCmd struct {
	Task    string `arg:"" help:"Task name or id."`
	Subitem string `arg:"" help:"Subitem name or id."`
	Day     string `short:"d" help:"Day to toggle (YYYY-MM-DD, default today)."`
}

func (c *TaskSubitemCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task, err := findTask(ctx.Store, c.Task)
	if err != nil {
		return err
	}

	sub, err := findSubitem(task, c.Subitem)
	if err != nil {
		return err
	}

	date, err := ctx.resolveDay(c.Day)
	if err != nil {
		return err
	}
	day := utils.DayKey(date)

	updated, err := ctx.Sync.ToggleSubitem(task.ID, day, sub.ID)
	if err != nil {
		return err
	}

	rec := updated.Completions[day]
	if rec.HasSubitem(sub.ID) {
		fmt.Printf("Completed subitem %q of %q on %s\n", sub.Name, updated.Name, day)
	} else {
		fmt.Printf("Uncompleted subitem %q of %q on %s\n", sub.Name, updated.Name, day)
	}
	if rec.IsDone {
		fmt.Printf("%q is fully done on %s\n", updated.Name, day)
	}
	return nil
}

func findSubitem(task models.Task, ref string) (models.Subitem, error) {
	for _, sub := range task.Subitems {
		if sub.Name == ref || sub.ID.String() == ref {
			return sub, nil
		}
	}
	return models.Subitem{}, fmt.Errorf("task %q has no subitem %q", task.Name, ref)
}
