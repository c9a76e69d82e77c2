package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/utils"
)

type TaskEffortCmd struct {
	Task   string        `arg:"" help:"Task name or id."`
	Effort time.Duration `arg:"" help:"Measured focus time, e.g. 25m or 1h30m."`
	Day    string        `short:"d" help:"Day to record against (YYYY-MM-DD, default today)."`
}

func (c *TaskEffortCmd) Run(ctx *Context) error {
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

	updated, err := ctx.Sync.RecordEffort(task.ID, day, c.Effort)
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %s of effort on %q for %s\n", c.Effort, updated.Name, day)
	return nil
}

type TaskRateCmd struct {
	Task       string `arg:"" help:"Task name or id."`
	Difficulty int    `arg:"" help:"Difficulty rating (1-10)."`
	Quality    int    `arg:"" help:"Quality rating (1-10)."`
	Day        string `short:"d" help:"Day to record against (YYYY-MM-DD, default today)."`
}

func (c *TaskRateCmd) Run(ctx *Context) error {
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

	updated, err := ctx.Sync.RecordRatings(task.ID, day, c.Difficulty, c.Quality)
	if err != nil {
		return err
	}

	fmt.Printf("Rated %q on %s: difficulty %d, quality %d\n", updated.Name, day, c.Difficulty, c.Quality)
	return nil
}
