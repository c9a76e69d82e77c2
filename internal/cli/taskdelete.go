package cli

import (
	"fmt"

	"github.com/google/uuid"
)

type TaskDeleteCmd struct {
	Task string `arg:"" help:"Task name or id."`
}

func (c *TaskDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	task, err := findTask(ctx.Store, c.Task)
	if err != nil {
		return err
	}
	if err := ctx.Sync.DeleteTask(task.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted task %q (%s)\n", task.Name, task.ID)
	return nil
}

type TaskRestoreCmd struct {
	ID string `arg:"" help:"Task id to restore."`
}

func (c *TaskRestoreCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	id, err := uuid.Parse(c.ID)
	if err != nil {
		return fmt.Errorf("invalid task id: %w", err)
	}
	if err := ctx.Store.RestoreTask(id); err != nil {
		return err
	}

	fmt.Printf("Restored task %s\n", id)
	return nil
}
