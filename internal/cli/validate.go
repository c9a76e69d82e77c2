package cli

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/validation"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	tasks, err := ctx.Store.GetAllTasks(false)
	if err != nil {
		return err
	}
	entries, err := ctx.Store.GetAllEntries(false)
	if err != nil {
		return err
	}

	validator := validation.New()
	taskResult := validator.ValidateTasks(tasks)
	entryResult := validator.ValidateEntries(entries)

	conflicts := append(taskResult.Conflicts, entryResult.Conflicts...)
	combined := validation.ValidationResult{Conflicts: conflicts}
	fmt.Println(combined.FormatReport())

	if combined.HasConflicts() {
		return fmt.Errorf("%d validation conflicts", len(conflicts))
	}
	return nil
}
