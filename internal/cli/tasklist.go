package cli

import (
	"fmt"
	"sort"
	"strings"
)

type TaskListCmd struct {
	All  bool   `short:"a" help:"Include soft-deleted tasks."`
	Tag  string `short:"t" help:"Only tasks carrying this tag."`
	Long bool   `short:"l" help:"Show full identifiers and notes."`
}

func (c *TaskListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	tasks, err := ctx.Store.GetAllTasks(c.All)
	if err != nil {
		return err
	}

	if c.Tag != "" {
		filtered := tasks[:0]
		for _, t := range tasks {
			for _, tag := range t.Tags {
				if tag == c.Tag {
					filtered = append(filtered, t)
					break
				}
			}
		}
		tasks = filtered
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })

	for _, t := range tasks {
		id := t.ID.String()[:8]
		if c.Long {
			id = t.ID.String()
		}
		line := fmt.Sprintf("%s  %-30s %s", id, t.Name, formatRule(t.Rule))
		if len(t.Tags) > 0 {
			line += fmt.Sprintf("  [%s]", strings.Join(t.Tags, " "))
		}
		if t.DeletedAt != nil {
			line += "  (deleted)"
		}
		fmt.Println(line)
		if c.Long && t.Notes != "" {
			fmt.Printf("          %s\n", t.Notes)
		}
		if c.Long {
			for _, sub := range t.Subitems {
				fmt.Printf("          - %s (%s)\n", sub.Name, sub.ID.String()[:8])
			}
		}
	}
	return nil
}
