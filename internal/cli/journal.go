package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

type JournalAddCmd struct {
	Text  string   `arg:"" help:"Entry text."`
	Title string   `help:"Entry title."`
	Mood  string   `short:"m" help:"Mood word."`
	Tags  []string `short:"t" help:"Tags (repeatable)."`
	Day   string   `short:"d" help:"Day the entry belongs to (YYYY-MM-DD, default today)."`
	Photo []string `help:"Photo attachment references (repeatable)."`
	Voice []string `help:"Voice memo attachment references (repeatable)."`
}

func (c *JournalAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := ctx.resolveDay(c.Day)
	if err != nil {
		return err
	}

	now := time.Now()
	entry := models.JournalEntry{
		ID:        uuid.New(),
		Day:       utils.DayKey(date),
		Title:     c.Title,
		Text:      c.Text,
		Mood:      c.Mood,
		Tags:      c.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, ref := range c.Photo {
		entry.Attachments = append(entry.Attachments, models.Attachment{
			ID: uuid.New(), Kind: models.AttachmentPhoto, Ref: ref, CreatedAt: now,
		})
	}
	for _, ref := range c.Voice {
		entry.Attachments = append(entry.Attachments, models.Attachment{
			ID: uuid.New(), Kind: models.AttachmentVoice, Ref: ref, CreatedAt: now,
		})
	}

	if err := entry.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AddEntry(entry); err != nil {
		return err
	}

	fmt.Printf("Added journal entry for %s (%s)\n", entry.Day, entry.ID)
	return nil
}

type JournalListCmd struct {
	Day string `arg:"" optional:"" help:"Only entries for this day (YYYY-MM-DD)."`
	All bool   `short:"a" help:"Include soft-deleted entries."`
}

func (c *JournalListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	var entries []models.JournalEntry
	var err error
	if c.Day != "" {
		date, derr := ctx.resolveDay(c.Day)
		if derr != nil {
			return derr
		}
		entries, err = ctx.Store.GetEntriesForDay(utils.DayKey(date))
	} else {
		entries, err = ctx.Store.GetAllEntries(c.All)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No journal entries.")
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return entries[i].Day < entries[j].Day
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	for _, e := range entries {
		header := e.Day
		if e.Title != "" {
			header += "  " + e.Title
		}
		if e.Mood != "" {
			header += fmt.Sprintf("  (%s)", e.Mood)
		}
		if len(e.Tags) > 0 {
			header += fmt.Sprintf("  [%s]", strings.Join(e.Tags, " "))
		}
		if e.DeletedAt != nil {
			header += "  (deleted)"
		}
		fmt.Println(header)
		fmt.Printf("  %s\n", e.Text)
		for _, a := range e.Attachments {
			fmt.Printf("  + %s: %s\n", a.Kind, a.Ref)
		}
	}
	return nil
}

type JournalDeleteCmd struct {
	ID string `arg:"" help:"Entry id."`
}

func (c *JournalDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	id, err := uuid.Parse(c.ID)
	if err != nil {
		return fmt.Errorf("invalid entry id: %w", err)
	}
	if err := ctx.Sync.DeleteEntry(id); err != nil {
		return err
	}

	fmt.Printf("Deleted journal entry %s\n", id)
	return nil
}
