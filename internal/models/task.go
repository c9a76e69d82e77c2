package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Subitem is a checklist item owned by a task. Identity is by ID; the name is
// mutable content.
type Subitem struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Task is a recurring (or one-off) tracked task. It is a versioned record:
// every local mutation advances UpdatedAt, and the merge engine uses that
// timestamp as the primary recency signal when reconciling copies from other
// devices.
type Task struct {
	ID              uuid.UUID                   `json:"id"`
	Name            string                      `json:"name"`
	Notes           string                      `json:"notes,omitempty"`
	Tags            []string                    `json:"tags,omitempty"`
	Subitems        []Subitem                   `json:"subitems,omitempty"`
	Rule            *RecurrenceRule             `json:"rule,omitempty"`
	PointValue      int                         `json:"point_value,omitempty"`
	HasNotification bool                        `json:"has_notification,omitempty"`
	NotifyLeadMin   int                         `json:"notify_lead_min,omitempty"`
	Completions     map[string]CompletionRecord `json:"completions,omitempty"` // keyed by day (YYYY-MM-DD)
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	DeletedAt       *time.Time                  `json:"deleted_at,omitempty"`
}

func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("task id cannot be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("task name cannot be empty")
	}
	if t.PointValue < 0 {
		return fmt.Errorf("point value cannot be negative")
	}
	if t.Rule != nil {
		if err := t.Rule.Validate(); err != nil {
			return fmt.Errorf("invalid recurrence rule: %w", err)
		}
	}
	return nil
}

// IsEmpty reports whether the task carries no user-entered content. An empty
// local shell must never shadow real remote content during a merge.
func (t *Task) IsEmpty() bool {
	return t.Name == "" && t.Notes == "" && len(t.Tags) == 0 &&
		len(t.Subitems) == 0 && len(t.Completions) == 0
}

// Subitem returns the subitem with the given id, if present.
func (t *Task) Subitem(id uuid.UUID) (Subitem, bool) {
	for _, s := range t.Subitems {
		if s.ID == id {
			return s, true
		}
	}
	return Subitem{}, false
}

// Completion returns the completion record for the given day key, if one
// exists.
func (t *Task) Completion(day string) (CompletionRecord, bool) {
	rec, ok := t.Completions[day]
	return rec, ok
}

// Touch advances UpdatedAt to now. Mutations must call this so that the merge
// engine sees the task as recently edited.
func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = now
}
