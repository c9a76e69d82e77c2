package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AttachmentKind string

const (
	AttachmentPhoto AttachmentKind = "photo"
	AttachmentVoice AttachmentKind = "voice"
)

// Attachment is an identity-bearing item (photo, voice memo) attached to a
// journal entry. Legacy records imported from older schema versions may carry
// a nil ID; those are de-duplicated by content hash during merges instead.
type Attachment struct {
	ID        uuid.UUID      `json:"id"`
	Kind      AttachmentKind `json:"kind"`
	Ref       string         `json:"ref"` // payload reference (file path or blob key)
	CreatedAt time.Time      `json:"created_at"`
}

// JournalEntry is a dated journal record. Like Task it is a versioned record
// reconciled by the merge engine.
type JournalEntry struct {
	ID          uuid.UUID    `json:"id"`
	Day         string       `json:"day"` // YYYY-MM-DD format
	Title       string       `json:"title,omitempty"`
	Text        string       `json:"text,omitempty"`
	Mood        string       `json:"mood,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	DeletedAt   *time.Time   `json:"deleted_at,omitempty"`
}

func (e *JournalEntry) Validate() error {
	if e.ID == uuid.Nil {
		return fmt.Errorf("journal entry id cannot be empty")
	}
	if e.Day == "" {
		return fmt.Errorf("journal entry day cannot be empty")
	}
	if _, err := time.Parse("2006-01-02", e.Day); err != nil {
		return fmt.Errorf("invalid day format (expected YYYY-MM-DD): %w", err)
	}
	return nil
}

// IsEmpty reports whether the entry carries no user-entered content.
func (e *JournalEntry) IsEmpty() bool {
	return e.Title == "" && e.Text == "" && e.Mood == "" &&
		len(e.Tags) == 0 && len(e.Attachments) == 0
}

// Touch advances UpdatedAt to now.
func (e *JournalEntry) Touch(now time.Time) {
	e.UpdatedAt = now
}
