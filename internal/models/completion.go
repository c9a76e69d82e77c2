package models

import (
	"time"

	"github.com/google/uuid"
)

// Ratings holds the user's difficulty/quality scores (1-10) for a day's work.
type Ratings struct {
	Difficulty int `json:"difficulty"`
	Quality    int `json:"quality"`
}

// CompletionRecord is a single day's completion state for a task, keyed by
// day (YYYY-MM-DD). Created on the first toggle for that day and overwritten
// in place afterwards; never implicitly deleted.
type CompletionRecord struct {
	Day               string         `json:"day"`
	IsDone            bool           `json:"is_done"`
	CompletedSubitems []uuid.UUID    `json:"completed_subitems,omitempty"`
	MeasuredEffort    *time.Duration `json:"measured_effort,omitempty"`
	Ratings           *Ratings       `json:"ratings,omitempty"`
}

// HasSubitem reports whether id is recorded as completed.
func (c *CompletionRecord) HasSubitem(id uuid.UUID) bool {
	for _, s := range c.CompletedSubitems {
		if s == id {
			return true
		}
	}
	return false
}

// AddSubitem records id as completed. Adding an already-present id is a no-op.
func (c *CompletionRecord) AddSubitem(id uuid.UUID) {
	if !c.HasSubitem(id) {
		c.CompletedSubitems = append(c.CompletedSubitems, id)
	}
}

// RemoveSubitem removes id from the completed set.
func (c *CompletionRecord) RemoveSubitem(id uuid.UUID) {
	for i, s := range c.CompletedSubitems {
		if s == id {
			c.CompletedSubitems = append(c.CompletedSubitems[:i], c.CompletedSubitems[i+1:]...)
			return
		}
	}
}
