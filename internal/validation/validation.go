package validation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateTaskName ConflictType = "duplicate_task_name"
	ConflictMissingID         ConflictType = "missing_id"
	ConflictInvalidRule       ConflictType = "invalid_rule"
	ConflictInvalidDay        ConflictType = "invalid_day"
	ConflictInvalidRating     ConflictType = "invalid_rating"
	ConflictOrphanSubitem     ConflictType = "orphan_subitem"
)

// Conflict represents a detected problem in stored data
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string    // Task/entry names involved
	IDs         []uuid.UUID // Record IDs involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator checks stored tasks and journal entries for inconsistencies
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateTasks checks tasks for conflicts
func (v *Validator) ValidateTasks(tasks []models.Task) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	// Duplicate names
	nameCount := make(map[string][]uuid.UUID)
	for _, task := range tasks {
		if task.DeletedAt != nil {
			continue // Skip deleted tasks
		}
		if task.Name == "" {
			continue
		}
		nameCount[task.Name] = append(nameCount[task.Name], task.ID)
	}
	for name, ids := range nameCount {
		if len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateTaskName,
				Description: fmt.Sprintf("Duplicate task name: %q (%d tasks)", name, len(ids)),
				Items:       []string{name},
				IDs:         ids,
			})
		}
	}

	for _, task := range tasks {
		if task.DeletedAt != nil {
			continue
		}

		if task.ID == uuid.Nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingID,
				Description: fmt.Sprintf("Task %q has no identifier", task.Name),
				Items:       []string{task.Name},
			})
		}

		if task.Rule != nil {
			if err := task.Rule.Validate(); err != nil {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictInvalidRule,
					Description: fmt.Sprintf("Task %q has an invalid recurrence rule: %v", task.Name, err),
					Items:       []string{task.Name},
					IDs:         []uuid.UUID{task.ID},
				})
			}
		}

		known := make(map[uuid.UUID]bool, len(task.Subitems))
		for _, sub := range task.Subitems {
			known[sub.ID] = true
		}

		for day, rec := range task.Completions {
			if _, err := utils.ParseDay(day, time.UTC); err != nil {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictInvalidDay,
					Description: fmt.Sprintf("Task %q has a completion keyed by invalid day %q", task.Name, day),
					Items:       []string{task.Name},
					IDs:         []uuid.UUID{task.ID},
				})
			}
			if rec.Ratings != nil {
				if !ratingInRange(rec.Ratings.Difficulty) || !ratingInRange(rec.Ratings.Quality) {
					result.Conflicts = append(result.Conflicts, Conflict{
						Type: ConflictInvalidRating,
						Description: fmt.Sprintf("Task %q has out-of-range ratings on %s (difficulty=%d, quality=%d)",
							task.Name, day, rec.Ratings.Difficulty, rec.Ratings.Quality),
						Items: []string{task.Name},
						IDs:   []uuid.UUID{task.ID},
					})
				}
			}
			for _, subID := range rec.CompletedSubitems {
				if !known[subID] {
					result.Conflicts = append(result.Conflicts, Conflict{
						Type:        ConflictOrphanSubitem,
						Description: fmt.Sprintf("Task %q records completion of unknown subitem %s on %s", task.Name, subID, day),
						Items:       []string{task.Name},
						IDs:         []uuid.UUID{task.ID},
					})
				}
			}
		}
	}

	return result
}

// ValidateEntries checks journal entries for conflicts
func (v *Validator) ValidateEntries(entries []models.JournalEntry) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	for _, entry := range entries {
		if entry.DeletedAt != nil {
			continue
		}

		if entry.ID == uuid.Nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingID,
				Description: fmt.Sprintf("Journal entry for %q has no identifier", entry.Day),
				Items:       []string{entry.Title},
			})
		}

		if _, err := utils.ParseDay(entry.Day, time.UTC); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDay,
				Description: fmt.Sprintf("Journal entry %s has invalid day %q", entry.ID, entry.Day),
				Items:       []string{entry.Title},
				IDs:         []uuid.UUID{entry.ID},
			})
		}
	}

	return result
}

func ratingInRange(r int) bool {
	return r >= constants.RatingMin && r <= constants.RatingMax
}
