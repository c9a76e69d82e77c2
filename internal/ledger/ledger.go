// Package ledger mutates a task's per-day completion records. Mutations
// return the point effects they imply instead of applying them, so the caller
// decides when and where reward bookkeeping happens.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

type EffectKind string

const (
	EffectGrantPoints  EffectKind = "grant_points"
	EffectRevokePoints EffectKind = "revoke_points"
)

// Effect is a reward-side consequence of a completion transition. The ledger
// computes when points change; the points collaborator computes totals.
type Effect struct {
	Kind   EffectKind
	Points int
	Day    string
}

// Policy controls subitem auto-promotion: when every subitem of a task is
// completed the day flips to done, and when the set becomes incomplete again
// the day flips back.
type Policy struct {
	AutoPromote bool
}

var DefaultPolicy = Policy{AutoPromote: true}

// ToggleDone flips the done flag for the given day, creating the day's record
// on first use. Marking done records every subitem as completed; marking
// not-done clears the completed set, so a done day never carries incomplete
// subitems. Returns the point effects of the transition.
func ToggleDone(task *models.Task, day string, now time.Time) []Effect {
	rec := ensureRecord(task, day)

	var effects []Effect
	if rec.IsDone {
		rec.IsDone = false
		rec.CompletedSubitems = nil
		if task.PointValue > 0 {
			effects = append(effects, Effect{Kind: EffectRevokePoints, Points: task.PointValue, Day: day})
		}
	} else {
		rec.IsDone = true
		rec.CompletedSubitems = rec.CompletedSubitems[:0]
		for _, s := range task.Subitems {
			rec.AddSubitem(s.ID)
		}
		if task.PointValue > 0 {
			effects = append(effects, Effect{Kind: EffectGrantPoints, Points: task.PointValue, Day: day})
		}
	}

	task.Completions[day] = *rec
	task.Touch(now)
	return effects
}

// ToggleSubitem flips the completed state of one subitem for the given day.
// Under the auto-promotion policy, completing the last open subitem promotes
// the day to done, and un-completing any subitem of a done day demotes it.
func ToggleSubitem(task *models.Task, day string, subitemID uuid.UUID, now time.Time, pol Policy) ([]Effect, error) {
	if _, ok := task.Subitem(subitemID); !ok {
		return nil, fmt.Errorf("task %s has no subitem %s", task.ID, subitemID)
	}

	rec := ensureRecord(task, day)

	var effects []Effect
	if rec.HasSubitem(subitemID) {
		rec.RemoveSubitem(subitemID)
		if pol.AutoPromote && rec.IsDone {
			rec.IsDone = false
			if task.PointValue > 0 {
				effects = append(effects, Effect{Kind: EffectRevokePoints, Points: task.PointValue, Day: day})
			}
		}
	} else {
		rec.AddSubitem(subitemID)
		if pol.AutoPromote && !rec.IsDone && allSubitemsComplete(task, rec) {
			rec.IsDone = true
			if task.PointValue > 0 {
				effects = append(effects, Effect{Kind: EffectGrantPoints, Points: task.PointValue, Day: day})
			}
		}
	}

	task.Completions[day] = *rec
	task.Touch(now)
	return effects, nil
}

// RecordEffort overwrites the measured effort for the given day. The done
// flag is untouched.
func RecordEffort(task *models.Task, day string, effort time.Duration, now time.Time) {
	rec := ensureRecord(task, day)
	rec.MeasuredEffort = &effort
	task.Completions[day] = *rec
	task.Touch(now)
}

// RecordRatings overwrites the difficulty/quality ratings for the given day.
// The done flag is untouched.
func RecordRatings(task *models.Task, day string, difficulty, quality int, now time.Time) error {
	if difficulty < constants.RatingMin || difficulty > constants.RatingMax {
		return fmt.Errorf("difficulty %d out of range (%d-%d)", difficulty, constants.RatingMin, constants.RatingMax)
	}
	if quality < constants.RatingMin || quality > constants.RatingMax {
		return fmt.Errorf("quality %d out of range (%d-%d)", quality, constants.RatingMin, constants.RatingMax)
	}

	rec := ensureRecord(task, day)
	rec.Ratings = &models.Ratings{Difficulty: difficulty, Quality: quality}
	task.Completions[day] = *rec
	task.Touch(now)
	return nil
}

func ensureRecord(task *models.Task, day string) *models.CompletionRecord {
	if task.Completions == nil {
		task.Completions = make(map[string]models.CompletionRecord)
	}
	rec, ok := task.Completions[day]
	if !ok {
		rec = models.CompletionRecord{Day: day}
	}
	return &rec
}

func allSubitemsComplete(task *models.Task, rec *models.CompletionRecord) bool {
	if len(task.Subitems) == 0 {
		return false
	}
	for _, s := range task.Subitems {
		if !rec.HasSubitem(s.ID) {
			return false
		}
	}
	return true
}
