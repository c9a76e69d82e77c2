// Package merge reconciles two versions of the same logical record edited on
// different devices. Merging is a total function over well-formed records
// sharing an id: it never fails beyond the id-mismatch precondition, is
// idempotent under redelivery of the same remote version, and produces the
// same record regardless of argument order when one side is clearly newer.
package merge

import (
	"errors"
	"fmt"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

// ErrIDMismatch is returned when the two records are not versions of the same
// logical record. The caller must not apply a partial result.
var ErrIDMismatch = errors.New("record ids do not match")

// Outcome describes which path resolved the merge.
type Outcome int

const (
	// OutcomeAdoptedRemote: the local record was an empty shell and the remote
	// was adopted wholesale.
	OutcomeAdoptedRemote Outcome = iota
	// OutcomeRemoteWon: the remote side was clearly newer; its content fields
	// won outright.
	OutcomeRemoteWon
	// OutcomeLocalWon: the local side was clearly newer; its content fields
	// won outright and the result should be re-pushed so other devices
	// converge.
	OutcomeLocalWon
	// OutcomeFieldMerged: the edits were near-simultaneous and each content
	// field was merged independently.
	OutcomeFieldMerged
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdoptedRemote:
		return "adopted_remote"
	case OutcomeRemoteWon:
		return "remote_won"
	case OutcomeLocalWon:
		return "local_won"
	case OutcomeFieldMerged:
		return "field_merged"
	}
	return "unknown"
}

// Tasks merges a local and a remote version of the same task.
func Tasks(local, remote models.Task) (models.Task, Outcome, error) {
	if local.ID != remote.ID {
		return models.Task{}, 0, fmt.Errorf("%w: local %s, remote %s", ErrIDMismatch, local.ID, remote.ID)
	}

	// An empty local shell must never shadow real remote content.
	if local.IsEmpty() && !remote.IsEmpty() {
		return remote, OutcomeAdoptedRemote, nil
	}

	delta := absDuration(local.UpdatedAt.Sub(remote.UpdatedAt))
	if delta > constants.MergeEpsilon {
		// Collections come out in the same normalized form the fieldwise
		// path produces, so redelivering the loser is a no-op.
		if local.UpdatedAt.After(remote.UpdatedAt) {
			merged := local
			merged.Tags = unionTags(local.Tags, nil)
			merged.Completions = dominantCompletions(local.Completions, remote.Completions)
			merged.UpdatedAt = maxTime(local.UpdatedAt, remote.UpdatedAt)
			return merged, OutcomeLocalWon, nil
		}
		merged := remote
		merged.Tags = unionTags(remote.Tags, nil)
		merged.Completions = dominantCompletions(remote.Completions, local.Completions)
		merged.UpdatedAt = maxTime(local.UpdatedAt, remote.UpdatedAt)
		return merged, OutcomeRemoteWon, nil
	}

	// Near-simultaneous: merge field by field.
	merged := local
	merged.Name = mergeScalar(local.Name, remote.Name)
	merged.Notes = mergeScalar(local.Notes, remote.Notes)
	merged.Tags = unionTags(local.Tags, remote.Tags)
	merged.Subitems = unionSubitems(local.Subitems, remote.Subitems)
	merged.Rule = mergeRule(local.Rule, remote.Rule)
	merged.PointValue = mergeInt(local.PointValue, remote.PointValue)
	merged.HasNotification = local.HasNotification || remote.HasNotification
	merged.NotifyLeadMin = mergeInt(local.NotifyLeadMin, remote.NotifyLeadMin)
	merged.Completions = fieldwiseCompletions(local.Completions, remote.Completions)
	merged.CreatedAt = minTime(local.CreatedAt, remote.CreatedAt)
	merged.UpdatedAt = maxTime(local.UpdatedAt, remote.UpdatedAt)
	return merged, OutcomeFieldMerged, nil
}

// Entries merges a local and a remote version of the same journal entry.
func Entries(local, remote models.JournalEntry) (models.JournalEntry, Outcome, error) {
	if local.ID != remote.ID {
		return models.JournalEntry{}, 0, fmt.Errorf("%w: local %s, remote %s", ErrIDMismatch, local.ID, remote.ID)
	}

	if local.IsEmpty() && !remote.IsEmpty() {
		return remote, OutcomeAdoptedRemote, nil
	}

	delta := absDuration(local.UpdatedAt.Sub(remote.UpdatedAt))
	if delta > constants.MergeEpsilon {
		if local.UpdatedAt.After(remote.UpdatedAt) {
			merged := local
			merged.Tags = unionTags(local.Tags, nil)
			merged.UpdatedAt = maxTime(local.UpdatedAt, remote.UpdatedAt)
			return merged, OutcomeLocalWon, nil
		}
		merged := remote
		merged.Tags = unionTags(remote.Tags, nil)
		merged.UpdatedAt = maxTime(local.UpdatedAt, remote.UpdatedAt)
		return merged, OutcomeRemoteWon, nil
	}

	merged := local
	merged.Day = mergeScalar(local.Day, remote.Day)
	merged.Title = mergeScalar(local.Title, remote.Title)
	merged.Text = mergeScalar(local.Text, remote.Text)
	merged.Mood = mergeScalar(local.Mood, remote.Mood)
	merged.Tags = unionTags(local.Tags, remote.Tags)
	merged.Attachments = unionAttachments(local.Attachments, remote.Attachments)
	merged.CreatedAt = minTime(local.CreatedAt, remote.CreatedAt)
	merged.UpdatedAt = maxTime(local.UpdatedAt, remote.UpdatedAt)
	return merged, OutcomeFieldMerged, nil
}
