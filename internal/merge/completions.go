package merge

import (
	"sort"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/models"
)

// dominantCompletions merges two completion ledgers when one side clearly won
// the timestamp race: the winner's record is taken for every day both sides
// know about, and days present on only one side are carried over. Subitem
// lists are normalized to the same sorted form the fieldwise merge produces.
func dominantCompletions(winner, loser map[string]models.CompletionRecord) map[string]models.CompletionRecord {
	if len(winner) == 0 && len(loser) == 0 {
		return nil
	}
	out := make(map[string]models.CompletionRecord, len(winner)+len(loser))
	for day, rec := range loser {
		rec.CompletedSubitems = unionSubitemIDs(rec.CompletedSubitems, nil)
		out[day] = rec
	}
	for day, rec := range winner {
		rec.CompletedSubitems = unionSubitemIDs(rec.CompletedSubitems, nil)
		out[day] = rec
	}
	return out
}

// fieldwiseCompletions merges two ledgers day by day for near-simultaneous
// edits, applying the scalar and collection rules to each day's record
// independently.
func fieldwiseCompletions(local, remote map[string]models.CompletionRecord) map[string]models.CompletionRecord {
	if len(local) == 0 && len(remote) == 0 {
		return nil
	}
	out := make(map[string]models.CompletionRecord, len(local)+len(remote))
	for day, rec := range local {
		out[day] = rec
	}
	for day, remoteRec := range remote {
		localRec, ok := out[day]
		if !ok {
			out[day] = remoteRec
			continue
		}
		out[day] = mergeCompletionRecord(localRec, remoteRec)
	}
	return out
}

func mergeCompletionRecord(local, remote models.CompletionRecord) models.CompletionRecord {
	merged := local

	// Done flag: remote wins on disagreement, same tie-break as scalars.
	if local.IsDone != remote.IsDone {
		merged.IsDone = remote.IsDone
	}

	merged.CompletedSubitems = unionSubitemIDs(local.CompletedSubitems, remote.CompletedSubitems)

	if local.MeasuredEffort == nil {
		merged.MeasuredEffort = remote.MeasuredEffort
	} else if remote.MeasuredEffort != nil && *remote.MeasuredEffort != *local.MeasuredEffort {
		merged.MeasuredEffort = remote.MeasuredEffort
	}

	if local.Ratings == nil {
		merged.Ratings = remote.Ratings
	} else if remote.Ratings != nil && *remote.Ratings != *local.Ratings {
		merged.Ratings = remote.Ratings
	}

	return merged
}

func unionSubitemIDs(local, remote []uuid.UUID) []uuid.UUID {
	if len(local) == 0 && len(remote) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]bool, len(local)+len(remote))
	var out []uuid.UUID
	for _, id := range local {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range remote {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
