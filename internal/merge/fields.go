package merge

import (
	"sort"
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

// mergeScalar resolves a scalar text/enum field: prefer the non-empty side.
// When both sides are non-empty and differ, the remote value wins (the
// arriving update is treated as authoritative). This is a deliberate
// tie-break, not a textual merge.
func mergeScalar(local, remote string) string {
	if local == "" {
		return remote
	}
	if remote == "" {
		return local
	}
	if local != remote {
		return remote
	}
	return local
}

// mergeInt resolves a scalar numeric field with the same non-empty preference
// and remote tie-break, treating zero as unset.
func mergeInt(local, remote int) int {
	if local == 0 {
		return remote
	}
	if remote == 0 {
		return local
	}
	if local != remote {
		return remote
	}
	return local
}

// mergeRule resolves the recurrence rule as a singular field: prefer the
// present side; when both are present, remote wins.
func mergeRule(local, remote *models.RecurrenceRule) *models.RecurrenceRule {
	if local == nil {
		return remote
	}
	if remote == nil {
		return local
	}
	return remote
}

// unionTags unions two tag collections, de-duplicated case-sensitively and
// sorted deterministically.
func unionTags(local, remote []string) []string {
	if len(local) == 0 && len(remote) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(local)+len(remote))
	var out []string
	for _, t := range local {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range remote {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// unionSubitems unions two subitem collections keyed by identity. When the
// same id carries different content on both sides, the remote content wins.
func unionSubitems(local, remote []models.Subitem) []models.Subitem {
	if len(local) == 0 && len(remote) == 0 {
		return nil
	}
	byID := make(map[string]int, len(local))
	out := make([]models.Subitem, 0, len(local)+len(remote))
	for _, s := range local {
		byID[s.ID.String()] = len(out)
		out = append(out, s)
	}
	for _, s := range remote {
		if i, ok := byID[s.ID.String()]; ok {
			out[i] = s
			continue
		}
		out = append(out, s)
	}
	return out
}

func minTime(a, b time.Time) time.Time {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	if b.Before(a) {
		return b
	}
	return a
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
