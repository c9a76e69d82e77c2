package storage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
)

// Legacy schema coercion. Older clients serialized completed-subitem sets as
// plain strings, some of which are not valid UUIDs. Coercion happens here at
// the persistence boundary so the in-memory types keep a single canonical
// representation; unreadable data degrades to an empty set instead of
// surfacing an error.

type rawCompletion struct {
	Day               string          `json:"day"`
	IsDone            bool            `json:"is_done"`
	CompletedSubitems []string        `json:"completed_subitems,omitempty"`
	MeasuredEffort    *time.Duration  `json:"measured_effort,omitempty"`
	Ratings           *models.Ratings `json:"ratings,omitempty"`
}

// coerceSubitemIDs parses legacy string identifiers into UUIDs, dropping any
// that do not parse.
func coerceSubitemIDs(raw []string) []uuid.UUID {
	var out []uuid.UUID
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			logger.Warn("Dropping malformed subitem identifier", "value", s)
			continue
		}
		out = append(out, id)
	}
	return out
}

// decodeCompletions decodes a stored completion ledger, coercing legacy
// subitem identifiers. A ledger that cannot be decoded at all yields an
// empty map, never an error.
func decodeCompletions(data []byte) map[string]models.CompletionRecord {
	if len(data) == 0 {
		return nil
	}
	var raw map[string]rawCompletion
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("Dropping unreadable completion ledger", "error", err)
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]models.CompletionRecord, len(raw))
	for day, rc := range raw {
		if rc.Day == "" {
			rc.Day = day
		}
		out[day] = models.CompletionRecord{
			Day:               rc.Day,
			IsDone:            rc.IsDone,
			CompletedSubitems: coerceSubitemIDs(rc.CompletedSubitems),
			MeasuredEffort:    rc.MeasuredEffort,
			Ratings:           rc.Ratings,
		}
	}
	return out
}

// encodeCompletions marshals a completion ledger in the canonical format.
func encodeCompletions(completions map[string]models.CompletionRecord) ([]byte, error) {
	if len(completions) == 0 {
		return nil, nil
	}
	return json.Marshal(completions)
}
