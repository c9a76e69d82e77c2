package constants

import "time"

const (
	AppName           = "cadence"
	DefaultConfigPath = "~/.config/cadence/cadence.db"
	Version           = "v0.2.0"

	// DateFormat is the standard day-key format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// MergeEpsilon is the near-simultaneity window for the merge engine. Two
	// versions whose updated-at timestamps differ by no more than this are
	// resolved field by field instead of by straight timestamp dominance.
	MergeEpsilon = 120 * time.Second

	// Rating bounds for difficulty/quality scores on a day's completion.
	RatingMin = 1
	RatingMax = 10
)
