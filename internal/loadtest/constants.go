package loadtest

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Runner configuration constants.
const (
	DrainPollInterval    = 500 * time.Millisecond
	DrainTimeout         = 2 * time.Minute
	PercentageMultiplier = 100
)
