package alerts

import "errors"

// ErrMissingBranch is returned when a rule is upserted without a branch.
var ErrMissingBranch = errors.New("alerts: rule branch id is required")
