package roster

import "errors"

// ErrNoSlots is returned when an optimization run has nothing to fill.
var ErrNoSlots = errors.New("roster: no slots to optimize")
