package assess

import "errors"

// Sentinel kinds for assessment errors.
var (
	ErrUnknownInput = errors.New("unknown assessment input type")
)
