package forecast

import "errors"

// Sentinel kinds for forecast errors.
var (
	ErrInsufficientHistory = errors.New("no historical points available for forecasting")
)
