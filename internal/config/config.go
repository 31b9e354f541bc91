// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory batch job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of assessment workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the job idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// AlertHistoryLimit caps the per-branch alert event history.
	AlertHistoryLimit int `koanf:"alert_history_limit"`

	// AccuracyWindowDays sets the trailing window for branch forecast
	// accuracy summaries.
	AccuracyWindowDays int `koanf:"accuracy_window_days"`

	// HouseholdPartialMean and HouseholdPartialSpread set the boundary for
	// the partially-engaged household classification: household mean at or
	// above the first while member spread exceeds the second.
	HouseholdPartialMean   float64 `koanf:"household_partial_mean"`
	HouseholdPartialSpread float64 `koanf:"household_partial_spread"`

	// RosterWeights maps roster suitability factor names to weights.
	// Recognized keys: fairness, experience, reliability, preference.
	RosterWeights map[string]float64 `koanf:"roster_weights"`
}

// New creates a Config with defaults.
func New() *Config {
	c := &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		QueueSize:              100_000,
		WorkerCount:            runtime.NumCPU() * 4,
		DedupeSize:             500_000,
		AlertHistoryLimit:      500,
		AccuracyWindowDays:     90,
		HouseholdPartialMean:   60,
		HouseholdPartialSpread: 25,
		RosterWeights: map[string]float64{
			"fairness":    0.35,
			"experience":  0.25,
			"reliability": 0.25,
			"preference":  0.15,
		},
	}
	return c
}
