package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithAlertHistoryLimit caps the per-branch alert event history; older events
// are discarded first. A non-positive limit keeps everything.
func WithAlertHistoryLimit(limit int) Option {
	return func(s *MemoryStore) {
		s.alertHistoryLimit = limit
	}
}
