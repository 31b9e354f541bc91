package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/alerts"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/assess"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/forecast"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/roster"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

const defaultAlertHistoryLimit = 500

type assessKey struct {
	branchID  string
	domain    types.Domain
	subjectID string
}

// MemoryStore is a mutex-guarded in-memory Store. Listings sort on read so
// writes stay O(1); branch listings are small enough that this holds up.
type MemoryStore struct {
	mu sync.RWMutex

	assessments map[assessKey]assess.Assessment
	forecasts   map[string]forecast.Result
	plans       map[string]roster.Plan
	events      map[string][]alerts.Event

	alertHistoryLimit int
}

// NewMemoryStore creates an empty in-memory store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		assessments:       make(map[assessKey]assess.Assessment),
		forecasts:         make(map[string]forecast.Result),
		plans:             make(map[string]roster.Plan),
		events:            make(map[string][]alerts.Event),
		alertHistoryLimit: defaultAlertHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) PutAssessment(_ context.Context, a assess.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments[assessKey{branchID: a.BranchID, domain: a.Domain, subjectID: a.SubjectID}] = a
	return nil
}

func (s *MemoryStore) Assessment(_ context.Context, branchID string, domain types.Domain, subjectID string) (assess.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assessments[assessKey{branchID: branchID, domain: domain, subjectID: subjectID}]
	if !ok {
		return assess.Assessment{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) AssessmentsByBranch(_ context.Context, branchID string, domain types.Domain) ([]assess.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []assess.Assessment
	for k, a := range s.assessments {
		if k.branchID == branchID && k.domain == domain {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SubjectID < out[j].SubjectID
	})
	return out, nil
}

func (s *MemoryStore) PutForecast(_ context.Context, f forecast.Result) error {
	if f.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecasts[f.ID] = f
	return nil
}

func (s *MemoryStore) Forecast(_ context.Context, id string) (forecast.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.forecasts[id]
	if !ok {
		return forecast.Result{}, ErrNotFound
	}
	return f, nil
}

func (s *MemoryStore) ForecastsByBranch(_ context.Context, branchID string, metric forecast.Metric) ([]forecast.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []forecast.Result
	for _, f := range s.forecasts {
		if f.BranchID == branchID && f.Metric == metric {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].GeneratedAt.After(out[j].GeneratedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) ReconciledSince(_ context.Context, branchID string, asOf time.Time, window time.Duration) ([]forecast.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := asOf.Add(-window)
	var out []forecast.Result
	for _, f := range s.forecasts {
		if f.BranchID != branchID || f.Accuracy == nil {
			continue
		}
		if f.GeneratedAt.Before(cutoff) || f.GeneratedAt.After(asOf) {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].GeneratedAt.After(out[j].GeneratedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) PutPlan(_ context.Context, p roster.Plan) error {
	if p.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.ID] = p
	return nil
}

func (s *MemoryStore) Plan(_ context.Context, id string) (roster.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return roster.Plan{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) PutAlertEvent(_ context.Context, ev alerts.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.events[ev.BranchID], ev)
	if s.alertHistoryLimit > 0 && len(history) > s.alertHistoryLimit {
		history = history[len(history)-s.alertHistoryLimit:]
	}
	s.events[ev.BranchID] = history
	return nil
}

func (s *MemoryStore) AlertEvents(_ context.Context, branchID string, limit int) ([]alerts.Event, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.events[branchID]
	out := make([]alerts.Event, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, history[i])
	}
	return out, nil
}

func (s *MemoryStore) Counts(_ context.Context) Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var eventCount int
	for _, h := range s.events {
		eventCount += len(h)
	}
	return Counts{
		Assessments: len(s.assessments),
		Forecasts:   len(s.forecasts),
		Plans:       len(s.plans),
		AlertEvents: eventCount,
	}
}
