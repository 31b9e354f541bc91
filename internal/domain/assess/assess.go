// Package assess implements the domain scorers: churn risk, attendance
// anomaly, lifecycle stage, cluster health, household engagement, prayer
// priority, and SMS engagement.
//
// Every scorer follows the same shape: gather signals for the subject, build
// a factor list, aggregate, classify against the domain's band table, then
// derive concerns, strengths, and up to a handful of recommendations keyed to
// the weakest factors. All scorers take an explicit asOf time; nothing reads
// the ambient clock.
package assess

import (
	"fmt"
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/scoring"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// maxRecommendations bounds the recommendation list on every assessment.
const maxRecommendations = 4

// Assessment is the persisted outcome of one scoring run for one subject.
// One current assessment exists per (subject, domain); recomputes overwrite.
type Assessment struct {
	SubjectID       string                    `json:"subject_id"`
	SubjectType     string                    `json:"subject_type"`
	BranchID        string                    `json:"branch_id"`
	Domain          types.Domain              `json:"domain"`
	Score           float64                   `json:"score"` // 0-100, two decimals
	Level           string                    `json:"level"`
	Confidence      float64                   `json:"confidence"` // 0-100
	Factors         map[string]scoring.Factor `json:"factors,omitempty"`
	Recommendations []string                  `json:"recommendations,omitempty"`
	ComputedAt      time.Time                 `json:"computed_at"`
}

// Input is a subject snapshot ready for scoring. Concrete inputs carry the
// historical facts their scorer needs, already loaded from storage.
type Input interface {
	SubjectID() string
	SubjectType() string
	Branch() string
	Domain() types.Domain
}

// Engine dispatches an Input to the scorer for its domain. It exists so batch
// workers can process mixed-domain job streams through one entry point.
type Engine struct {
	churn      *ChurnScorer
	attendance *AttendanceScorer
	lifecycle  *LifecycleScorer
	cluster    *ClusterScorer
	household  *HouseholdScorer
	prayer     *PrayerScorer
	sms        *SMSScorer
}

// EngineOption applies a configuration option to the Engine.
type EngineOption func(*Engine)

// WithChurnScorer overrides the default churn scorer.
func WithChurnScorer(s *ChurnScorer) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.churn = s
		}
	}
}

// WithHouseholdScorer overrides the default household scorer.
func WithHouseholdScorer(s *HouseholdScorer) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.household = s
		}
	}
}

// WithPrayerScorer overrides the default prayer scorer.
func WithPrayerScorer(s *PrayerScorer) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.prayer = s
		}
	}
}

// NewEngine creates an Engine with default scorer configuration.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		churn:      NewChurnScorer(),
		attendance: NewAttendanceScorer(),
		lifecycle:  NewLifecycleScorer(),
		cluster:    NewClusterScorer(),
		household:  NewHouseholdScorer(),
		prayer:     NewPrayerScorer(),
		sms:        NewSMSScorer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute scores one subject as of the given time. The concrete input type
// selects the scorer; an input this engine does not recognize is rejected.
func (e *Engine) Compute(in Input, asOf time.Time) (Assessment, error) {
	switch v := in.(type) {
	case ChurnInput:
		return e.churn.Score(v, asOf).Assessment, nil
	case AttendanceInput:
		return e.attendance.Score(v, asOf).Assessment, nil
	case LifecycleInput:
		return e.lifecycle.Score(v, asOf).Assessment, nil
	case ClusterInput:
		return e.cluster.Score(v, asOf).Assessment, nil
	case HouseholdInput:
		return e.household.Score(v, asOf).Assessment, nil
	case PrayerInput:
		return e.prayer.Score(v, asOf).Assessment, nil
	case SMSInput:
		return e.sms.Score(v, asOf).Assessment, nil
	default:
		return Assessment{}, fmt.Errorf("%w: %T", ErrUnknownInput, in)
	}
}

// newAssessment assembles the shared assessment envelope.
func newAssessment(in Input, score float64, level string, confidence float64, factors []scoring.Factor, recs []string, asOf time.Time) Assessment {
	return Assessment{
		SubjectID:       in.SubjectID(),
		SubjectType:     in.SubjectType(),
		BranchID:        in.Branch(),
		Domain:          in.Domain(),
		Score:           scoring.Round2(scoring.Clamp(score)),
		Level:           level,
		Confidence:      scoring.Round2(confidence),
		Factors:         scoring.ByName(factors),
		Recommendations: recs,
		ComputedAt:      asOf,
	}
}

// historyConfidence derives a confidence score from the number of historical
// observations backing the factors, clamped to [40,95]. Sparse history still
// produces an assessment, just a less certain one.
func historyConfidence(points int) float64 {
	c := 40 + float64(points)*5
	if c > 95 {
		return 95
	}
	return c
}
