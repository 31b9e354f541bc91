package assess

import (
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/scoring"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// Lifecycle classification constants. Stage boundaries are driven by days
// since the member last attended; engagement depth within the active band is
// driven by attendance frequency.
const (
	newMemberTenureDays    = 90
	activeRecencyDays      = 30
	disengagingRecencyDays = 60
	atRiskRecencyDays      = 90
	dormantRecencyDays     = 180

	// engagedRateFloor is the 12-week attendance rate at or above which an
	// active member classifies Engaged rather than Growing.
	engagedRateFloor = 0.6

	lifecycleFrequencyWeeks = 12

	lifecycleRecencyWeight   = 0.4
	lifecycleFrequencyWeight = 0.4
	lifecycleGivingWeight    = 0.2
)

var lifecycleRecommendations = map[string]string{
	"attendance_recency":   "It has been a while since their last service; invite them back personally.",
	"attendance_frequency": "Attendance is infrequent; suggest a small group or serving role.",
	"giving_recency":       "No recent giving activity; share current ministry needs.",
}

// LifecycleInput is everything needed to place a member on the journey.
// PreviousStage carries the stage the persistence layer last recorded so the
// result can flag transitions; HasPrevious distinguishes a genuine Prospect
// start from a missing prior record.
type LifecycleInput struct {
	Member        model.MemberSnapshot
	Attended      []time.Time
	Donations     []model.Donation
	PreviousStage types.LifecycleStage
	HasPrevious   bool
}

func (in LifecycleInput) SubjectID() string    { return in.Member.MemberID }
func (in LifecycleInput) SubjectType() string  { return "member" }
func (in LifecycleInput) Branch() string       { return in.Member.BranchID }
func (in LifecycleInput) Domain() types.Domain { return types.DomainLifecycle }

// LifecycleResult carries the stage pair so callers can react to transitions.
type LifecycleResult struct {
	Assessment             Assessment
	Stage                  types.LifecycleStage
	PreviousStage          types.LifecycleStage
	IsTransition           bool
	IsConcerningTransition bool
	IsPositiveTransition   bool
}

// LifecycleScorer classifies members into the 8-stage journey.
type LifecycleScorer struct {
	engagedRateFloor float64
}

// NewLifecycleScorer creates a lifecycle scorer with default thresholds.
func NewLifecycleScorer() *LifecycleScorer {
	return &LifecycleScorer{engagedRateFloor: engagedRateFloor}
}

// Score classifies one member and computes the supporting engagement score.
func (s *LifecycleScorer) Score(in LifecycleInput, asOf time.Time) LifecycleResult {
	stage := s.classify(in, asOf)

	// Engagement score backs the stage with a continuous signal for alerting
	// and household aggregation. Higher is better.
	var factors []scoring.Factor
	if len(in.Attended) > 0 {
		days := daysSinceLast(in.Attended, asOf)
		factors = append(factors, scoring.NewFactor("attendance_recency", days,
			100-scoring.Ratio(days, dormantRecencyDays), lifecycleRecencyWeight,
			"How recently the member attended a service."))

		rate := weeklyRate(in.Attended, asOf, lifecycleFrequencyWeeks)
		factors = append(factors, scoring.NewFactor("attendance_frequency", rate,
			scoring.Ratio(rate, 1), lifecycleFrequencyWeight,
			"Attendance rate over the trailing quarter."))
	}
	if len(in.Donations) > 0 {
		days := daysSinceLastGift(in.Donations, asOf)
		factors = append(factors, scoring.NewFactor("giving_recency", days,
			100-scoring.Ratio(days, dormantRecencyDays), lifecycleGivingWeight,
			"How recently the member gave."))
	}

	score := scoring.Aggregate(factors)
	recs := scoring.Recommend(scoring.Below(factors, 40), lifecycleRecommendations, maxRecommendations)
	a := newAssessment(in, score, stage.String(), historyConfidence(len(in.Attended)+len(in.Donations)), factors, recs, asOf)

	res := LifecycleResult{
		Assessment:    a,
		Stage:         stage,
		PreviousStage: in.PreviousStage,
	}
	if in.HasPrevious && stage != in.PreviousStage {
		res.IsTransition = true
		res.IsConcerningTransition = stage.IsConcerning() && !in.PreviousStage.IsConcerning()
		res.IsPositiveTransition = stage.IsPositive() && !in.PreviousStage.IsPositive()
	}
	return res
}

// classify applies the stage rules: attendance recency first, tenure second,
// frequency to split Engaged from Growing.
func (s *LifecycleScorer) classify(in LifecycleInput, asOf time.Time) types.LifecycleStage {
	if len(in.Attended) == 0 {
		return types.StageProspect
	}

	tenureDays := asOf.Sub(in.Member.JoinedAt).Hours() / 24
	days := daysSinceLast(in.Attended, asOf)

	switch {
	case days <= activeRecencyDays:
		if tenureDays < newMemberTenureDays {
			return types.StageNewMember
		}
		if weeklyRate(in.Attended, asOf, lifecycleFrequencyWeeks) >= s.engagedRateFloor {
			return types.StageEngaged
		}
		return types.StageGrowing
	case days <= disengagingRecencyDays:
		return types.StageDisengaging
	case days <= atRiskRecencyDays:
		return types.StageAtRisk
	case days <= dormantRecencyDays:
		return types.StageDormant
	default:
		return types.StageInactive
	}
}

func daysSinceLast(dates []time.Time, asOf time.Time) float64 {
	var last time.Time
	for _, d := range dates {
		if !d.After(asOf) && d.After(last) {
			last = d
		}
	}
	if last.IsZero() {
		return float64(dormantRecencyDays)
	}
	return asOf.Sub(last).Hours() / 24
}

func daysSinceLastGift(gifts []model.Donation, asOf time.Time) float64 {
	var last time.Time
	for _, g := range gifts {
		if !g.GivenAt.After(asOf) && g.GivenAt.After(last) {
			last = g.GivenAt
		}
	}
	if last.IsZero() {
		return float64(dormantRecencyDays)
	}
	return asOf.Sub(last).Hours() / 24
}
