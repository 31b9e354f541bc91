package assess

import (
	"sort"
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/scoring"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// Default churn scoring constants. Weights follow the additive risk model:
// recency and frequency add risk, an improving amount trend subtracts it.
const (
	defaultChurnRecencyWeight   = 0.50
	defaultChurnFrequencyWeight = 0.30
	defaultChurnTrendWeight     = 0.20

	// recencyDominanceRatio is how many multiples of the member's personal
	// giving interval must elapse for the recency factor to saturate. At or
	// past this ratio, recency alone carries the score into high risk.
	recencyDominanceRatio = 3.0

	// trendWindow is the comparison window for frequency and amount trends:
	// the most recent window against the one before it.
	trendWindow = 90 * 24 * time.Hour

	// fallbackIntervalDays stands in for the personal giving interval when
	// the member has only a single recorded gift.
	fallbackIntervalDays = 30.0
)

// churnRecommendations are keyed to the risk factors that drive them.
var churnRecommendations = map[string]string{
	"gift_recency":     "Reach out personally; it has been unusually long since their last gift.",
	"giving_frequency": "Giving frequency has dropped; invite them to a giving conversation.",
	"declining_trend":  "Gift amounts are trending down; check in on their circumstances.",
}

// ChurnInput is a member's giving history ready for churn scoring.
type ChurnInput struct {
	Member    model.MemberSnapshot
	Donations []model.Donation
}

func (in ChurnInput) SubjectID() string    { return in.Member.MemberID }
func (in ChurnInput) SubjectType() string  { return "member" }
func (in ChurnInput) Branch() string       { return in.Member.BranchID }
func (in ChurnInput) Domain() types.Domain { return types.DomainChurnRisk }

// ChurnResult is the typed outcome of a churn scoring run.
type ChurnResult struct {
	Assessment     Assessment
	Level          types.RiskLevel
	NeedsAttention bool
}

// ChurnScorer computes donation-based churn risk for members.
type ChurnScorer struct {
	recencyWeight   float64
	frequencyWeight float64
	trendWeight     float64
}

// ChurnOption applies a configuration option to the ChurnScorer.
type ChurnOption func(*ChurnScorer)

// WithChurnWeights overrides the factor weights. Non-positive values keep
// the defaults.
func WithChurnWeights(recency, frequency, trend float64) ChurnOption {
	return func(s *ChurnScorer) {
		if recency > 0 {
			s.recencyWeight = recency
		}
		if frequency > 0 {
			s.frequencyWeight = frequency
		}
		if trend > 0 {
			s.trendWeight = trend
		}
	}
}

// NewChurnScorer creates a churn scorer with configuration options.
func NewChurnScorer(opts ...ChurnOption) *ChurnScorer {
	s := &ChurnScorer{
		recencyWeight:   defaultChurnRecencyWeight,
		frequencyWeight: defaultChurnFrequencyWeight,
		trendWeight:     defaultChurnTrendWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes a member's churn risk as of the given time.
//
// A member with no giving history scores exactly 0 with a single
// no_donation_history factor. This is policy, not missing data: absence of
// history is not evidence of churn.
func (s *ChurnScorer) Score(in ChurnInput, asOf time.Time) ChurnResult {
	if len(in.Donations) == 0 {
		f := scoring.NewFactor("no_donation_history", 0, 0, 0,
			"No recorded donations; churn risk is not inferred from absence of history.")
		a := newAssessment(in, 0, string(types.RiskLow), 100, []scoring.Factor{f}, nil, asOf)
		return ChurnResult{Assessment: a, Level: types.RiskLow}
	}

	gifts := make([]model.Donation, len(in.Donations))
	copy(gifts, in.Donations)
	sort.Slice(gifts, func(i, j int) bool { return gifts[i].GivenAt.Before(gifts[j].GivenAt) })

	var factors []scoring.Factor

	// Recency scaled against the member's own historical interval, not a
	// global constant. Past recencyDominanceRatio times the personal
	// interval, this factor saturates and dominates the score.
	interval := personalIntervalDays(gifts)
	daysSince := asOf.Sub(gifts[len(gifts)-1].GivenAt).Hours() / 24
	ratio := daysSince / interval
	factors = append(factors, scoring.NewFactor("gift_recency", daysSince,
		scoring.Ratio(ratio, recencyDominanceRatio), s.recencyWeight,
		"Days since last gift relative to this member's usual giving interval."))

	recent, prior := splitByWindow(gifts, asOf)

	// Frequency drop, recent window vs prior window. Omitted when the prior
	// window is empty; a missing signal is never zero-filled.
	if len(prior) > 0 {
		drop := float64(len(prior)-len(recent)) / float64(len(prior))
		factors = append(factors, scoring.NewFactor("giving_frequency",
			float64(len(recent)), scoring.Ratio(drop, 1), s.frequencyWeight,
			"Decline in gift count compared with the prior period."))
	}

	// Amount trend. A rising mean subtracts risk through a negative weight.
	if priorMean := meanAmount(prior); priorMean > 0 {
		recentMean := meanAmount(recent)
		if recentMean > priorMean {
			growth := (recentMean - priorMean) / priorMean
			factors = append(factors, scoring.NewFactor("increasing_trend",
				recentMean, scoring.Ratio(growth, 0.5), -s.trendWeight,
				"Gift amounts are increasing; reduces churn risk."))
		} else {
			decline := (priorMean - recentMean) / priorMean
			factors = append(factors, scoring.NewFactor("declining_trend",
				recentMean, scoring.Ratio(decline, 0.5), s.trendWeight,
				"Gift amounts are flat or declining."))
		}
	}

	score := scoring.Aggregate(factors)
	level := types.RiskLevelFor(score)
	recs := scoring.Recommend(scoring.Above(factors, 60), churnRecommendations, maxRecommendations)
	a := newAssessment(in, score, string(level), historyConfidence(len(gifts)), factors, recs, asOf)

	return ChurnResult{
		Assessment:     a,
		Level:          level,
		NeedsAttention: level.NeedsAttention(),
	}
}

// personalIntervalDays is the mean gap between consecutive gifts in days.
func personalIntervalDays(sorted []model.Donation) float64 {
	if len(sorted) < 2 {
		return fallbackIntervalDays
	}
	total := sorted[len(sorted)-1].GivenAt.Sub(sorted[0].GivenAt).Hours() / 24
	interval := total / float64(len(sorted)-1)
	if interval <= 0 {
		return fallbackIntervalDays
	}
	return interval
}

// splitByWindow partitions gifts into the most recent trend window and the
// window immediately before it. Older gifts are ignored for trend purposes.
func splitByWindow(sorted []model.Donation, asOf time.Time) (recent, prior []model.Donation) {
	recentStart := asOf.Add(-trendWindow)
	priorStart := asOf.Add(-2 * trendWindow)
	for _, d := range sorted {
		switch {
		case d.GivenAt.After(recentStart):
			recent = append(recent, d)
		case d.GivenAt.After(priorStart):
			prior = append(prior, d)
		}
	}
	return recent, prior
}

func meanAmount(gifts []model.Donation) float64 {
	if len(gifts) == 0 {
		return 0
	}
	var total float64
	for _, d := range gifts {
		total += d.Amount
	}
	return total / float64(len(gifts))
}
