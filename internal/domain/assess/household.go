package assess

import (
	"math"
	"sort"
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/scoring"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// Household engagement defaults. The partial-engagement boundary values are
// configuration constants confirmed against production defaults, not derived
// analytically.
const (
	defaultPartialMeanFloor   = 60.0
	defaultPartialSpreadFloor = 25.0

	// disengagedShare marks members scoring below this share of their own
	// household's mean as disengaged. Self-relative, not absolute.
	disengagedShare = 0.6

	spreadSaturation = 50.0
)

var householdRecommendations = map[string]string{
	"mean_engagement":   "Overall household engagement is low; plan a family visit.",
	"engagement_spread": "Engagement varies widely inside this household; reach the quieter members individually.",
}

// HouseholdInput wraps per-member engagement scores for one household.
type HouseholdInput struct {
	Household model.HouseholdSnapshot
}

func (in HouseholdInput) SubjectID() string    { return in.Household.HouseholdID }
func (in HouseholdInput) SubjectType() string  { return "household" }
func (in HouseholdInput) Branch() string       { return in.Household.BranchID }
func (in HouseholdInput) Domain() types.Domain { return types.DomainHouseholdEngagement }

// HouseholdResult is the typed outcome of a household engagement run.
type HouseholdResult struct {
	Assessment        Assessment
	Level             types.EngagementLevel
	Mean              float64
	Spread            float64 // population standard deviation of member scores
	DisengagedMembers []string
}

// HouseholdScorer aggregates member engagement to household level. This is
// the one domain where classification takes two inputs: the mean score and
// the variance signal that separates PartiallyEngaged from a uniform level.
type HouseholdScorer struct {
	partialMeanFloor   float64
	partialSpreadFloor float64
}

// HouseholdOption applies a configuration option to the HouseholdScorer.
type HouseholdOption func(*HouseholdScorer)

// WithPartialBoundary overrides the mean/spread boundary that classifies a
// household PartiallyEngaged. Non-positive values keep the defaults.
func WithPartialBoundary(meanFloor, spreadFloor float64) HouseholdOption {
	return func(s *HouseholdScorer) {
		if meanFloor > 0 {
			s.partialMeanFloor = meanFloor
		}
		if spreadFloor > 0 {
			s.partialSpreadFloor = spreadFloor
		}
	}
}

// NewHouseholdScorer creates a household scorer with configuration options.
func NewHouseholdScorer(opts ...HouseholdOption) *HouseholdScorer {
	s := &HouseholdScorer{
		partialMeanFloor:   defaultPartialMeanFloor,
		partialSpreadFloor: defaultPartialSpreadFloor,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score aggregates one household as of the given time.
func (s *HouseholdScorer) Score(in HouseholdInput, asOf time.Time) HouseholdResult {
	scores := in.Household.MemberScores
	if len(scores) == 0 {
		a := newAssessment(in, 0, string(types.EngagementDisengage), 40, nil, nil, asOf)
		return HouseholdResult{Assessment: a, Level: types.EngagementDisengage}
	}

	mean, spread := meanAndSpread(scores)
	level := s.classify(mean, spread)

	// The spread factor is persisted with zero weight: it informs the level
	// but must not move the mean-based score.
	factors := []scoring.Factor{
		scoring.NewFactor("mean_engagement", mean, mean, 1.0,
			"Mean of member engagement scores."),
		scoring.NewFactor("engagement_spread", spread,
			scoring.Ratio(spread, spreadSaturation), 0,
			"Standard deviation of member engagement scores."),
	}

	var disengaged []string
	floor := mean * disengagedShare
	for id, sc := range scores {
		if sc < floor {
			disengaged = append(disengaged, id)
		}
	}
	sort.Strings(disengaged)

	var recs []string
	if level == types.EngagementPartial {
		recs = scoring.Recommend(factors[1:], householdRecommendations, maxRecommendations)
	} else if mean < 40 {
		recs = scoring.Recommend(factors[:1], householdRecommendations, maxRecommendations)
	}

	a := newAssessment(in, mean, string(level), historyConfidence(len(scores)*2), factors, recs, asOf)

	return HouseholdResult{
		Assessment:        a,
		Level:             level,
		Mean:              scoring.Round2(mean),
		Spread:            scoring.Round2(spread),
		DisengagedMembers: disengaged,
	}
}

// classify maps (mean, spread) to an engagement level. A high mean with high
// spread is PartiallyEngaged: the average hides disengaged individuals.
func (s *HouseholdScorer) classify(mean, spread float64) types.EngagementLevel {
	if mean >= s.partialMeanFloor && spread > s.partialSpreadFloor {
		return types.EngagementPartial
	}
	switch {
	case mean >= 70:
		return types.EngagementEngaged
	case mean >= 40:
		return types.EngagementModerate
	case mean >= 20:
		return types.EngagementLow
	default:
		return types.EngagementDisengage
	}
}

func meanAndSpread(scores map[string]float64) (mean, spread float64) {
	for _, v := range scores {
		mean += v
	}
	mean /= float64(len(scores))
	var variance float64
	for _, v := range scores {
		variance += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(variance / float64(len(scores)))
}
