package assess

import (
	"strings"
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/scoring"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// Prayer priority constants. Priority is an additive base-plus-bonus model,
// capped at 100; the urgency tier itself comes from keyword matching alone.
const (
	prayerBasePriority = 50.0

	urgencyWeightCritical = 40.0
	urgencyWeightHigh     = 30.0
	urgencyWeightElevated = 15.0

	recencyBonusSameDay    = 10.0
	recencyBonusThreeDays  = 5.0
	recencyBonusWeek       = 2.0
	visibilityBonusNamed   = 2.0
	visibilityBonusLeaders = 3.0

	prayerMatchedConfidence   = 90.0
	prayerUnmatchedConfidence = 60.0
)

// urgencyPatterns are checked tier by tier from Critical downward; the first
// tier with any matching phrase wins outright. Matching is case-insensitive
// substring search over the request text.
var urgencyPatterns = []struct {
	tier    types.UrgencyTier
	phrases []string
}{
	{
		tier: types.UrgencyCritical,
		phrases: []string{
			"suicide", "suicidal", "kill myself", "end my life", "self-harm",
			"self harm", "overdose", "want to die", "life support",
			"critical condition", "not expected to survive",
		},
	},
	{
		tier: types.UrgencyHigh,
		phrases: []string{
			"hospital", "hospitalized", "surgery", "emergency", "accident",
			"cancer", "diagnosis", "terminal", "abuse", "violence", "dying",
			"stroke", "heart attack", "miscarriage", "custody",
		},
	},
	{
		tier: types.UrgencyElevated,
		phrases: []string{
			"anxiety", "depression", "depressed", "grief", "grieving",
			"lost my job", "unemployed", "divorce", "separation", "addiction",
			"relapse", "struggling", "urgent", "eviction", "debt",
		},
	},
}

// PrayerInput is one free-text request with its routing metadata.
type PrayerInput struct {
	BranchID string
	Request  model.PrayerRequest
}

func (in PrayerInput) SubjectID() string    { return in.Request.ID }
func (in PrayerInput) SubjectType() string  { return "prayer_request" }
func (in PrayerInput) Branch() string       { return in.BranchID }
func (in PrayerInput) Domain() types.Domain { return types.DomainPrayerPriority }

// PrayerResult is the typed outcome of a prayer scoring run.
type PrayerResult struct {
	Assessment      Assessment
	Tier            types.UrgencyTier
	Priority        float64
	MatchedKeywords []string
}

// ShouldEscalate reports whether the request must bypass normal triage.
// Only Critical requests escalate.
func (r PrayerResult) ShouldEscalate() bool { return r.Tier == types.UrgencyCritical }

// PrayerScorer classifies prayer request urgency and computes triage priority.
type PrayerScorer struct{}

// NewPrayerScorer creates a prayer scorer.
func NewPrayerScorer() *PrayerScorer {
	return &PrayerScorer{}
}

// Score classifies one request as of the given time.
func (s *PrayerScorer) Score(in PrayerInput, asOf time.Time) PrayerResult {
	tier, matched := classifyUrgency(in.Request.Text)

	// Additive priority: a fixed base plus the tier weight and small bonuses.
	// Expressing each term as a unit-weight factor keeps the cap and the
	// persisted breakdown in the standard aggregate path.
	factors := []scoring.Factor{
		scoring.NewFactor("base", prayerBasePriority, prayerBasePriority, 1,
			"Baseline triage priority for every request."),
		scoring.NewFactor("urgency", float64(tier), urgencyWeight(tier), 1,
			"Keyword-matched urgency tier weight."),
	}
	if bonus := recencyBonus(in.Request.SubmittedAt, asOf); bonus > 0 {
		factors = append(factors, scoring.NewFactor("recency", bonus, bonus, 1,
			"Bonus for freshly submitted requests."))
	}
	if !in.Request.Anonymous {
		factors = append(factors, scoring.NewFactor("named", visibilityBonusNamed, visibilityBonusNamed, 1,
			"Named requests allow direct follow-up."))
	}
	if in.Request.LeadersOnly {
		factors = append(factors, scoring.NewFactor("leaders_only", visibilityBonusLeaders, visibilityBonusLeaders, 1,
			"Requests restricted to leaders tend to be sensitive."))
	}

	priority := scoring.Aggregate(factors)

	confidence := prayerUnmatchedConfidence
	if tier != types.UrgencyNormal {
		confidence = prayerMatchedConfidence
	}

	var recs []string
	if tier == types.UrgencyCritical {
		recs = []string{"Escalate immediately to pastoral care; critical language detected."}
	} else if tier == types.UrgencyHigh {
		recs = []string{"Route to the care team within 24 hours."}
	}

	a := newAssessment(in, priority, tier.String(), confidence, factors, recs, asOf)

	return PrayerResult{
		Assessment:      a,
		Tier:            tier,
		Priority:        a.Score,
		MatchedKeywords: matched,
	}
}

// classifyUrgency scans the tier tables from most to least urgent; the first
// tier with a match wins, with no scoring blend between tiers.
func classifyUrgency(text string) (types.UrgencyTier, []string) {
	lower := strings.ToLower(text)
	for _, tier := range urgencyPatterns {
		var matched []string
		for _, phrase := range tier.phrases {
			if strings.Contains(lower, phrase) {
				matched = append(matched, phrase)
			}
		}
		if len(matched) > 0 {
			return tier.tier, matched
		}
	}
	return types.UrgencyNormal, nil
}

func urgencyWeight(tier types.UrgencyTier) float64 {
	switch tier {
	case types.UrgencyCritical:
		return urgencyWeightCritical
	case types.UrgencyHigh:
		return urgencyWeightHigh
	case types.UrgencyElevated:
		return urgencyWeightElevated
	default:
		return 0
	}
}

// recencyBonus tapers from same-day to a week out.
func recencyBonus(submitted, asOf time.Time) float64 {
	age := asOf.Sub(submitted)
	switch {
	case age < 24*time.Hour:
		return recencyBonusSameDay
	case age < 3*24*time.Hour:
		return recencyBonusThreeDays
	case age < 7*24*time.Hour:
		return recencyBonusWeek
	default:
		return 0
	}
}
