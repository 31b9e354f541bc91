// Package roster scores volunteer suitability for open (role, date) slots and
// solves the fairness-aware assignment problem across a batch of slots.
package roster

import (
	"fmt"
	"sort"
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/scoring"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// Suitability weights and tier tables. Weights are fixed constants; the
// fairness factor is what keeps the same few volunteers from being
// perpetually reselected.
const (
	defaultFairnessWeight    = 0.35
	defaultExperienceWeight  = 0.25
	defaultReliabilityWeight = 0.25
	defaultPreferenceWeight  = 0.15

	// recencyHorizonDays is the gap after which a volunteer's recency
	// component saturates: anyone idle this long ranks like a never-served
	// candidate on recency.
	recencyHorizonDays = 90.0

	// Fairness blends recency with load relative to pool peers.
	fairnessRecencyShare = 0.6
	fairnessLoadShare    = 0.4
	loadPenaltyPerAssign = 15.0

	// Reliability grows with completed assignments, bounded so history can
	// nudge but never outrank declared tier.
	reliabilityPerAssignment = 0.5
	reliabilityCountCap      = 20

	preferenceMatchScore = 100.0
)

// skillBase is the declared-tier skill score. It deliberately ignores
// assignment history: tier is what the volunteer declared, not what they
// have accumulated.
var skillBase = map[types.ExperienceTier]float64{
	types.TierNovice:       40,
	types.TierIntermediate: 60,
	types.TierExperienced:  80,
	types.TierExpert:       95,
}

// tierPriority is the fixed priority weight added on top of the skill base.
var tierPriority = map[types.ExperienceTier]float64{
	types.TierNovice:       0,
	types.TierIntermediate: 5,
	types.TierExperienced:  10,
	types.TierExpert:       15,
}

// reliabilityFloor gives higher tiers a higher reliability floor and ceiling
// at equal assignment counts.
var reliabilityFloor = map[types.ExperienceTier]float64{
	types.TierNovice:       50,
	types.TierIntermediate: 65,
	types.TierExperienced:  80,
	types.TierExpert:       90,
}

// Suitability is one candidate's fitness for one specific open slot.
type Suitability struct {
	MemberID string                    `json:"member_id"`
	Total    float64                   `json:"total"`
	Rating   types.SuitabilityRating   `json:"rating"`
	Factors  map[string]scoring.Factor `json:"factors,omitempty"`
	Warnings []string                  `json:"warnings,omitempty"`
}

// Exclusion explains why a pool member never entered the ranked list.
type Exclusion struct {
	MemberID string `json:"member_id"`
	Reason   string `json:"reason"`
}

// Scorer ranks pool members for a single slot.
type Scorer struct {
	fairnessWeight    float64
	experienceWeight  float64
	reliabilityWeight float64
	preferenceWeight  float64
}

// ScorerOption applies a configuration option to the Scorer.
type ScorerOption func(*Scorer)

// WithWeights overrides the factor weights. Non-positive values keep defaults.
func WithWeights(fairness, experience, reliability, preference float64) ScorerOption {
	return func(s *Scorer) {
		if fairness > 0 {
			s.fairnessWeight = fairness
		}
		if experience > 0 {
			s.experienceWeight = experience
		}
		if reliability > 0 {
			s.reliabilityWeight = reliability
		}
		if preference > 0 {
			s.preferenceWeight = preference
		}
	}
}

// NewScorer creates a suitability scorer with configuration options.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		fairnessWeight:    defaultFairnessWeight,
		experienceWeight:  defaultExperienceWeight,
		reliabilityWeight: defaultReliabilityWeight,
		preferenceWeight:  defaultPreferenceWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rank scores every available pool member for the slot and returns them in
// descending suitability order, ties broken by lowest assignment count and
// then member ID for full determinism. Members of other pools and unavailable
// members never enter the ranked list; they are returned as exclusions with
// reasons.
func (s *Scorer) Rank(slot model.Slot, pool []model.PoolMember, asOf time.Time) ([]Suitability, []Exclusion) {
	var ranked []Suitability
	var excluded []Exclusion

	counts := make(map[string]int, len(pool))
	var totalAssignments, poolSize int
	for _, m := range pool {
		counts[m.MemberID] = m.AssignmentCount
		if m.PoolID == slot.Role {
			totalAssignments += m.AssignmentCount
			poolSize++
		}
	}
	poolMean := 0.0
	if poolSize > 0 {
		poolMean = float64(totalAssignments) / float64(poolSize)
	}

	for _, m := range pool {
		if reason, ok := unavailableReason(m, slot); ok {
			excluded = append(excluded, Exclusion{MemberID: m.MemberID, Reason: reason})
			continue
		}
		ranked = append(ranked, s.score(m, slot, poolMean, asOf))
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		if counts[ranked[i].MemberID] != counts[ranked[j].MemberID] {
			return counts[ranked[i].MemberID] < counts[ranked[j].MemberID]
		}
		return ranked[i].MemberID < ranked[j].MemberID
	})
	sort.Slice(excluded, func(i, j int) bool { return excluded[i].MemberID < excluded[j].MemberID })

	return ranked, excluded
}

// unavailableReason applies the hard availability filter. The monthly cap is
// scoped to the slot's calendar month, not to the batch as a whole.
func unavailableReason(m model.PoolMember, slot model.Slot) (string, bool) {
	if m.PoolID != slot.Role {
		return fmt.Sprintf("not a member of the %s pool", slot.Role), true
	}
	if !m.Active {
		return "pool membership is inactive", true
	}
	for _, r := range m.Unavailable {
		if r.Contains(slot.Date) {
			return fmt.Sprintf("recorded unavailability covering %s", slot.Date.Format("2006-01-02")), true
		}
	}
	if m.MaxMonthlyAssign > 0 && m.MonthlyAssignments[model.MonthKey(slot.Date)] >= m.MaxMonthlyAssign {
		return fmt.Sprintf("monthly assignment cap of %d reached", m.MaxMonthlyAssign), true
	}
	return "", false
}

func (s *Scorer) score(m model.PoolMember, slot model.Slot, poolMean float64, asOf time.Time) Suitability {
	factors := []scoring.Factor{
		s.fairnessFactor(m, poolMean, asOf),
		s.experienceFactor(m),
		s.reliabilityFactor(m),
	}

	var warnings []string
	if m.PrefersService(slot.ServiceID) {
		factors = append(factors, scoring.NewFactor("preference", 1,
			preferenceMatchScore, s.preferenceWeight,
			"Slot service matches a declared preference."))
	}
	if m.Experience == types.TierNovice {
		warnings = append(warnings, "novice volunteer; consider pairing with an experienced member")
	}

	total := scoring.Round2(scoring.Aggregate(factors))
	return Suitability{
		MemberID: m.MemberID,
		Total:    total,
		Rating:   types.SuitabilityRatingFor(total),
		Factors:  scoring.ByName(factors),
		Warnings: warnings,
	}
}

// fairnessFactor scores inversely to how recently and how heavily the member
// has served relative to pool peers. Never-assigned members take the maximum.
func (s *Scorer) fairnessFactor(m model.PoolMember, poolMean float64, asOf time.Time) scoring.Factor {
	recency := 100.0
	if m.LastAssignedAt != nil {
		days := asOf.Sub(*m.LastAssignedAt).Hours() / 24
		if days < 0 {
			days = 0
		}
		recency = scoring.Ratio(days, recencyHorizonDays)
	}

	load := scoring.Clamp(100 - (float64(m.AssignmentCount)-poolMean)*loadPenaltyPerAssign)

	value := fairnessRecencyShare*recency + fairnessLoadShare*load
	return scoring.NewFactor("fairness", float64(m.AssignmentCount), value, s.fairnessWeight,
		"Rotation fairness: favors members who served least recently and least often.")
}

func (s *Scorer) experienceFactor(m model.PoolMember) scoring.Factor {
	value := skillBase[m.Experience] + tierPriority[m.Experience]
	return scoring.NewFactor("experience", float64(m.Experience), value, s.experienceWeight,
		"Declared tier skill base plus tier priority weight.")
}

func (s *Scorer) reliabilityFactor(m model.PoolMember) scoring.Factor {
	count := m.AssignmentCount
	if count > reliabilityCountCap {
		count = reliabilityCountCap
	}
	value := reliabilityFloor[m.Experience] + float64(count)*reliabilityPerAssignment
	return scoring.NewFactor("reliability", float64(m.AssignmentCount), value, s.reliabilityWeight,
		"Tier reliability floor nudged upward by completed assignments.")
}
