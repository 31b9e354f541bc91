package roster

import (
	"maps"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
)

// Assignment is one filled slot in a plan.
type Assignment struct {
	SlotID      string      `json:"slot_id"`
	MemberID    string      `json:"member_id"`
	Suitability Suitability `json:"suitability"`
}

// UnfilledSlot is a slot no available candidate could take, with the reason
// every pool member was excluded.
type UnfilledSlot struct {
	SlotID     string      `json:"slot_id"`
	Exclusions []Exclusion `json:"exclusions,omitempty"`
}

// Plan is the deterministic result of optimizing a batch of slots against a
// volunteer pool.
type Plan struct {
	ID          string         `json:"id"`
	BranchID    string         `json:"branch_id"`
	Assignments []Assignment   `json:"assignments"`
	Unfilled    []UnfilledSlot `json:"unfilled,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Optimizer assigns pool members to slots one slot at a time, feeding each
// assignment back into the pool state so fairness compounds within the batch.
type Optimizer struct {
	scorer *Scorer
}

// NewOptimizer creates an optimizer around the given suitability scorer.
func NewOptimizer(scorer *Scorer) *Optimizer {
	return &Optimizer{scorer: scorer}
}

// Optimize fills the slots greedily in chronological order (date, then role
// for same-day slots). The pool is copied; callers' slices are never mutated.
// Taking a slot immediately raises the member's assignment counts and recency
// before the next slot is considered, so back-to-back slots rotate through
// the pool instead of saturating the single top-ranked member.
func (o *Optimizer) Optimize(branchID string, slots []model.Slot, pool []model.PoolMember, asOf time.Time) (Plan, error) {
	if len(slots) == 0 {
		return Plan{}, ErrNoSlots
	}

	ordered := make([]model.Slot, len(slots))
	copy(ordered, slots)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		if ordered[i].Role != ordered[j].Role {
			return ordered[i].Role < ordered[j].Role
		}
		return ordered[i].ID < ordered[j].ID
	})

	working := make([]model.PoolMember, len(pool))
	copy(working, pool)
	for i := range working {
		working[i].MonthlyAssignments = maps.Clone(working[i].MonthlyAssignments)
	}

	plan := Plan{
		ID:          uuid.NewString(),
		BranchID:    branchID,
		GeneratedAt: asOf,
	}

	for _, slot := range ordered {
		ranked, excluded := o.scorer.Rank(slot, working, asOf)
		if len(ranked) == 0 {
			plan.Unfilled = append(plan.Unfilled, UnfilledSlot{SlotID: slot.ID, Exclusions: excluded})
			continue
		}

		pick := ranked[0]
		plan.Assignments = append(plan.Assignments, Assignment{
			SlotID:      slot.ID,
			MemberID:    pick.MemberID,
			Suitability: pick,
		})

		for i := range working {
			if working[i].MemberID != pick.MemberID {
				continue
			}
			working[i].AssignmentCount++
			if working[i].MonthlyAssignments == nil {
				working[i].MonthlyAssignments = make(map[string]int, 1)
			}
			working[i].MonthlyAssignments[model.MonthKey(slot.Date)]++
			at := slot.Date
			working[i].LastAssignedAt = &at
			break
		}
	}

	return plan, nil
}
