// Package alerts evaluates assessment batches against per-branch alert rules
// and emits batched, cooldown-gated alert events.
package alerts

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/assess"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// Severity margins over the rule threshold. A subject barely past the
// threshold is informational; one deep past it is critical.
const (
	warningMargin  = 10.0
	criticalMargin = 20.0

	defaultCooldownHours = 24
)

// defaultThresholds are used when a branch has not configured a rule for the
// alert type. Risk-style families fire above the threshold, health-style
// families fire below it.
var defaultThresholds = map[types.AlertType]float64{
	types.AlertChurnRisk:           70,
	types.AlertAttendanceAnomaly:   70,
	types.AlertPrayerUrgent:        90,
	types.AlertClusterHealth:       40,
	types.AlertHouseholdEngagement: 40,
	types.AlertSMSEngagement:       20,
}

// firesAbove marks the alert families whose score crossing direction is
// upward. The remaining families fire when scores fall to the threshold.
var firesAbove = map[types.AlertType]bool{
	types.AlertChurnRisk:         true,
	types.AlertAttendanceAnomaly: true,
	types.AlertPrayerUrgent:      true,
}

// Subject is one assessment that crossed the rule threshold.
type Subject struct {
	SubjectID       string   `json:"subject_id"`
	SubjectType     string   `json:"subject_type"`
	Score           float64  `json:"score"`
	Level           string   `json:"level"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Event is one batched alert: every crossing subject for a (branch, type)
// pair in a single evaluation, under one event ID.
type Event struct {
	ID             string          `json:"id"`
	BranchID       string          `json:"branch_id"`
	Type           types.AlertType `json:"type"`
	Severity       types.Severity  `json:"severity"`
	Subjects       []Subject       `json:"subjects"`
	Channels       []string        `json:"channels,omitempty"`
	RecipientRoles []string        `json:"recipient_roles,omitempty"`
	TriggeredAt    time.Time       `json:"triggered_at"`
}

type ruleKey struct {
	branchID  string
	alertType types.AlertType
}

// ruleState serializes evaluation per rule so concurrent batch workers cannot
// double-fire inside a cooldown window.
type ruleState struct {
	mu   sync.Mutex
	rule model.AlertRule
}

// Engine holds alert rules and evaluates assessment batches against them.
type Engine struct {
	mu    sync.Mutex
	rules map[ruleKey]*ruleState
}

// NewEngine creates an alert engine with no configured rules; branches fall
// back to the default threshold table until a rule is upserted.
func NewEngine() *Engine {
	return &Engine{rules: make(map[ruleKey]*ruleState)}
}

// UpsertRule installs or replaces a branch's rule for one alert type. A zero
// threshold or cooldown takes the type's default. The previous trigger
// timestamp survives a rule edit so updating a threshold does not reset an
// active cooldown.
func (e *Engine) UpsertRule(rule model.AlertRule) error {
	if rule.BranchID == "" {
		return ErrMissingBranch
	}
	if _, err := types.ParseAlertType(string(rule.Type)); err != nil {
		return err
	}
	if rule.Threshold == 0 {
		rule.Threshold = defaultThresholds[rule.Type]
	}
	if rule.CooldownHours <= 0 {
		rule.CooldownHours = defaultCooldownHours
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	key := ruleKey{branchID: rule.BranchID, alertType: rule.Type}
	if existing, ok := e.rules[key]; ok {
		existing.mu.Lock()
		if rule.LastTriggeredAt == nil {
			rule.LastTriggeredAt = existing.rule.LastTriggeredAt
		}
		existing.rule = rule
		existing.mu.Unlock()
		return nil
	}
	e.rules[key] = &ruleState{rule: rule}
	return nil
}

// Rule returns the effective rule for a branch and alert type, synthesizing
// an enabled default when none was configured.
func (e *Engine) Rule(branchID string, t types.AlertType) model.AlertRule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state(branchID, t).rule
}

// state must be called with e.mu held.
func (e *Engine) state(branchID string, t types.AlertType) *ruleState {
	key := ruleKey{branchID: branchID, alertType: t}
	if st, ok := e.rules[key]; ok {
		return st
	}
	st := &ruleState{rule: model.AlertRule{
		BranchID:      branchID,
		Type:          t,
		Enabled:       true,
		Threshold:     defaultThresholds[t],
		CooldownHours: defaultCooldownHours,
	}}
	e.rules[key] = st
	return st
}

// Evaluate checks a batch of assessments against the branch's rules and
// returns at most one event per alert type. Assessments for other branches
// are ignored. A rule inside its cooldown window emits nothing and the
// crossing subjects are dropped, not queued.
func (e *Engine) Evaluate(branchID string, assessments []assess.Assessment, asOf time.Time) []Event {
	byType := make(map[types.AlertType][]assess.Assessment)
	for _, a := range assessments {
		if a.BranchID != branchID {
			continue
		}
		t, err := types.AlertTypeForDomain(a.Domain)
		if err != nil {
			continue
		}
		byType[t] = append(byType[t], a)
	}

	alertTypes := make([]types.AlertType, 0, len(byType))
	for t := range byType {
		alertTypes = append(alertTypes, t)
	}
	sort.Slice(alertTypes, func(i, j int) bool { return alertTypes[i] < alertTypes[j] })

	var events []Event
	for _, t := range alertTypes {
		if ev, ok := e.evaluateType(branchID, t, byType[t], asOf); ok {
			events = append(events, ev)
		}
	}
	return events
}

func (e *Engine) evaluateType(branchID string, t types.AlertType, batch []assess.Assessment, asOf time.Time) (Event, bool) {
	e.mu.Lock()
	st := e.state(branchID, t)
	e.mu.Unlock()

	st.mu.Lock()
	defer st.mu.Unlock()

	rule := st.rule
	if !rule.Enabled {
		return Event{}, false
	}
	if rule.LastTriggeredAt != nil {
		cooldown := time.Duration(rule.CooldownHours) * time.Hour
		if asOf.Sub(*rule.LastTriggeredAt) < cooldown {
			return Event{}, false
		}
	}

	var subjects []Subject
	var worstMargin float64
	for _, a := range batch {
		margin, crossed := crossing(t, rule.Threshold, a.Score)
		if !crossed {
			continue
		}
		if margin > worstMargin {
			worstMargin = margin
		}
		subjects = append(subjects, Subject{
			SubjectID:       a.SubjectID,
			SubjectType:     a.SubjectType,
			Score:           a.Score,
			Level:           a.Level,
			Recommendations: a.Recommendations,
		})
	}
	if len(subjects) == 0 {
		return Event{}, false
	}

	sort.Slice(subjects, func(i, j int) bool {
		mi, _ := crossing(t, rule.Threshold, subjects[i].Score)
		mj, _ := crossing(t, rule.Threshold, subjects[j].Score)
		if mi != mj {
			return mi > mj
		}
		return subjects[i].SubjectID < subjects[j].SubjectID
	})

	triggered := asOf
	st.rule.LastTriggeredAt = &triggered

	return Event{
		ID:             uuid.NewString(),
		BranchID:       branchID,
		Type:           t,
		Severity:       severityFor(worstMargin),
		Subjects:       subjects,
		Channels:       rule.Channels,
		RecipientRoles: rule.RecipientRoles,
		TriggeredAt:    asOf,
	}, true
}

// crossing reports whether a score crosses the rule threshold in the alert
// family's direction, and by how much.
func crossing(t types.AlertType, threshold, score float64) (float64, bool) {
	if firesAbove[t] {
		return score - threshold, score >= threshold
	}
	return threshold - score, score <= threshold
}

func severityFor(margin float64) types.Severity {
	switch {
	case margin >= criticalMargin:
		return types.SeverityCritical
	case margin >= warningMargin:
		return types.SeverityWarning
	default:
		return types.SeverityInfo
	}
}
