// Package types contains the closed classification types shared across the
// insight engine: assessment domains, ordered levels, and their score bands.
//
// Every level is derived solely from the clamped 0-100 score via fixed,
// non-overlapping bands (household engagement additionally consults a variance
// signal, handled in the assess package). Unknown string values are rejected
// at parse time rather than silently defaulted.
package types

import "fmt"

// Domain identifies one assessment family.
type Domain string

// Assessment domains.
const (
	DomainChurnRisk           Domain = "churn_risk"
	DomainAttendanceAnomaly   Domain = "attendance_anomaly"
	DomainLifecycle           Domain = "lifecycle"
	DomainClusterHealth       Domain = "cluster_health"
	DomainHouseholdEngagement Domain = "household_engagement"
	DomainPrayerPriority      Domain = "prayer_priority"
	DomainSMSEngagement       Domain = "sms_engagement"
)

// Domains lists every known assessment domain in stable order.
func Domains() []Domain {
	return []Domain{
		DomainChurnRisk,
		DomainAttendanceAnomaly,
		DomainLifecycle,
		DomainClusterHealth,
		DomainHouseholdEngagement,
		DomainPrayerPriority,
		DomainSMSEngagement,
	}
}

// ParseDomain validates a raw domain string.
func ParseDomain(s string) (Domain, error) {
	for _, d := range Domains() {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown assessment domain: %q", s)
}

// RiskLevel is the churn / anomaly classification. Higher scores mean more risk.
type RiskLevel string

// Risk levels, ordered from least to most concerning.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskLevelFor maps a clamped 0-100 risk score to its band.
// Bands: low <40, medium 40-69, high >=70.
func RiskLevelFor(score float64) RiskLevel {
	switch {
	case score >= 70:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

// NeedsAttention reports whether the level should be surfaced to staff.
func (r RiskLevel) NeedsAttention() bool { return r == RiskHigh }

// Label returns the human-readable form.
func (r RiskLevel) Label() string {
	switch r {
	case RiskLow:
		return "Low Risk"
	case RiskMedium:
		return "Medium Risk"
	case RiskHigh:
		return "High Risk"
	}
	return string(r)
}

// LifecycleStage is the 8-stage member journey, totally ordered by
// engagement priority.
type LifecycleStage int

// Lifecycle stages in engagement-priority order.
const (
	StageProspect LifecycleStage = iota
	StageNewMember
	StageGrowing
	StageEngaged
	StageDisengaging
	StageAtRisk
	StageDormant
	StageInactive
)

var stageNames = map[LifecycleStage]string{
	StageProspect:    "prospect",
	StageNewMember:   "new_member",
	StageGrowing:     "growing",
	StageEngaged:     "engaged",
	StageDisengaging: "disengaging",
	StageAtRisk:      "at_risk",
	StageDormant:     "dormant",
	StageInactive:    "inactive",
}

func (s LifecycleStage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("lifecycle_stage(%d)", int(s))
}

// ParseLifecycleStage validates a raw stage string.
func ParseLifecycleStage(raw string) (LifecycleStage, error) {
	for s, name := range stageNames {
		if name == raw {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown lifecycle stage: %q", raw)
}

// IsConcerning reports whether the stage requires intervention.
func (s LifecycleStage) IsConcerning() bool {
	return s == StageDisengaging || s == StageAtRisk || s == StageDormant || s == StageInactive
}

// IsPositive reports whether the stage indicates deepening engagement.
func (s LifecycleStage) IsPositive() bool {
	return s == StageGrowing || s == StageEngaged
}

// HealthLevel classifies cluster health. Higher scores mean healthier.
type HealthLevel string

// Health levels from best to worst.
const (
	HealthThriving   HealthLevel = "thriving"
	HealthHealthy    HealthLevel = "healthy"
	HealthStable     HealthLevel = "stable"
	HealthStruggling HealthLevel = "struggling"
	HealthCritical   HealthLevel = "critical"
)

// HealthLevelFor maps a clamped 0-100 health score to its band.
// Bands: thriving >=80, healthy 60-79, stable 40-59, struggling 20-39, critical <20.
func HealthLevelFor(score float64) HealthLevel {
	switch {
	case score >= 80:
		return HealthThriving
	case score >= 60:
		return HealthHealthy
	case score >= 40:
		return HealthStable
	case score >= 20:
		return HealthStruggling
	default:
		return HealthCritical
	}
}

// NeedsAttention reports whether the cluster should be flagged to leadership.
func (h HealthLevel) NeedsAttention() bool {
	return h == HealthStruggling || h == HealthCritical
}

// EngagementLevel classifies household engagement. PartiallyEngaged is the one
// level that cannot be derived from the mean score alone; it signals a high
// household mean hiding disengaged individuals.
type EngagementLevel string

// Engagement levels.
const (
	EngagementEngaged   EngagementLevel = "engaged"
	EngagementPartial   EngagementLevel = "partially_engaged"
	EngagementModerate  EngagementLevel = "moderate"
	EngagementLow       EngagementLevel = "low"
	EngagementDisengage EngagementLevel = "disengaged"
)

// UrgencyTier ranks prayer requests. Tiers are ordered; the keyword matcher
// checks from Critical downward and the first matching tier wins.
type UrgencyTier int

// Urgency tiers from least to most urgent.
const (
	UrgencyNormal UrgencyTier = iota
	UrgencyElevated
	UrgencyHigh
	UrgencyCritical
)

var urgencyNames = map[UrgencyTier]string{
	UrgencyNormal:   "normal",
	UrgencyElevated: "elevated",
	UrgencyHigh:     "high",
	UrgencyCritical: "critical",
}

func (u UrgencyTier) String() string {
	if name, ok := urgencyNames[u]; ok {
		return name
	}
	return fmt.Sprintf("urgency_tier(%d)", int(u))
}

// ParseUrgencyTier validates a raw tier string.
func ParseUrgencyTier(raw string) (UrgencyTier, error) {
	for u, name := range urgencyNames {
		if name == raw {
			return u, nil
		}
	}
	return 0, fmt.Errorf("unknown urgency tier: %q", raw)
}

// SMSLevel classifies SMS engagement and drives campaign throttling.
type SMSLevel string

// SMS engagement levels.
const (
	SMSHigh     SMSLevel = "high"
	SMSMedium   SMSLevel = "medium"
	SMSLow      SMSLevel = "low"
	SMSInactive SMSLevel = "inactive"
)

// SMSLevelFor maps a clamped 0-100 engagement score to its band.
// Bands: high >=80, medium 50-79, low 20-49, inactive <20.
func SMSLevelFor(score float64) SMSLevel {
	switch {
	case score >= 80:
		return SMSHigh
	case score >= 50:
		return SMSMedium
	case score >= 20:
		return SMSLow
	default:
		return SMSInactive
	}
}

// MonthlyCap returns the recommended maximum campaign messages per month for
// recipients at this engagement level.
func (l SMSLevel) MonthlyCap() int {
	switch l {
	case SMSHigh:
		return 8
	case SMSMedium:
		return 4
	case SMSLow:
		return 2
	default:
		return 1
	}
}

// ExperienceTier is the declared roster experience level, totally ordered.
type ExperienceTier int

// Experience tiers from least to most experienced.
const (
	TierNovice ExperienceTier = iota
	TierIntermediate
	TierExperienced
	TierExpert
)

var tierNames = map[ExperienceTier]string{
	TierNovice:       "novice",
	TierIntermediate: "intermediate",
	TierExperienced:  "experienced",
	TierExpert:       "expert",
}

func (t ExperienceTier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("experience_tier(%d)", int(t))
}

// ParseExperienceTier validates a raw tier string.
func ParseExperienceTier(raw string) (ExperienceTier, error) {
	for t, name := range tierNames {
		if name == raw {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown experience tier: %q", raw)
}

// SuitabilityRating is the display classification of a suitability score.
// It drives UI affordance only; the optimizer selects on the raw score.
type SuitabilityRating string

// Suitability ratings.
const (
	SuitabilityExcellent SuitabilityRating = "excellent"
	SuitabilityGood      SuitabilityRating = "good"
	SuitabilityFair      SuitabilityRating = "fair"
	SuitabilityPoor      SuitabilityRating = "poor"
)

// SuitabilityRatingFor maps a clamped 0-100 suitability score to its band.
// Bands: excellent >=80, good 60-79, fair 40-59, poor <40.
func SuitabilityRatingFor(score float64) SuitabilityRating {
	switch {
	case score >= 80:
		return SuitabilityExcellent
	case score >= 60:
		return SuitabilityGood
	case score >= 40:
		return SuitabilityFair
	default:
		return SuitabilityPoor
	}
}

// Severity grades alert events.
type Severity string

// Alert severities.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertType identifies a configurable alert family. Each assessment domain
// maps to exactly one alert type.
type AlertType string

// Alert types.
const (
	AlertChurnRisk           AlertType = "churn_risk"
	AlertAttendanceAnomaly   AlertType = "attendance_anomaly"
	AlertClusterHealth       AlertType = "cluster_health"
	AlertHouseholdEngagement AlertType = "household_engagement"
	AlertPrayerUrgent        AlertType = "prayer_urgent"
	AlertSMSEngagement       AlertType = "sms_engagement"
)

// AlertTypeForDomain returns the alert type covering an assessment domain.
// Lifecycle transitions are reported through the churn alert family because
// both describe the same disengagement concern.
func AlertTypeForDomain(d Domain) (AlertType, error) {
	switch d {
	case DomainChurnRisk, DomainLifecycle:
		return AlertChurnRisk, nil
	case DomainAttendanceAnomaly:
		return AlertAttendanceAnomaly, nil
	case DomainClusterHealth:
		return AlertClusterHealth, nil
	case DomainHouseholdEngagement:
		return AlertHouseholdEngagement, nil
	case DomainPrayerPriority:
		return AlertPrayerUrgent, nil
	case DomainSMSEngagement:
		return AlertSMSEngagement, nil
	}
	return "", fmt.Errorf("no alert type for domain: %q", d)
}

// ParseAlertType validates a raw alert type string.
func ParseAlertType(raw string) (AlertType, error) {
	for _, t := range []AlertType{
		AlertChurnRisk,
		AlertAttendanceAnomaly,
		AlertClusterHealth,
		AlertHouseholdEngagement,
		AlertPrayerUrgent,
		AlertSMSEngagement,
	} {
		if string(t) == raw {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown alert type: %q", raw)
}
