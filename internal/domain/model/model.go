// Package model contains the plain data records the insight engine reads.
// These mirror what the tenant persistence layer loads for a scoring run;
// none of them carry behavior, and scorers never mutate them.
package model

import (
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// MemberSnapshot is the slice of a member record the scorers need.
type MemberSnapshot struct {
	MemberID  string
	BranchID  string
	JoinedAt  time.Time
	SMSOptOut bool
}

// GivingCategory buckets donations for forecast breakdowns.
type GivingCategory string

// Giving categories.
const (
	GivingTithe    GivingCategory = "tithe"
	GivingOffering GivingCategory = "offering"
	GivingSpecial  GivingCategory = "special"
	GivingOther    GivingCategory = "other"
)

// Donation is a single recorded gift.
type Donation struct {
	MemberID string
	Amount   float64
	GivenAt  time.Time
	Category GivingCategory
}

// PrayerRequest is a free-text request with routing metadata.
type PrayerRequest struct {
	ID          string
	MemberID    string
	Text        string
	SubmittedAt time.Time
	Anonymous   bool
	LeadersOnly bool
}

// SMSStats summarizes a member's message delivery history.
type SMSStats struct {
	MemberID    string
	OptedOut    bool
	Sent        int
	Delivered   int
	LastReplyAt *time.Time
	OptedInAt   time.Time
}

// HouseholdSnapshot carries per-member engagement scores for one household.
// The scores themselves come from earlier member-level assessment runs.
type HouseholdSnapshot struct {
	HouseholdID  string
	BranchID     string
	MemberScores map[string]float64
}

// ClusterDimensions holds the five 0-100 dimension sub-scores for a
// small-group cluster, computed upstream from raw attendance and roster facts.
type ClusterDimensions struct {
	ClusterID  string
	BranchID   string
	Attendance float64
	Engagement float64
	Growth     float64
	Retention  float64
	Leadership float64
}

// DateRange is an inclusive date interval, used for recorded unavailability.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the range, comparing by calendar day.
func (r DateRange) Contains(d time.Time) bool {
	day := d.Truncate(24 * time.Hour)
	return !day.Before(r.Start.Truncate(24*time.Hour)) && !day.After(r.End.Truncate(24*time.Hour))
}

// PoolMember is one volunteer's standing in a roster pool. AssignmentCount and
// LastAssignedAt are only advanced by the assignment optimizer's working copy;
// the persisted record is updated when a plan is committed.
type PoolMember struct {
	MemberID            string
	PoolID              string
	Experience          types.ExperienceTier
	AssignmentCount     int
	MonthlyAssignments  map[string]int // committed assignments keyed by MonthKey
	LastAssignedAt      *time.Time
	MaxMonthlyAssign    int // 0 means unlimited
	PreferredServiceIDs []string
	Unavailable         []DateRange
	Active              bool
}

// MonthKey is the calendar-month key MonthlyAssignments is indexed by.
func MonthKey(d time.Time) string {
	return d.Format("2006-01")
}

// PrefersService reports whether the member declared a preference for serviceID.
func (m PoolMember) PrefersService(serviceID string) bool {
	for _, id := range m.PreferredServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// Slot is one (role, date) unit of roster work requiring exactly one assignee.
type Slot struct {
	ID        string
	Role      string // pool identifier
	ServiceID string
	Date      time.Time
}

// AlertRule configures one alert family for one branch. LastTriggeredAt is the
// only field the trigger engine writes.
type AlertRule struct {
	BranchID        string          `json:"branch_id"`
	Type            types.AlertType `json:"type"`
	Enabled         bool            `json:"enabled"`
	Threshold       float64         `json:"threshold"` // 0 means use the engine default for the type
	Channels        []string        `json:"channels,omitempty"`
	RecipientRoles  []string        `json:"recipient_roles,omitempty"`
	CooldownHours   int             `json:"cooldown_hours"`
	LastTriggeredAt *time.Time      `json:"last_triggered_at,omitempty"`
}
