// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/assess"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// Wire shapes for assessment subjects. Each subject carries the payload for
// exactly one domain; the domain field selects which block must be present.

type memberDTO struct {
	MemberID  string `json:"member_id"`
	BranchID  string `json:"branch_id"`
	JoinedAt  string `json:"joined_at"`
	SMSOptOut bool   `json:"sms_opt_out"`
}

type donationDTO struct {
	Amount   float64 `json:"amount"`
	GivenAt  string  `json:"given_at"`
	Category string  `json:"category"`
}

type clusterDTO struct {
	ClusterID  string  `json:"cluster_id"`
	BranchID   string  `json:"branch_id"`
	Attendance float64 `json:"attendance"`
	Engagement float64 `json:"engagement"`
	Growth     float64 `json:"growth"`
	Retention  float64 `json:"retention"`
	Leadership float64 `json:"leadership"`
}

type householdDTO struct {
	HouseholdID  string             `json:"household_id"`
	BranchID     string             `json:"branch_id"`
	MemberScores map[string]float64 `json:"member_scores"`
}

type prayerDTO struct {
	ID          string `json:"id"`
	MemberID    string `json:"member_id"`
	Text        string `json:"text"`
	SubmittedAt string `json:"submitted_at"`
	Anonymous   bool   `json:"anonymous"`
	LeadersOnly bool   `json:"leaders_only"`
}

type smsDTO struct {
	MemberID    string  `json:"member_id"`
	OptedOut    bool    `json:"opted_out"`
	Sent        int     `json:"sent"`
	Delivered   int     `json:"delivered"`
	LastReplyAt *string `json:"last_reply_at,omitempty"`
	OptedInAt   string  `json:"opted_in_at"`
}

// subjectRequest is one assessment subject on the wire.
type subjectRequest struct {
	Domain        string        `json:"domain"`
	Member        *memberDTO    `json:"member,omitempty"`
	Donations     []donationDTO `json:"donations,omitempty"`
	Attended      []string      `json:"attended,omitempty"`
	PreviousStage *string       `json:"previous_stage,omitempty"`
	Cluster       *clusterDTO   `json:"cluster,omitempty"`
	Household     *householdDTO `json:"household,omitempty"`
	Prayer        *prayerDTO    `json:"prayer,omitempty"`
	SMS           *smsDTO       `json:"sms,omitempty"`
}

func parseTime(raw, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s; must be RFC3339", field)
	}
	return t, nil
}

func parseTimes(raws []string, field string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raws))
	for _, raw := range raws {
		t, err := parseTime(raw, field)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (d memberDTO) toModel() (model.MemberSnapshot, error) {
	if d.MemberID == "" {
		return model.MemberSnapshot{}, errors.New("missing member.member_id")
	}
	if d.BranchID == "" {
		return model.MemberSnapshot{}, errors.New("missing member.branch_id")
	}
	joined, err := parseTime(d.JoinedAt, "member.joined_at")
	if err != nil {
		return model.MemberSnapshot{}, err
	}
	return model.MemberSnapshot{
		MemberID:  d.MemberID,
		BranchID:  d.BranchID,
		JoinedAt:  joined,
		SMSOptOut: d.SMSOptOut,
	}, nil
}

func toDonations(dtos []donationDTO) ([]model.Donation, error) {
	out := make([]model.Donation, 0, len(dtos))
	for _, d := range dtos {
		given, err := parseTime(d.GivenAt, "donations.given_at")
		if err != nil {
			return nil, err
		}
		category := model.GivingCategory(d.Category)
		if category == "" {
			category = model.GivingOther
		}
		out = append(out, model.Donation{
			Amount:   d.Amount,
			GivenAt:  given,
			Category: category,
		})
	}
	return out, nil
}

// toInput converts the wire subject to the typed input for its domain.
func (r subjectRequest) toInput() (assess.Input, error) {
	domain, err := types.ParseDomain(r.Domain)
	if err != nil {
		return nil, err
	}

	switch domain {
	case types.DomainChurnRisk:
		if r.Member == nil {
			return nil, errors.New("missing member")
		}
		member, err := r.Member.toModel()
		if err != nil {
			return nil, err
		}
		donations, err := toDonations(r.Donations)
		if err != nil {
			return nil, err
		}
		return assess.ChurnInput{Member: member, Donations: donations}, nil

	case types.DomainAttendanceAnomaly:
		if r.Member == nil {
			return nil, errors.New("missing member")
		}
		member, err := r.Member.toModel()
		if err != nil {
			return nil, err
		}
		attended, err := parseTimes(r.Attended, "attended")
		if err != nil {
			return nil, err
		}
		return assess.AttendanceInput{Member: member, Attended: attended}, nil

	case types.DomainLifecycle:
		if r.Member == nil {
			return nil, errors.New("missing member")
		}
		member, err := r.Member.toModel()
		if err != nil {
			return nil, err
		}
		attended, err := parseTimes(r.Attended, "attended")
		if err != nil {
			return nil, err
		}
		donations, err := toDonations(r.Donations)
		if err != nil {
			return nil, err
		}
		in := assess.LifecycleInput{Member: member, Attended: attended, Donations: donations}
		if r.PreviousStage != nil {
			stage, err := types.ParseLifecycleStage(*r.PreviousStage)
			if err != nil {
				return nil, err
			}
			in.PreviousStage = stage
			in.HasPrevious = true
		}
		return in, nil

	case types.DomainClusterHealth:
		if r.Cluster == nil {
			return nil, errors.New("missing cluster")
		}
		if r.Cluster.ClusterID == "" || r.Cluster.BranchID == "" {
			return nil, errors.New("missing cluster.cluster_id or cluster.branch_id")
		}
		return assess.ClusterInput{Cluster: model.ClusterDimensions{
			ClusterID:  r.Cluster.ClusterID,
			BranchID:   r.Cluster.BranchID,
			Attendance: r.Cluster.Attendance,
			Engagement: r.Cluster.Engagement,
			Growth:     r.Cluster.Growth,
			Retention:  r.Cluster.Retention,
			Leadership: r.Cluster.Leadership,
		}}, nil

	case types.DomainHouseholdEngagement:
		if r.Household == nil {
			return nil, errors.New("missing household")
		}
		if r.Household.HouseholdID == "" || r.Household.BranchID == "" {
			return nil, errors.New("missing household.household_id or household.branch_id")
		}
		return assess.HouseholdInput{Household: model.HouseholdSnapshot{
			HouseholdID:  r.Household.HouseholdID,
			BranchID:     r.Household.BranchID,
			MemberScores: r.Household.MemberScores,
		}}, nil

	case types.DomainPrayerPriority:
		if r.Prayer == nil {
			return nil, errors.New("missing prayer")
		}
		if r.Prayer.ID == "" {
			return nil, errors.New("missing prayer.id")
		}
		submitted, err := parseTime(r.Prayer.SubmittedAt, "prayer.submitted_at")
		if err != nil {
			return nil, err
		}
		branchID := ""
		if r.Member != nil {
			branchID = r.Member.BranchID
		}
		return assess.PrayerInput{
			BranchID: branchID,
			Request: model.PrayerRequest{
				ID:          r.Prayer.ID,
				MemberID:    r.Prayer.MemberID,
				Text:        r.Prayer.Text,
				SubmittedAt: submitted,
				Anonymous:   r.Prayer.Anonymous,
				LeadersOnly: r.Prayer.LeadersOnly,
			},
		}, nil

	case types.DomainSMSEngagement:
		if r.SMS == nil {
			return nil, errors.New("missing sms")
		}
		if r.SMS.MemberID == "" {
			return nil, errors.New("missing sms.member_id")
		}
		optedIn, err := parseTime(r.SMS.OptedInAt, "sms.opted_in_at")
		if err != nil {
			return nil, err
		}
		stats := model.SMSStats{
			MemberID:  r.SMS.MemberID,
			OptedOut:  r.SMS.OptedOut,
			Sent:      r.SMS.Sent,
			Delivered: r.SMS.Delivered,
			OptedInAt: optedIn,
		}
		if r.SMS.LastReplyAt != nil {
			last, err := parseTime(*r.SMS.LastReplyAt, "sms.last_reply_at")
			if err != nil {
				return nil, err
			}
			stats.LastReplyAt = &last
		}
		branchID := ""
		if r.Member != nil {
			branchID = r.Member.BranchID
		}
		return assess.SMSInput{BranchID: branchID, Stats: stats}, nil
	}

	return nil, fmt.Errorf("unsupported domain: %q", r.Domain)
}

// Roster wire shapes.

type dateRangeDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type poolMemberDTO struct {
	MemberID            string         `json:"member_id"`
	PoolID              string         `json:"pool_id"`
	Experience          string         `json:"experience"`
	AssignmentCount     int            `json:"assignment_count"`
	MonthlyAssignments  map[string]int `json:"monthly_assignments,omitempty"`
	LastAssignedAt      *string        `json:"last_assigned_at,omitempty"`
	MaxMonthlyAssign    int            `json:"max_monthly_assignments"`
	PreferredServiceIDs []string       `json:"preferred_service_ids,omitempty"`
	Unavailable         []dateRangeDTO `json:"unavailable,omitempty"`
	Active              bool           `json:"active"`
}

type slotDTO struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
}

func (d slotDTO) toModel() (model.Slot, error) {
	if d.ID == "" || d.Role == "" {
		return model.Slot{}, errors.New("missing slot id or role")
	}
	date, err := parseTime(d.Date, "slot.date")
	if err != nil {
		return model.Slot{}, err
	}
	return model.Slot{ID: d.ID, Role: d.Role, ServiceID: d.ServiceID, Date: date}, nil
}

func (d poolMemberDTO) toModel() (model.PoolMember, error) {
	if d.MemberID == "" {
		return model.PoolMember{}, errors.New("missing pool member_id")
	}
	tier, err := types.ParseExperienceTier(d.Experience)
	if err != nil {
		return model.PoolMember{}, err
	}
	m := model.PoolMember{
		MemberID:            d.MemberID,
		PoolID:              d.PoolID,
		Experience:          tier,
		AssignmentCount:     d.AssignmentCount,
		MonthlyAssignments:  d.MonthlyAssignments,
		MaxMonthlyAssign:    d.MaxMonthlyAssign,
		PreferredServiceIDs: d.PreferredServiceIDs,
		Active:              d.Active,
	}
	if d.LastAssignedAt != nil {
		last, err := parseTime(*d.LastAssignedAt, "pool.last_assigned_at")
		if err != nil {
			return model.PoolMember{}, err
		}
		m.LastAssignedAt = &last
	}
	for _, r := range d.Unavailable {
		start, err := parseTime(r.Start, "pool.unavailable.start")
		if err != nil {
			return model.PoolMember{}, err
		}
		end, err := parseTime(r.End, "pool.unavailable.end")
		if err != nil {
			return model.PoolMember{}, err
		}
		m.Unavailable = append(m.Unavailable, model.DateRange{Start: start, End: end})
	}
	return m, nil
}

func toSlots(dtos []slotDTO) ([]model.Slot, error) {
	out := make([]model.Slot, 0, len(dtos))
	for _, d := range dtos {
		s, err := d.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func toPool(dtos []poolMemberDTO) ([]model.PoolMember, error) {
	out := make([]model.PoolMember, 0, len(dtos))
	for _, d := range dtos {
		m, err := d.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
