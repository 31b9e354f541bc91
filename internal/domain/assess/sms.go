package assess

import (
	"time"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/scoring"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// SMS engagement weights. Opt-out is a hard override evaluated before any
// factor: an opted-out member scores exactly 0 and classifies Inactive.
const (
	smsDeliveryWeight = 0.5
	smsReplyWeight    = 0.3
	smsTenureWeight   = 0.2

	smsReplyHorizonDays  = 90
	smsTenureTargetMonth = 12
)

var smsRecommendations = map[string]string{
	"delivery_rate": "Messages are failing to deliver; verify the phone number.",
	"reply_recency": "No recent replies; try a different message time or channel.",
}

// SMSInput is a member's messaging history ready for engagement scoring.
type SMSInput struct {
	BranchID string
	Stats    model.SMSStats
}

func (in SMSInput) SubjectID() string    { return in.Stats.MemberID }
func (in SMSInput) SubjectType() string  { return "member" }
func (in SMSInput) Branch() string       { return in.BranchID }
func (in SMSInput) Domain() types.Domain { return types.DomainSMSEngagement }

// SMSResult is the typed outcome of an SMS engagement run. MonthlyCap is the
// recommended campaign throttle for this recipient.
type SMSResult struct {
	Assessment Assessment
	Level      types.SMSLevel
	MonthlyCap int
}

// SMSScorer grades messaging engagement for campaign throttling.
type SMSScorer struct{}

// NewSMSScorer creates an SMS engagement scorer.
func NewSMSScorer() *SMSScorer {
	return &SMSScorer{}
}

// Score grades one member as of the given time.
func (s *SMSScorer) Score(in SMSInput, asOf time.Time) SMSResult {
	if in.Stats.OptedOut {
		f := scoring.NewFactor("sms_opt_out", 1, 0, 0,
			"Member opted out of SMS; engagement is zero regardless of history.")
		a := newAssessment(in, 0, string(types.SMSInactive), 100, []scoring.Factor{f}, nil, asOf)
		return SMSResult{Assessment: a, Level: types.SMSInactive, MonthlyCap: types.SMSInactive.MonthlyCap()}
	}

	var factors []scoring.Factor

	if in.Stats.Sent > 0 {
		rate := float64(in.Stats.Delivered) / float64(in.Stats.Sent)
		factors = append(factors, scoring.NewFactor("delivery_rate", rate,
			scoring.Ratio(rate, 1), smsDeliveryWeight,
			"Share of sent messages that were delivered."))
	}

	if in.Stats.LastReplyAt != nil && !in.Stats.LastReplyAt.After(asOf) {
		days := asOf.Sub(*in.Stats.LastReplyAt).Hours() / 24
		factors = append(factors, scoring.NewFactor("reply_recency", days,
			100-scoring.Ratio(days, smsReplyHorizonDays), smsReplyWeight,
			"How recently the member replied to a message."))
	}

	if !in.Stats.OptedInAt.IsZero() && in.Stats.OptedInAt.Before(asOf) {
		months := asOf.Sub(in.Stats.OptedInAt).Hours() / (24 * 30)
		factors = append(factors, scoring.NewFactor("opt_in_tenure", months,
			scoring.Ratio(months, smsTenureTargetMonth), smsTenureWeight,
			"How long the member has stayed opted in."))
	}

	score := scoring.Aggregate(factors)
	level := types.SMSLevelFor(score)
	recs := scoring.Recommend(scoring.Below(factors, 40), smsRecommendations, maxRecommendations)
	a := newAssessment(in, score, string(level), historyConfidence(in.Stats.Sent), factors, recs, asOf)

	return SMSResult{Assessment: a, Level: level, MonthlyCap: level.MonthlyCap()}
}
