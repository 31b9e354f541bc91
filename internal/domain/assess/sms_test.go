package assess

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

func smsInput(stats model.SMSStats) SMSInput {
	stats.MemberID = "member-1"
	return SMSInput{BranchID: "branch-1", Stats: stats}
}

func TestSMSScorerOptOut(t *testing.T) {
	convey.Convey("Given a member who opted out of SMS", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewSMSScorer()

		result := scorer.Score(smsInput(model.SMSStats{
			OptedOut:  true,
			Sent:      40,
			Delivered: 40,
		}), asOf)

		convey.Convey("Then history is ignored and the member is inactive", func() {
			convey.So(result.Assessment.Score, convey.ShouldEqual, 0)
			convey.So(result.Level, convey.ShouldEqual, types.SMSInactive)
			convey.So(result.MonthlyCap, convey.ShouldEqual, 1)
		})

		convey.Convey("Then the override is fully confident and explained", func() {
			convey.So(result.Assessment.Confidence, convey.ShouldEqual, 100)
			convey.So(len(result.Assessment.Factors), convey.ShouldEqual, 1)
			convey.So(result.Assessment.Factors, convey.ShouldContainKey, "sms_opt_out")
		})
	})
}

func TestSMSScorerHealthyRecipient(t *testing.T) {
	convey.Convey("Given a long-tenured recipient with strong delivery and a fresh reply", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		lastReply := asOf.AddDate(0, 0, -5)
		scorer := NewSMSScorer()

		result := scorer.Score(smsInput(model.SMSStats{
			Sent:        50,
			Delivered:   49,
			LastReplyAt: &lastReply,
			OptedInAt:   asOf.AddDate(-2, 0, 0),
		}), asOf)

		convey.Convey("Then the member grades high with the full monthly cap", func() {
			convey.So(result.Assessment.Score, convey.ShouldEqual, 97.33)
			convey.So(result.Level, convey.ShouldEqual, types.SMSHigh)
			convey.So(result.MonthlyCap, convey.ShouldEqual, 8)
		})

		convey.Convey("Then confidence saturates from the send volume", func() {
			convey.So(result.Assessment.Confidence, convey.ShouldEqual, 95)
		})

		convey.Convey("Then all three factors are present", func() {
			convey.So(len(result.Assessment.Factors), convey.ShouldEqual, 3)
		})
	})
}

func TestSMSScorerModerateRecipient(t *testing.T) {
	convey.Convey("Given a recipient with middling delivery and a stale reply", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		lastReply := asOf.AddDate(0, 0, -45)
		scorer := NewSMSScorer()

		result := scorer.Score(smsInput(model.SMSStats{
			Sent:        20,
			Delivered:   14,
			LastReplyAt: &lastReply,
			OptedInAt:   asOf.AddDate(0, 0, -180),
		}), asOf)

		convey.Convey("Then the member grades medium with a throttled cap", func() {
			convey.So(result.Assessment.Score, convey.ShouldEqual, 60)
			convey.So(result.Level, convey.ShouldEqual, types.SMSMedium)
			convey.So(result.MonthlyCap, convey.ShouldEqual, 4)
		})
	})
}

func TestSMSScorerFailingDelivery(t *testing.T) {
	convey.Convey("Given a new recipient whose messages mostly fail", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewSMSScorer()

		result := scorer.Score(smsInput(model.SMSStats{
			Sent:      10,
			Delivered: 2,
			OptedInAt: asOf.AddDate(0, 0, -30),
		}), asOf)

		convey.Convey("Then the member grades inactive", func() {
			convey.So(result.Assessment.Score, convey.ShouldEqual, 11.67)
			convey.So(result.Level, convey.ShouldEqual, types.SMSInactive)
			convey.So(result.MonthlyCap, convey.ShouldEqual, 1)
		})

		convey.Convey("Then the delivery problem drives the recommendation", func() {
			convey.So(len(result.Assessment.Recommendations), convey.ShouldEqual, 1)
			convey.So(result.Assessment.Recommendations[0], convey.ShouldContainSubstring, "failing to deliver")
		})
	})
}
