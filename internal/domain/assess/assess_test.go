package assess

import (
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

type unknownInput struct{}

func (unknownInput) SubjectID() string    { return "x" }
func (unknownInput) SubjectType() string  { return "x" }
func (unknownInput) Branch() string       { return "x" }
func (unknownInput) Domain() types.Domain { return types.DomainChurnRisk }

func TestEngineDispatch(t *testing.T) {
	convey.Convey("Given an engine with default scorers", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		engine := NewEngine()

		convey.Convey("When a churn input is computed", func() {
			a, err := engine.Compute(ChurnInput{Member: churnMember()}, asOf)

			convey.Convey("Then the churn scorer handled it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(a.Domain, convey.ShouldEqual, types.DomainChurnRisk)
				convey.So(a.SubjectID, convey.ShouldEqual, "member-1")
				convey.So(a.ComputedAt, convey.ShouldEqual, asOf)
			})
		})

		convey.Convey("When a prayer input is computed", func() {
			a, err := engine.Compute(prayerInput("pray for rain", asOf, false, false), asOf)

			convey.Convey("Then the prayer scorer handled it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(a.Domain, convey.ShouldEqual, types.DomainPrayerPriority)
				convey.So(a.SubjectType, convey.ShouldEqual, "prayer_request")
			})
		})

		convey.Convey("When an SMS input is computed", func() {
			a, err := engine.Compute(smsInput(model.SMSStats{OptedOut: true}), asOf)

			convey.Convey("Then the SMS scorer handled it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(a.Domain, convey.ShouldEqual, types.DomainSMSEngagement)
				convey.So(a.Score, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When an unrecognized input type is computed", func() {
			_, err := engine.Compute(unknownInput{}, asOf)

			convey.Convey("Then the engine rejects it", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, ErrUnknownInput), convey.ShouldBeTrue)
			})
		})
	})
}

func TestEngineOptions(t *testing.T) {
	convey.Convey("Given scorer overrides", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		engine := NewEngine(
			WithChurnScorer(NewChurnScorer(WithChurnWeights(0.8, 0.1, 0.1))),
			WithHouseholdScorer(NewHouseholdScorer(WithPartialBoundary(50, 20))),
		)

		convey.Convey("When a churn input runs through the engine", func() {
			in := ChurnInput{
				Member:    churnMember(),
				Donations: monthlyDonations(asOf, 6, 15, 150),
			}
			a, err := engine.Compute(in, asOf)

			convey.Convey("Then the override weights apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(a.Factors["gift_recency"].Weight, convey.ShouldEqual, 0.8)
			})
		})

		convey.Convey("When a nil override is supplied", func() {
			e := NewEngine(WithPrayerScorer(nil))
			_, err := e.Compute(prayerInput("pray for rain", asOf, false, false), asOf)

			convey.Convey("Then the default scorer stays in place", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestHistoryConfidence(t *testing.T) {
	convey.Convey("Given varying history depth", t, func() {
		convey.Convey("Then confidence scales with observations and clamps at 95", func() {
			convey.So(historyConfidence(0), convey.ShouldEqual, 40)
			convey.So(historyConfidence(4), convey.ShouldEqual, 60)
			convey.So(historyConfidence(11), convey.ShouldEqual, 95)
			convey.So(historyConfidence(1000), convey.ShouldEqual, 95)
		})
	})
}
