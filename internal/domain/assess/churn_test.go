package assess

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

func churnMember() model.MemberSnapshot {
	return model.MemberSnapshot{
		MemberID: "member-1",
		BranchID: "branch-1",
		JoinedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func monthlyDonations(asOf time.Time, count int, daysBack int, amount float64) []model.Donation {
	out := make([]model.Donation, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, model.Donation{
			Amount:   amount,
			GivenAt:  asOf.AddDate(0, 0, -daysBack-30*i),
			Category: model.GivingTithe,
		})
	}
	return out
}

func TestChurnScorerNoHistory(t *testing.T) {
	convey.Convey("Given a member with no donation history", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewChurnScorer()

		result := scorer.Score(ChurnInput{Member: churnMember()}, asOf)

		convey.Convey("Then the score should be exactly zero", func() {
			convey.So(result.Assessment.Score, convey.ShouldEqual, 0)
			convey.So(result.Level, convey.ShouldEqual, types.RiskLow)
			convey.So(result.NeedsAttention, convey.ShouldBeFalse)
		})

		convey.Convey("Then the single factor should name the policy", func() {
			convey.So(len(result.Assessment.Factors), convey.ShouldEqual, 1)
			_, ok := result.Assessment.Factors["no_donation_history"]
			convey.So(ok, convey.ShouldBeTrue)
		})

		convey.Convey("Then confidence should be full", func() {
			convey.So(result.Assessment.Confidence, convey.ShouldEqual, 100)
		})
	})
}

func TestChurnScorerRegularGiver(t *testing.T) {
	convey.Convey("Given a member who gives steadily every month", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewChurnScorer()

		in := ChurnInput{
			Member:    churnMember(),
			Donations: monthlyDonations(asOf, 6, 15, 100),
		}
		result := scorer.Score(in, asOf)

		convey.Convey("Then the risk should be low", func() {
			convey.So(result.Level, convey.ShouldEqual, types.RiskLow)
			convey.So(result.Assessment.Score, convey.ShouldBeLessThan, 40)
			convey.So(result.NeedsAttention, convey.ShouldBeFalse)
		})

		convey.Convey("Then the recency factor should be scaled to their own interval", func() {
			f, ok := result.Assessment.Factors["gift_recency"]
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(f.Raw, convey.ShouldEqual, 15)
			// 15 days against a 30-day interval is half an interval, one sixth
			// of the three-interval saturation point.
			convey.So(f.Normalized, convey.ShouldAlmostEqual, 100.0/6.0, 0.01)
		})
	})
}

func TestChurnScorerLapsedGiver(t *testing.T) {
	convey.Convey("Given a monthly giver whose last gift is four months old", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewChurnScorer()

		in := ChurnInput{
			Member:    churnMember(),
			Donations: monthlyDonations(asOf, 6, 120, 100),
		}
		result := scorer.Score(in, asOf)

		convey.Convey("Then every risk factor should saturate", func() {
			convey.So(result.Assessment.Score, convey.ShouldEqual, 100)
			convey.So(result.Level, convey.ShouldEqual, types.RiskHigh)
			convey.So(result.NeedsAttention, convey.ShouldBeTrue)
		})

		convey.Convey("Then the frequency factor should reflect the full drop", func() {
			f, ok := result.Assessment.Factors["giving_frequency"]
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(f.Normalized, convey.ShouldEqual, 100)
		})

		convey.Convey("Then recommendations should name the driving factors", func() {
			convey.So(len(result.Assessment.Recommendations), convey.ShouldBeGreaterThan, 0)
		})
	})
}

func TestChurnScorerImprovingTrend(t *testing.T) {
	convey.Convey("Given a member whose gift amounts are rising", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewChurnScorer()

		recent := monthlyDonations(asOf, 3, 15, 200)
		prior := monthlyDonations(asOf, 3, 105, 100)
		donations := append(recent, prior...)
		result := scorer.Score(ChurnInput{Member: churnMember(), Donations: donations}, asOf)

		convey.Convey("Then the trend factor should carry a negative weight", func() {
			f, ok := result.Assessment.Factors["increasing_trend"]
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(f.Weight, convey.ShouldBeLessThan, 0)
		})

		convey.Convey("Then no declining trend factor should exist", func() {
			_, ok := result.Assessment.Factors["declining_trend"]
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestChurnScorerSingleGift(t *testing.T) {
	convey.Convey("Given a member with a single recorded gift", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewChurnScorer()

		in := ChurnInput{
			Member: churnMember(),
			Donations: []model.Donation{
				{Amount: 50, GivenAt: asOf.AddDate(0, 0, -45), Category: model.GivingOffering},
			},
		}
		result := scorer.Score(in, asOf)

		convey.Convey("Then the fallback interval should be used for recency", func() {
			f := result.Assessment.Factors["gift_recency"]
			// 45 days against the 30-day fallback interval is half the
			// three-interval saturation point.
			convey.So(f.Normalized, convey.ShouldAlmostEqual, 50, 0.01)
		})
	})
}

func TestChurnScorerWeightOverrides(t *testing.T) {
	convey.Convey("Given a churn scorer with custom weights", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

		convey.Convey("When positive overrides are supplied", func() {
			scorer := NewChurnScorer(WithChurnWeights(0.8, 0.1, 0.1))
			in := ChurnInput{Member: churnMember(), Donations: monthlyDonations(asOf, 6, 120, 100)}
			result := scorer.Score(in, asOf)

			convey.Convey("Then the override should flow into the factors", func() {
				convey.So(result.Assessment.Factors["gift_recency"].Weight, convey.ShouldEqual, 0.8)
			})
		})

		convey.Convey("When non-positive overrides are supplied", func() {
			scorer := NewChurnScorer(WithChurnWeights(0, -1, 0))
			in := ChurnInput{Member: churnMember(), Donations: monthlyDonations(asOf, 6, 120, 100)}
			result := scorer.Score(in, asOf)

			convey.Convey("Then the defaults should be kept", func() {
				convey.So(result.Assessment.Factors["gift_recency"].Weight, convey.ShouldEqual, 0.5)
				convey.So(result.Assessment.Factors["giving_frequency"].Weight, convey.ShouldEqual, 0.3)
			})
		})
	})
}
