package assess

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

func householdInput(scores map[string]float64) HouseholdInput {
	return HouseholdInput{Household: model.HouseholdSnapshot{
		HouseholdID:  "household-1",
		BranchID:     "branch-1",
		MemberScores: scores,
	}}
}

func TestHouseholdScorerEmpty(t *testing.T) {
	convey.Convey("Given a household with no member scores", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewHouseholdScorer()

		result := scorer.Score(householdInput(nil), asOf)

		convey.Convey("Then it classifies disengaged with a zero score", func() {
			convey.So(result.Assessment.Score, convey.ShouldEqual, 0)
			convey.So(result.Level, convey.ShouldEqual, types.EngagementDisengage)
		})
	})
}

func TestHouseholdScorerUniformlyEngaged(t *testing.T) {
	convey.Convey("Given a household where everyone is engaged", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewHouseholdScorer()

		result := scorer.Score(householdInput(map[string]float64{
			"alice": 80, "ben": 85, "cara": 90,
		}), asOf)

		convey.Convey("Then the level is engaged and the score is the mean", func() {
			convey.So(result.Assessment.Score, convey.ShouldEqual, 85)
			convey.So(result.Level, convey.ShouldEqual, types.EngagementEngaged)
		})

		convey.Convey("Then no member is flagged disengaged", func() {
			convey.So(len(result.DisengagedMembers), convey.ShouldEqual, 0)
		})
	})
}

func TestHouseholdScorerPartialEngagement(t *testing.T) {
	convey.Convey("Given a high household mean hiding one disengaged member", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewHouseholdScorer()

		result := scorer.Score(householdInput(map[string]float64{
			"alice": 95, "ben": 90, "cara": 20,
		}), asOf)

		convey.Convey("Then the level is partially engaged despite the healthy mean", func() {
			convey.So(result.Level, convey.ShouldEqual, types.EngagementPartial)
			convey.So(result.Mean, convey.ShouldBeGreaterThan, 60)
			convey.So(result.Spread, convey.ShouldBeGreaterThan, 25)
		})

		convey.Convey("Then the quiet member is identified by the self-relative floor", func() {
			convey.So(result.DisengagedMembers, convey.ShouldResemble, []string{"cara"})
		})

		convey.Convey("Then the recommendation addresses the spread", func() {
			convey.So(len(result.Assessment.Recommendations), convey.ShouldEqual, 1)
			convey.So(result.Assessment.Recommendations[0], convey.ShouldContainSubstring, "quieter members")
		})

		convey.Convey("Then the spread factor carries zero weight", func() {
			convey.So(result.Assessment.Factors["engagement_spread"].Weight, convey.ShouldEqual, 0)
		})
	})
}

func TestHouseholdScorerLowMean(t *testing.T) {
	convey.Convey("Given a household with uniformly low engagement", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewHouseholdScorer()

		result := scorer.Score(householdInput(map[string]float64{
			"dan": 30, "eve": 35,
		}), asOf)

		convey.Convey("Then the level follows the mean bands", func() {
			convey.So(result.Level, convey.ShouldEqual, types.EngagementLow)
		})

		convey.Convey("Then the recommendation addresses the household as a whole", func() {
			convey.So(len(result.Assessment.Recommendations), convey.ShouldEqual, 1)
			convey.So(result.Assessment.Recommendations[0], convey.ShouldContainSubstring, "family visit")
		})
	})
}

func TestHouseholdScorerBoundaryOverride(t *testing.T) {
	convey.Convey("Given a custom partial-engagement boundary", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scores := map[string]float64{"alice": 95, "ben": 90, "cara": 20}

		convey.Convey("When the spread floor is raised past the household's spread", func() {
			scorer := NewHouseholdScorer(WithPartialBoundary(60, 40))
			result := scorer.Score(householdInput(scores), asOf)

			convey.Convey("Then the mean bands take over", func() {
				convey.So(result.Level, convey.ShouldEqual, types.EngagementModerate)
			})
		})

		convey.Convey("When non-positive overrides are supplied", func() {
			scorer := NewHouseholdScorer(WithPartialBoundary(0, -5))
			result := scorer.Score(householdInput(scores), asOf)

			convey.Convey("Then the defaults are kept", func() {
				convey.So(result.Level, convey.ShouldEqual, types.EngagementPartial)
			})
		})
	})
}
