package assess

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

func lifecycleMember(asOf time.Time, tenureDays int) model.MemberSnapshot {
	return model.MemberSnapshot{
		MemberID: "member-1",
		BranchID: "branch-1",
		JoinedAt: asOf.AddDate(0, 0, -tenureDays),
	}
}

func TestLifecycleClassification(t *testing.T) {
	convey.Convey("Given the lifecycle classifier", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewLifecycleScorer()

		convey.Convey("When the member has never attended", func() {
			result := scorer.Score(LifecycleInput{Member: lifecycleMember(asOf, 400)}, asOf)
			convey.So(result.Stage, convey.ShouldEqual, types.StageProspect)
		})

		convey.Convey("When a recent joiner attends actively", func() {
			in := LifecycleInput{
				Member:   lifecycleMember(asOf, 30),
				Attended: weeklyAttendance(asOf, 1, 4),
			}
			result := scorer.Score(in, asOf)
			convey.So(result.Stage, convey.ShouldEqual, types.StageNewMember)
		})

		convey.Convey("When a long-tenured member attends most weeks", func() {
			in := LifecycleInput{
				Member:   lifecycleMember(asOf, 700),
				Attended: weeklyAttendance(asOf, 0, 11),
			}
			result := scorer.Score(in, asOf)
			convey.So(result.Stage, convey.ShouldEqual, types.StageEngaged)
		})

		convey.Convey("When a long-tenured member attends occasionally but recently", func() {
			in := LifecycleInput{
				Member:   lifecycleMember(asOf, 700),
				Attended: []time.Time{asOf.AddDate(0, 0, -20), asOf.AddDate(0, 0, -55)},
			}
			result := scorer.Score(in, asOf)
			convey.So(result.Stage, convey.ShouldEqual, types.StageGrowing)
		})

		convey.Convey("When recency crosses the stage boundaries", func() {
			cases := []struct {
				daysBack int
				stage    types.LifecycleStage
			}{
				{45, types.StageDisengaging},
				{75, types.StageAtRisk},
				{120, types.StageDormant},
				{200, types.StageInactive},
			}
			for _, c := range cases {
				in := LifecycleInput{
					Member:   lifecycleMember(asOf, 700),
					Attended: []time.Time{asOf.AddDate(0, 0, -c.daysBack)},
				}
				result := scorer.Score(in, asOf)
				convey.So(result.Stage, convey.ShouldEqual, c.stage)
			}
		})
	})
}

func TestLifecycleTransitions(t *testing.T) {
	convey.Convey("Given a member with a recorded previous stage", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewLifecycleScorer()

		convey.Convey("When an engaged member slides to at-risk", func() {
			in := LifecycleInput{
				Member:        lifecycleMember(asOf, 700),
				Attended:      []time.Time{asOf.AddDate(0, 0, -75)},
				PreviousStage: types.StageEngaged,
				HasPrevious:   true,
			}
			result := scorer.Score(in, asOf)

			convey.So(result.IsTransition, convey.ShouldBeTrue)
			convey.So(result.IsConcerningTransition, convey.ShouldBeTrue)
			convey.So(result.IsPositiveTransition, convey.ShouldBeFalse)
		})

		convey.Convey("When an at-risk member returns to engagement", func() {
			in := LifecycleInput{
				Member:        lifecycleMember(asOf, 700),
				Attended:      weeklyAttendance(asOf, 0, 11),
				PreviousStage: types.StageAtRisk,
				HasPrevious:   true,
			}
			result := scorer.Score(in, asOf)

			convey.So(result.IsTransition, convey.ShouldBeTrue)
			convey.So(result.IsPositiveTransition, convey.ShouldBeTrue)
			convey.So(result.IsConcerningTransition, convey.ShouldBeFalse)
		})

		convey.Convey("When the stage is unchanged", func() {
			in := LifecycleInput{
				Member:        lifecycleMember(asOf, 700),
				Attended:      weeklyAttendance(asOf, 0, 11),
				PreviousStage: types.StageEngaged,
				HasPrevious:   true,
			}
			result := scorer.Score(in, asOf)
			convey.So(result.IsTransition, convey.ShouldBeFalse)
		})

		convey.Convey("When no previous stage was recorded", func() {
			in := LifecycleInput{
				Member:   lifecycleMember(asOf, 700),
				Attended: []time.Time{asOf.AddDate(0, 0, -75)},
			}
			result := scorer.Score(in, asOf)
			convey.So(result.IsTransition, convey.ShouldBeFalse)
		})
	})
}

func TestLifecycleEngagementScore(t *testing.T) {
	convey.Convey("Given the lifecycle engagement score", t, func() {
		asOf := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
		scorer := NewLifecycleScorer()

		convey.Convey("When the member attends and gives regularly", func() {
			in := LifecycleInput{
				Member:    lifecycleMember(asOf, 700),
				Attended:  weeklyAttendance(asOf, 0, 11),
				Donations: monthlyDonations(asOf, 3, 10, 100),
			}
			result := scorer.Score(in, asOf)

			convey.Convey("Then the score should be strong with all three factors", func() {
				convey.So(result.Assessment.Score, convey.ShouldBeGreaterThan, 70)
				convey.So(len(result.Assessment.Factors), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the member drifted away months ago", func() {
			in := LifecycleInput{
				Member:   lifecycleMember(asOf, 700),
				Attended: []time.Time{asOf.AddDate(0, 0, -150)},
			}
			result := scorer.Score(in, asOf)

			convey.Convey("Then the score should be weak and carry recommendations", func() {
				convey.So(result.Assessment.Score, convey.ShouldBeLessThan, 40)
				convey.So(len(result.Assessment.Recommendations), convey.ShouldBeGreaterThan, 0)
			})
		})
	})
}
