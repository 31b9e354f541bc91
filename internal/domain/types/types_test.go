package types

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestDomainParsing(t *testing.T) {
	convey.Convey("Given the assessment domains", t, func() {
		convey.Convey("Then every listed domain should round-trip through parsing", func() {
			for _, d := range Domains() {
				parsed, err := ParseDomain(string(d))
				convey.So(err, convey.ShouldBeNil)
				convey.So(parsed, convey.ShouldEqual, d)
			}
		})

		convey.Convey("Then an unknown domain should be rejected", func() {
			_, err := ParseDomain("astrology")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then the domain list should be stable and complete", func() {
			convey.So(len(Domains()), convey.ShouldEqual, 7)
			convey.So(Domains()[0], convey.ShouldEqual, DomainChurnRisk)
			convey.So(Domains()[6], convey.ShouldEqual, DomainSMSEngagement)
		})
	})
}

func TestRiskLevelBands(t *testing.T) {
	convey.Convey("Given the risk level bands", t, func() {
		convey.Convey("Then scores should map to the documented bands", func() {
			convey.So(RiskLevelFor(0), convey.ShouldEqual, RiskLow)
			convey.So(RiskLevelFor(39.99), convey.ShouldEqual, RiskLow)
			convey.So(RiskLevelFor(40), convey.ShouldEqual, RiskMedium)
			convey.So(RiskLevelFor(69.99), convey.ShouldEqual, RiskMedium)
			convey.So(RiskLevelFor(70), convey.ShouldEqual, RiskHigh)
			convey.So(RiskLevelFor(100), convey.ShouldEqual, RiskHigh)
		})

		convey.Convey("Then only high risk should need attention", func() {
			convey.So(RiskHigh.NeedsAttention(), convey.ShouldBeTrue)
			convey.So(RiskMedium.NeedsAttention(), convey.ShouldBeFalse)
			convey.So(RiskLow.NeedsAttention(), convey.ShouldBeFalse)
		})

		convey.Convey("Then labels should be human readable", func() {
			convey.So(RiskHigh.Label(), convey.ShouldEqual, "High Risk")
		})
	})
}

func TestLifecycleStages(t *testing.T) {
	convey.Convey("Given the lifecycle stages", t, func() {
		convey.Convey("Then stage names should round-trip through parsing", func() {
			for _, s := range []LifecycleStage{
				StageProspect, StageNewMember, StageGrowing, StageEngaged,
				StageDisengaging, StageAtRisk, StageDormant, StageInactive,
			} {
				parsed, err := ParseLifecycleStage(s.String())
				convey.So(err, convey.ShouldBeNil)
				convey.So(parsed, convey.ShouldEqual, s)
			}
		})

		convey.Convey("Then stages should be ordered by engagement priority", func() {
			convey.So(StageProspect, convey.ShouldBeLessThan, StageEngaged)
			convey.So(StageEngaged, convey.ShouldBeLessThan, StageInactive)
		})

		convey.Convey("Then the concerning stages should be flagged", func() {
			convey.So(StageDisengaging.IsConcerning(), convey.ShouldBeTrue)
			convey.So(StageAtRisk.IsConcerning(), convey.ShouldBeTrue)
			convey.So(StageDormant.IsConcerning(), convey.ShouldBeTrue)
			convey.So(StageInactive.IsConcerning(), convey.ShouldBeTrue)
			convey.So(StageEngaged.IsConcerning(), convey.ShouldBeFalse)
		})

		convey.Convey("Then the positive stages should be flagged", func() {
			convey.So(StageGrowing.IsPositive(), convey.ShouldBeTrue)
			convey.So(StageEngaged.IsPositive(), convey.ShouldBeTrue)
			convey.So(StageNewMember.IsPositive(), convey.ShouldBeFalse)
		})
	})
}

func TestHealthLevelBands(t *testing.T) {
	convey.Convey("Given the cluster health bands", t, func() {
		convey.Convey("Then scores should map to the documented bands", func() {
			convey.So(HealthLevelFor(80), convey.ShouldEqual, HealthThriving)
			convey.So(HealthLevelFor(79.99), convey.ShouldEqual, HealthHealthy)
			convey.So(HealthLevelFor(60), convey.ShouldEqual, HealthHealthy)
			convey.So(HealthLevelFor(40), convey.ShouldEqual, HealthStable)
			convey.So(HealthLevelFor(20), convey.ShouldEqual, HealthStruggling)
			convey.So(HealthLevelFor(19.99), convey.ShouldEqual, HealthCritical)
		})

		convey.Convey("Then struggling and critical clusters should need attention", func() {
			convey.So(HealthStruggling.NeedsAttention(), convey.ShouldBeTrue)
			convey.So(HealthCritical.NeedsAttention(), convey.ShouldBeTrue)
			convey.So(HealthStable.NeedsAttention(), convey.ShouldBeFalse)
		})
	})
}

func TestUrgencyTiers(t *testing.T) {
	convey.Convey("Given the prayer urgency tiers", t, func() {
		convey.Convey("Then tiers should be ordered by urgency", func() {
			convey.So(UrgencyNormal, convey.ShouldBeLessThan, UrgencyElevated)
			convey.So(UrgencyElevated, convey.ShouldBeLessThan, UrgencyHigh)
			convey.So(UrgencyHigh, convey.ShouldBeLessThan, UrgencyCritical)
		})

		convey.Convey("Then tier names should round-trip through parsing", func() {
			parsed, err := ParseUrgencyTier("critical")
			convey.So(err, convey.ShouldBeNil)
			convey.So(parsed, convey.ShouldEqual, UrgencyCritical)
		})

		convey.Convey("Then an unknown tier should be rejected", func() {
			_, err := ParseUrgencyTier("apocalyptic")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestSMSLevels(t *testing.T) {
	convey.Convey("Given the SMS engagement bands", t, func() {
		convey.Convey("Then scores should map to the documented bands", func() {
			convey.So(SMSLevelFor(80), convey.ShouldEqual, SMSHigh)
			convey.So(SMSLevelFor(50), convey.ShouldEqual, SMSMedium)
			convey.So(SMSLevelFor(20), convey.ShouldEqual, SMSLow)
			convey.So(SMSLevelFor(19.99), convey.ShouldEqual, SMSInactive)
		})

		convey.Convey("Then monthly caps should decrease with engagement", func() {
			convey.So(SMSHigh.MonthlyCap(), convey.ShouldEqual, 8)
			convey.So(SMSMedium.MonthlyCap(), convey.ShouldEqual, 4)
			convey.So(SMSLow.MonthlyCap(), convey.ShouldEqual, 2)
			convey.So(SMSInactive.MonthlyCap(), convey.ShouldEqual, 1)
		})
	})
}

func TestExperienceTiers(t *testing.T) {
	convey.Convey("Given the roster experience tiers", t, func() {
		convey.Convey("Then tiers should be totally ordered", func() {
			convey.So(TierNovice, convey.ShouldBeLessThan, TierIntermediate)
			convey.So(TierIntermediate, convey.ShouldBeLessThan, TierExperienced)
			convey.So(TierExperienced, convey.ShouldBeLessThan, TierExpert)
		})

		convey.Convey("Then tier names should round-trip through parsing", func() {
			parsed, err := ParseExperienceTier("experienced")
			convey.So(err, convey.ShouldBeNil)
			convey.So(parsed, convey.ShouldEqual, TierExperienced)
		})
	})
}

func TestSuitabilityRatings(t *testing.T) {
	convey.Convey("Given the suitability rating bands", t, func() {
		convey.So(SuitabilityRatingFor(80), convey.ShouldEqual, SuitabilityExcellent)
		convey.So(SuitabilityRatingFor(60), convey.ShouldEqual, SuitabilityGood)
		convey.So(SuitabilityRatingFor(40), convey.ShouldEqual, SuitabilityFair)
		convey.So(SuitabilityRatingFor(39.99), convey.ShouldEqual, SuitabilityPoor)
	})
}

func TestAlertTypeMapping(t *testing.T) {
	convey.Convey("Given the domain-to-alert-type mapping", t, func() {
		convey.Convey("Then every domain should map to an alert type", func() {
			for _, d := range Domains() {
				at, err := AlertTypeForDomain(d)
				convey.So(err, convey.ShouldBeNil)
				convey.So(at, convey.ShouldNotBeEmpty)
			}
		})

		convey.Convey("Then lifecycle should share the churn alert family", func() {
			at, err := AlertTypeForDomain(DomainLifecycle)
			convey.So(err, convey.ShouldBeNil)
			convey.So(at, convey.ShouldEqual, AlertChurnRisk)
		})

		convey.Convey("Then alert type strings should round-trip through parsing", func() {
			parsed, err := ParseAlertType("prayer_urgent")
			convey.So(err, convey.ShouldBeNil)
			convey.So(parsed, convey.ShouldEqual, AlertPrayerUrgent)
		})

		convey.Convey("Then an unknown alert type should be rejected", func() {
			_, err := ParseAlertType("carrier_pigeon")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
