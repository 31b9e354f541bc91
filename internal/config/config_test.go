package config_test

import (
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/sefakor20/kingdomvitals-insights/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
			convey.So(cfg.AlertHistoryLimit, convey.ShouldEqual, 500)
			convey.So(cfg.AccuracyWindowDays, convey.ShouldEqual, 90)
			convey.So(cfg.HouseholdPartialMean, convey.ShouldEqual, 60)
			convey.So(cfg.HouseholdPartialSpread, convey.ShouldEqual, 25)
		})

		convey.Convey("Then the roster weights sum to one", func() {
			var total float64
			for _, w := range cfg.RosterWeights {
				total += w
			}
			convey.So(total, convey.ShouldAlmostEqual, 1.0, 0.0001)
			convey.So(cfg.RosterWeights["fairness"], convey.ShouldEqual, 0.35)
		})
	})
}
