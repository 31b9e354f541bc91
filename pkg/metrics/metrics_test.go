package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording assessment metrics", func() {
			Convey("Then it should record computed assessments by domain", func() {
				So(func() {
					RecordAssessmentComputed("churn_risk")
					RecordAssessmentComputed("prayer_priority")
					RecordAssessmentComputed("churn_risk")
				}, ShouldNotPanic)
			})

			Convey("And it should record assessment errors", func() {
				So(func() {
					RecordAssessmentError()
					RecordAssessmentError()
				}, ShouldNotPanic)
			})

			Convey("And it should record assessment latency", func() {
				So(func() {
					RecordAssessmentLatency(5.0)
					RecordAssessmentLatency(15.0)
					RecordAssessmentLatency(50.0)
				}, ShouldNotPanic)
			})

			Convey("And it should record duplicate jobs", func() {
				So(func() {
					RecordDuplicateJob()
					RecordDuplicateJob()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording forecast metrics", func() {
			So(func() {
				RecordForecastGenerated()
				RecordForecastError()
				RecordForecastReconciled()
			}, ShouldNotPanic)
		})

		Convey("When recording roster metrics", func() {
			So(func() {
				RecordRosterPlanGenerated()
				RecordRosterSlotsFilled(5)
				RecordRosterSlotsUnfilled(1)
			}, ShouldNotPanic)
		})

		Convey("When recording alert metrics", func() {
			So(func() {
				RecordAlertEvent("critical")
				RecordAlertEvent("warning")
				RecordAlertEvent("info")
				RecordAlertSuppressed()
			}, ShouldNotPanic)
		})

		Convey("When updating store occupancy", func() {
			So(func() {
				UpdateStoreCounts(100, 20, 5, 12)
				UpdateStoreCounts(0, 0, 0, 0)
			}, ShouldNotPanic)
		})

		Convey("When recording queue metrics", func() {
			Convey("Then it should update queue gauges", func() {
				So(func() {
					UpdateQueueSize(1000)
					UpdateQueueCapacity(100000)
					UpdateQueueUtilization(0.01)
				}, ShouldNotPanic)
			})

			Convey("And it should record queue flow counters", func() {
				So(func() {
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordQueueProcessingLatency(20.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording worker metrics", func() {
			So(func() {
				UpdateWorkerActiveCount(8)
				UpdateWorkerJobsPerSecond(250.0)
				RecordWorkerProcessingLatency(12.5)
				RecordWorkerError()
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record HTTP requests", func() {
				So(func() {
					RecordHTTPRequest("healthz", "GET", "200")
					RecordHTTPRequest("batch", "POST", "202")
					RecordHTTPRequest("assessments", "POST", "200")
				}, ShouldNotPanic)
			})

			Convey("And it should record HTTP request duration", func() {
				So(func() {
					RecordHTTPRequestDuration("healthz", "GET", "200", 2.0)
					RecordHTTPRequestDuration("batch", "POST", "202", 8.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording error metrics", func() {
			So(func() {
				RecordErrorByComponent("assess", "unknown_input")
				RecordErrorByComponent("repository", "not_found")
				RecordErrorByComponent("queue", "full")
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1024 * 1024 * 100)
				UpdateSystemGoroutineCount(150)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsEdgeCases(t *testing.T) {
	Convey("Given metrics edge cases", t, func() {
		Convey("When recording metrics with edge values", func() {
			Convey("And using zero values", func() {
				So(func() {
					UpdateQueueSize(0)
					UpdateWorkerActiveCount(0)
					RecordAssessmentLatency(0.0)
					RecordRosterSlotsFilled(0)
					RecordHTTPRequestDuration("test", "GET", "200", 0.0)
				}, ShouldNotPanic)
			})

			Convey("And using negative values", func() {
				So(func() {
					UpdateQueueSize(-100)
					UpdateWorkerActiveCount(-10)
				}, ShouldNotPanic)
			})

			Convey("And using very large values", func() {
				So(func() {
					UpdateQueueSize(1000000)
					UpdateWorkerActiveCount(10000)
					RecordAssessmentLatency(10000.0)
				}, ShouldNotPanic)
			})

			Convey("And using empty strings", func() {
				So(func() {
					RecordAssessmentComputed("")
					RecordAlertEvent("")
					RecordHTTPRequest("", "", "200")
					RecordErrorByComponent("", "")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func(id int) {
					for j := 0; j < 100; j++ {
						RecordAssessmentComputed("churn_risk")
						UpdateQueueSize(1000 + j)
						RecordAssessmentLatency(float64(j))
						RecordHTTPRequest("assessments", "POST", "200")
					}
					done <- true
				}(i)
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsOptionsValidation(t *testing.T) {
	Convey("Given metrics options validation", t, func() {
		Convey("When creating with empty namespace", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithNamespace(""), WithPrometheusRegistry(registry))

			Convey("Then it should keep the default", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with nil histogram buckets", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with a non-positive refresh interval", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRefreshInterval(0), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with a nil registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(nil), WithPrometheusRegistry(registry))

			Convey("Then it should fall back to the previous registry", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("And the shared registry should be available", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
