package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
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
		Convey("When recording pipeline metrics", func() {
			Convey("Then it should record sanitized lines", func() {
				So(func() {
					RecordLinesSanitized(10)
					RecordLinesSanitized(25)
					RecordLinesSanitized(3)
				}, ShouldNotPanic)
			})

			Convey("And it should record validation errors", func() {
				So(func() {
					RecordValidationErrors("date", 2)
					RecordValidationErrors("unknown_name", 5)
					RecordValidationErrors("points", 1)
				}, ShouldNotPanic)
			})

			Convey("And it should record calculated runs", func() {
				So(func() {
					RecordRunCalculated()
					RecordRunCalculated()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording resolver metrics", func() {
			Convey("Then it should record prompts", func() {
				So(func() {
					RecordResolvePrompt()
					RecordResolvePrompt()
					RecordResolvePrompt()
				}, ShouldNotPanic)
			})

			Convey("And it should record outcomes by action", func() {
				So(func() {
					RecordResolveOutcome("picked")
					RecordResolveOutcome("typed")
					RecordResolveOutcome("skipped")
				}, ShouldNotPanic)
			})

			Convey("And it should update the suggestion index size", func() {
				So(func() {
					UpdateSuggestionIndexSize(40)
					UpdateSuggestionIndexSize(55)
					UpdateSuggestionIndexSize(12)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording history metrics", func() {
			Convey("Then it should record saved runs", func() {
				So(func() {
					RecordRunSaved()
					RecordRunSaved()
				}, ShouldNotPanic)
			})

			Convey("And it should record appended events", func() {
				So(func() {
					RecordEventsAppended(8)
					RecordEventsAppended(14)
				}, ShouldNotPanic)
			})

			Convey("And it should record superseded events", func() {
				So(func() {
					RecordEventsSuperseded(3)
					RecordEventsSuperseded(6)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording roster metrics", func() {
			Convey("Then it should record fetches by source", func() {
				So(func() {
					RecordRosterFetch("file")
					RecordRosterFetch("sheet")
					RecordRosterFetch("file")
				}, ShouldNotPanic)
			})

			Convey("And it should record fetch duration", func() {
				So(func() {
					RecordRosterFetchDuration(40.0)
					RecordRosterFetchDuration(120.0)
					RecordRosterFetchDuration(310.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording error metrics", func() {
			Convey("Then it should record errors by component", func() {
				So(func() {
					RecordErrorByComponent("catalog", "read_failed")
					RecordErrorByComponent("roster", "fetch_failed")
					RecordErrorByComponent("history", "persist_failed")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsEdgeCases(t *testing.T) {
	Convey("Given metrics edge cases", t, func() {
		Convey("When recording metrics with edge values", func() {
			Convey("And using zero values", func() {
				So(func() {
					RecordLinesSanitized(0)
					RecordValidationErrors("date", 0)
					RecordEventsAppended(0)
					UpdateSuggestionIndexSize(0)
					RecordRosterFetchDuration(0.0)
				}, ShouldNotPanic)
			})

			Convey("And using negative gauge values", func() {
				So(func() {
					UpdateSuggestionIndexSize(-1)
					UpdateSuggestionIndexSize(-100)
				}, ShouldNotPanic)
			})

			Convey("And using very large values", func() {
				So(func() {
					RecordLinesSanitized(1000000)
					RecordEventsAppended(500000)
					UpdateSuggestionIndexSize(1000000)
					RecordRosterFetchDuration(30000.0)
				}, ShouldNotPanic)
			})

			Convey("And using empty strings", func() {
				So(func() {
					RecordValidationErrors("", 1)
					RecordResolveOutcome("")
					RecordRosterFetch("")
					RecordErrorByComponent("", "")
				}, ShouldNotPanic)
			})

			Convey("And using special characters in labels", func() {
				So(func() {
					RecordValidationErrors("unknown name: báb", 1)
					RecordResolveOutcome("action-with-dash")
					RecordErrorByComponent("roster.sheet", "status_403")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			// Start multiple goroutines recording metrics
			for i := 0; i < 10; i++ {
				go func(id int) {
					for j := 0; j < 100; j++ {
						RecordLinesSanitized(1)
						RecordResolvePrompt()
						UpdateSuggestionIndexSize(j)
						RecordRosterFetchDuration(float64(j))
					}
					done <- true
				}(i)
			}

			// Wait for all goroutines to complete
			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue) // If we get here, no panics occurred
			})
		})
	})
}

func TestMetricsOptionsValidation(t *testing.T) {
	Convey("Given metrics options validation", t, func() {
		Convey("When creating with empty namespace", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithNamespace(""), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty subsystem", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithSubsystem(""), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
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

		Convey("When creating with empty histogram buckets", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithHistogramBuckets([]float64{}), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRegistry(t *testing.T) {
	Convey("Given the package registry", t, func() {
		Convey("When gathering after recording", func() {
			RecordRunCalculated()

			families, err := GetRegistry().Gather()

			Convey("Then it should expose the recorded families", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
