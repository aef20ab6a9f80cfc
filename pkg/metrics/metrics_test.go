package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "dreamteam")
				So(manager.subsystem, ShouldEqual, "pipeline")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.runs.WithLabelValues(OutcomeTeam).Inc()

			Convey("Then metric names and labels should reflect them", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_runs_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When creating with empty options", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "dreamteam")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording runs", func() {
			before := testutil.ToFloat64(globalManager.runs.WithLabelValues(OutcomeNoCandidates))
			RunStarted()
			RecordRun(OutcomeNoCandidates)
			RunFinished(12)

			Convey("Then the outcome counter should move", func() {
				So(testutil.ToFloat64(globalManager.runs.WithLabelValues(OutcomeNoCandidates)), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.runsInFlight), ShouldEqual, 0)
			})
		})

		Convey("When recording enrichment outcomes", func() {
			before := testutil.ToFloat64(globalManager.enrichments.WithLabelValues(EnrichFallback))
			RecordEnrichment(EnrichFallback, 3)
			RecordEnrichment(EnrichOK, 4)
			AddEnrichInFlight(1)
			AddEnrichInFlight(-1)

			Convey("Then fallbacks should be counted", func() {
				So(testutil.ToFloat64(globalManager.enrichments.WithLabelValues(EnrichFallback)), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.enrichInFlight), ShouldEqual, 0)
			})
		})

		Convey("When recording assembly", func() {
			RecordAssembly(0.2, 3, 1)

			Convey("Then the team gauges should hold the last values", func() {
				So(testutil.ToFloat64(globalManager.teamSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.uncoveredSkills), ShouldEqual, 1)
			})
		})

		Convey("When recording the remaining families", func() {
			Convey("Then nothing should panic", func() {
				So(func() {
					RecordSearch(120, 42)
					RecordStreamEvent("status")
					RecordStreamEventDropped("candidate")
					RecordHTTPRequest("search", "GET", "200")
					RecordHTTPRequestDuration("search", "GET", "200", 15.0)
					RecordErrorByComponent("torre", "search_failed")
					RecordErrorByType("search_failed", "high")
					RecordErrorByEndpoint("search", "GET", "client_error")
					RecordErrorLatency("http", "client_error", 2)
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering the registry", func() {
			RecordStreamEvent("dreamTeam")
			families, err := GetRegistry().Gather()

			Convey("Then pipeline families should be exposed", func() {
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "dreamteam_pipeline_stream_events_total")
			})
		})
	})
}
