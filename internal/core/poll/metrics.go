package poll

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricsOnce ensures metrics are registered only once
	metricsOnce sync.Once

	// pollCyclesTotal tracks completed poll cycles by outcome
	pollCyclesTotal *prometheus.CounterVec

	// feedFetchErrorsTotal tracks feed fetches that failed outright
	feedFetchErrorsTotal *prometheus.CounterVec

	// casesCreatedTotal tracks cases created downstream by feed
	casesCreatedTotal *prometheus.CounterVec

	// evidenceCreatedTotal tracks evidence records created downstream by feed
	evidenceCreatedTotal *prometheus.CounterVec

	// recordFailuresTotal tracks records that could not be ingested
	recordFailuresTotal *prometheus.CounterVec

	// feedFetchDuration tracks latency of feed fetches
	feedFetchDuration prometheus.Histogram
)

// InitMetrics registers all Prometheus metrics for the poll engine.
// This should be called once at application startup.
func InitMetrics() {
	metricsOnce.Do(func() {
		pollCyclesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poll_cycles_total",
				Help: "Total number of completed poll cycles by outcome",
			},
			[]string{"outcome"},
		)

		feedFetchErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poll_feed_fetch_errors_total",
				Help: "Total number of feed fetches that failed",
			},
			[]string{"feed"},
		)

		casesCreatedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poll_cases_created_total",
				Help: "Total number of cases created downstream by feed",
			},
			[]string{"feed"},
		)

		evidenceCreatedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poll_evidence_created_total",
				Help: "Total number of evidence records created downstream by feed",
			},
			[]string{"feed"},
		)

		recordFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poll_record_failures_total",
				Help: "Total number of records skipped because ingestion failed",
			},
			[]string{"feed"},
		)

		feedFetchDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "poll_feed_fetch_duration_seconds",
				Help:    "Duration of feed fetches in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
		)
	})
}

func recordCycle(outcome string) {
	if pollCyclesTotal != nil {
		pollCyclesTotal.WithLabelValues(outcome).Inc()
	}
}

func recordFetchError(feed string) {
	if feedFetchErrorsTotal != nil {
		feedFetchErrorsTotal.WithLabelValues(feed).Inc()
	}
}

func recordCaseCreated(feed string) {
	if casesCreatedTotal != nil {
		casesCreatedTotal.WithLabelValues(feed).Inc()
	}
}

func recordEvidenceCreated(feed string, count int) {
	if evidenceCreatedTotal != nil {
		evidenceCreatedTotal.WithLabelValues(feed).Add(float64(count))
	}
}

func recordRecordFailure(feed string) {
	if recordFailuresTotal != nil {
		recordFailuresTotal.WithLabelValues(feed).Inc()
	}
}

func recordFetchDuration(seconds float64) {
	if feedFetchDuration != nil {
		feedFetchDuration.Observe(seconds)
	}
}
