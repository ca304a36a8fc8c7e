package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpRequestsTotal       *prometheus.CounterVec
	httpLatencySeconds      *prometheus.HistogramVec
	httpErrorsTotal         *prometheus.CounterVec
	activityRecordedTotal   *prometheus.CounterVec
	activityFailuresTotal   *prometheus.CounterVec
	activityReplayedTotal   prometheus.Counter
	reportGenerationSeconds prometheus.Histogram
	reportIssuesTotal       *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairshare_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fairshare_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairshare_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		activityRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairshare_activity_recorded_total",
			Help: "Activity log entries persisted, by activity type.",
		}, []string{"activity_type"})

		activityFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairshare_activity_record_failures_total",
			Help: "Activity log entries that could not be persisted, by outcome.",
		}, []string{"outcome"})

		activityReplayedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fairshare_activity_replayed_total",
			Help: "Queued activity log entries re-inserted at startup.",
		})

		reportGenerationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fairshare_report_generation_seconds",
			Help:    "Latency of contribution report generation.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		reportIssuesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairshare_report_issues_total",
			Help: "Contribution issues emitted by generated reports, by type.",
		}, []string{"type"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			activityRecordedTotal,
			activityFailuresTotal,
			activityReplayedTotal,
			reportGenerationSeconds,
			reportIssuesTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ActivityRecorded exposes the persisted activity counter.
func ActivityRecorded() *prometheus.CounterVec {
	RegisterMetrics()
	return activityRecordedTotal
}

// ActivityFailures exposes the failed activity counter.
func ActivityFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return activityFailuresTotal
}

// ActivityReplayed exposes the replayed activity counter.
func ActivityReplayed() prometheus.Counter {
	RegisterMetrics()
	return activityReplayedTotal
}

// ReportGeneration exposes the report latency histogram.
func ReportGeneration() prometheus.Histogram {
	RegisterMetrics()
	return reportGenerationSeconds
}

// ReportIssues exposes the report issue counter.
func ReportIssues() *prometheus.CounterVec {
	RegisterMetrics()
	return reportIssuesTotal
}
