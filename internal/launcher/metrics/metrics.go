package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const MetricsPrefix = "prefect_launcher_"

var flowRunsSubmitted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricsPrefix + "flow_runs_submitted_total",
		Help: "Number of flow run submissions by backend and outcome",
	},
	[]string{"backend", "outcome"},
)

var renderFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: MetricsPrefix + "render_failures_total",
		Help: "Number of dispatches rejected because the job template could not be rendered",
	},
)

var submissionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    MetricsPrefix + "submission_duration_seconds",
		Help:    "Time taken to submit a flow run to the backend",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"backend"},
)

func RecordSubmission(backend string, duration time.Duration) {
	flowRunsSubmitted.WithLabelValues(backend, "success").Inc()
	submissionDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

func RecordSubmissionFailure(backend string) {
	flowRunsSubmitted.WithLabelValues(backend, "failure").Inc()
}

func RecordRenderFailure() {
	renderFailures.Inc()
}
