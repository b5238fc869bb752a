package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EmailsEnqueued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "r2d2_emails_enqueued_total",
		Help: "Total number of email records created in QUEUED state",
	}, []string{"source"})
	// outcome is one of sent, failed, rate_limited, skipped, error
	EmailDispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "r2d2_email_dispatches_total",
		Help: "Total number of dispatch attempts grouped by outcome",
	}, []string{"outcome"})
	SweepRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "r2d2_queue_sweeps_total",
		Help: "Total number of queue sweeps grouped by trigger",
	}, []string{"trigger"})
	SweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "r2d2_queue_sweep_duration_seconds",
		Help:    "Duration of queue sweeps",
		Buckets: prometheus.DefBuckets,
	})
	FormSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "r2d2_form_submissions_total",
		Help: "Total number of form submissions grouped by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		EmailsEnqueued,
		EmailDispatches,
		SweepRuns,
		SweepDuration,
		FormSubmissions,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
