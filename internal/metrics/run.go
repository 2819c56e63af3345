// SPDX-License-Identifier: MIT
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every epgnotify collector. It is private so the textfile
// export contains only run metrics, not Go runtime noise.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	runsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "epgnotify_runs_total",
		Help: "Total number of notification runs by outcome",
	}, []string{"outcome"}) // outcome=sent|printed|empty|fetch_error|render_error|output_error|send_error

	lastRunTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Name: "epgnotify_last_run_timestamp_seconds",
		Help: "Unix time of the last finished run",
	})

	upstreamRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "epgnotify_upstream_requests_total",
		Help: "Requests to the EPG provider and recording scheduler",
	}, []string{"upstream", "operation", "status"}) // status=success|error|timeout

	upstreamDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "epgnotify_upstream_request_duration_seconds",
		Help:    "Duration of upstream requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"upstream", "operation"})

	programsFetched = factory.NewGauge(prometheus.GaugeOpts{
		Name: "epgnotify_programs_fetched",
		Help: "Programs returned by the EPG provider in the last run",
	})

	servicesFetched = factory.NewGauge(prometheus.GaugeOpts{
		Name: "epgnotify_services_fetched",
		Help: "Services returned by the EPG provider in the last run",
	})

	programsSelected = factory.NewGauge(prometheus.GaugeOpts{
		Name: "epgnotify_programs_selected",
		Help: "Programs that passed every eligibility check in the last run",
	})

	programsReserved = factory.NewGauge(prometheus.GaugeOpts{
		Name: "epgnotify_programs_reserved",
		Help: "Selected programs that already have a reservation",
	})

	programsDropped = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "epgnotify_programs_dropped_total",
		Help: "Programs dropped by the eligibility checks, by failed check",
	}, []string{"reason"})
)

// IncRun records the outcome of a run and stamps its completion time.
func IncRun(outcome string) {
	runsTotal.WithLabelValues(outcome).Inc()
	lastRunTimestamp.SetToCurrentTime()
}

// ObserveUpstream records one upstream request.
func ObserveUpstream(upstream, operation, status string, d time.Duration) {
	upstreamRequestsTotal.WithLabelValues(upstream, operation, status).Inc()
	upstreamDuration.WithLabelValues(upstream, operation).Observe(d.Seconds())
}

// RecordFetch stores the collection sizes returned by the EPG provider.
func RecordFetch(services, programs int) {
	servicesFetched.Set(float64(services))
	programsFetched.Set(float64(programs))
}

// RecordSelection stores the size of the selection and how many are reserved.
func RecordSelection(selected, reserved int) {
	programsSelected.Set(float64(selected))
	programsReserved.Set(float64(reserved))
}

// IncDropped counts a program rejected by the named check.
func IncDropped(reason string) {
	programsDropped.WithLabelValues(reason).Inc()
}
