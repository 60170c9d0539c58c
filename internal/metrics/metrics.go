// Package metrics provides Prometheus metrics for cymirs runs.
//
// cymirs is a one-shot command rather than a scrapeable service, so metrics
// are kept in a private registry and written out in the text exposition
// format at the end of a run (see WriteTextfile), ready for a node_exporter
// textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/leefowlercu/cymirs/internal/version"
)

const (
	namespace = "cymirs"
)

// Registry holds every cymirs metric.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Job metrics track job runs.
var (
	// JobsTotal is the total number of job runs by final status.
	JobsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_total",
		Help:      "Total number of job runs",
	}, []string{"status"})

	// JobDuration is the duration of the last job run in seconds.
	JobDuration = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Duration of the last job run in seconds",
	})

	// JobLastSuccess is the unix time of the last successful job run.
	JobLastSuccess = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "job_last_success_timestamp_seconds",
		Help:      "Unix time of the last successful job run",
	})
)

// Region metrics describe the regions loaded by the last run.
var (
	// RegionsTotal is the number of regions loaded by the last run, by class.
	RegionsTotal = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "regions",
		Help:      "Number of regions loaded by the last run",
	}, []string{"class"})
)

// Notification metrics track status update delivery.
var (
	// NotificationsTotal counts notifications by channel and outcome
	// (sent, dropped, failed).
	NotificationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications by channel and outcome",
	}, []string{"channel", "outcome"})
)

// BuildInfo is always 1; its labels identify the cymirs build.
var BuildInfo = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "build_info",
	Help:      "Build information of the cymirs binary",
}, []string{"version", "commit", "go_version"})

func init() {
	v := version.Get()
	BuildInfo.WithLabelValues(v.Version, v.Commit, v.GoVersion).Set(1)
}
