package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Notification outcomes.
const (
	OutcomeSent    = "sent"
	OutcomeDropped = "dropped"
	OutcomeFailed  = "failed"
)

// RecordJob records the outcome of a job run.
func RecordJob(status string, duration time.Duration, finishedAt time.Time) {
	JobsTotal.WithLabelValues(status).Inc()
	JobDuration.Set(duration.Seconds())
	if status == "succeeded" {
		JobLastSuccess.Set(float64(finishedAt.Unix()))
	}
}

// UpdateRegionMetrics sets the region gauges from per-class counts.
func UpdateRegionMetrics(counts map[string]int) {
	for class, n := range counts {
		RegionsTotal.WithLabelValues(class).Set(float64(n))
	}
}

// RecordNotification records a notification outcome for a channel.
func RecordNotification(channel, outcome string) {
	NotificationsTotal.WithLabelValues(channel, outcome).Inc()
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
// The file is written atomically.
func WriteTextfile(path string) error {
	return WriteTextfileFrom(path, Registry)
}

// WriteTextfileFrom writes the metrics gathered from g to path.
func WriteTextfileFrom(path string, g prometheus.Gatherer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory; %w", err)
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s; %w", path, err)
	}
	return nil
}
