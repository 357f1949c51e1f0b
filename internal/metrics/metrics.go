// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Prediction sources.
const (
	SourceSingle = "single"
	SourceBatch  = "batch"
)

// Outcome statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Scoring metrics
	IncPrediction(source, label string)
	ObserveInferenceDuration(source string, duration time.Duration)
	ObserveBatchRows(rows int)

	// History metrics
	IncHistoryWrite(status string) // status: "success", "failed", "skipped"

	// Identity metrics
	IncRegistration(status string)
	IncLogin(status string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
