package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncPrediction is a no-op.
func (n *NoopRecorder) IncPrediction(source, label string) {}

// ObserveInferenceDuration is a no-op.
func (n *NoopRecorder) ObserveInferenceDuration(source string, duration time.Duration) {}

// ObserveBatchRows is a no-op.
func (n *NoopRecorder) ObserveBatchRows(rows int) {}

// IncHistoryWrite is a no-op.
func (n *NoopRecorder) IncHistoryWrite(status string) {}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration(status string) {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}
