package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Predictions              map[string]uint64 // keyed by "source/label"
	InferenceCount           uint64
	InferenceDurationTotalNs int64
	BatchRows                uint64
	HistoryWrites            map[string]uint64
	Registrations            map[string]uint64
	Logins                   map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	inferenceCount           uint64
	inferenceDurationTotalNs int64
	batchRows                uint64

	mu            sync.Mutex
	predictions   map[string]uint64
	historyWrites map[string]uint64
	registrations map[string]uint64
	logins        map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		predictions:   make(map[string]uint64),
		historyWrites: make(map[string]uint64),
		registrations: make(map[string]uint64),
		logins:        make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Predictions:              copyCounts(m.predictions),
		InferenceCount:           atomic.LoadUint64(&m.inferenceCount),
		InferenceDurationTotalNs: atomic.LoadInt64(&m.inferenceDurationTotalNs),
		BatchRows:                atomic.LoadUint64(&m.batchRows),
		HistoryWrites:            copyCounts(m.historyWrites),
		Registrations:            copyCounts(m.registrations),
		Logins:                   copyCounts(m.logins),
	}
}

// IncPrediction counts a scored row.
func (m *InMemoryRecorder) IncPrediction(source, label string) {
	m.inc(m.predictions, source+"/"+label)
}

// ObserveInferenceDuration records model evaluation time.
func (m *InMemoryRecorder) ObserveInferenceDuration(_ string, duration time.Duration) {
	atomic.AddUint64(&m.inferenceCount, 1)
	atomic.AddInt64(&m.inferenceDurationTotalNs, duration.Nanoseconds())
}

// ObserveBatchRows records the size of a CSV batch.
func (m *InMemoryRecorder) ObserveBatchRows(rows int) {
	atomic.AddUint64(&m.batchRows, uint64(rows))
}

// IncHistoryWrite counts history write outcomes.
func (m *InMemoryRecorder) IncHistoryWrite(status string) {
	m.inc(m.historyWrites, status)
}

// IncRegistration counts registration outcomes.
func (m *InMemoryRecorder) IncRegistration(status string) {
	m.inc(m.registrations, status)
}

// IncLogin counts login outcomes.
func (m *InMemoryRecorder) IncLogin(status string) {
	m.inc(m.logins, status)
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, key string) {
	m.mu.Lock()
	counts[key]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
