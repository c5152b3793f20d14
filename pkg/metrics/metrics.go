// Package metrics records outcome submission counts and timings.
package metrics

import (
	"sort"
	"sync"
	"time"
)

// OutcomeMetrics defines the interface for recording outcome
// submission metrics.
type OutcomeMetrics interface {
	// RecordSubmission records one round trip and its
	// classified status.
	RecordSubmission(operation, status string, duration time.Duration)
	// RecordResultData records which extensions contributed data
	// to a submitted request.
	RecordResultData(extensions []string)
	// RecordRejectedScore counts scores refused before sending.
	RecordRejectedScore()
}

// NoopMetrics is a no-op implementation of OutcomeMetrics.
type NoopMetrics struct{}

func (NoopMetrics) RecordSubmission(_, _ string, _ time.Duration) {}
func (NoopMetrics) RecordResultData(_ []string)                   {}
func (NoopMetrics) RecordRejectedScore()                          {}

// CounterMetrics keeps counters and latency samples in memory.
// Exporting them is left to the host application.
type CounterMetrics struct {
	mu          sync.RWMutex
	submissions map[string]int
	durations   map[string][]time.Duration
	extensions  map[string]int
	rejected    int
}

// NewCounterMetrics creates an empty CounterMetrics.
func NewCounterMetrics() *CounterMetrics {
	return &CounterMetrics{
		submissions: make(map[string]int),
		durations:   make(map[string][]time.Duration),
		extensions:  make(map[string]int),
	}
}

func (m *CounterMetrics) RecordSubmission(operation, status string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[operation+":"+status]++
	m.durations[operation] = append(m.durations[operation], duration)
}

func (m *CounterMetrics) RecordResultData(extensions []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range extensions {
		m.extensions[name]++
	}
}

func (m *CounterMetrics) RecordRejectedScore() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected++
}

// SubmissionCount returns the count for an operation+status pair.
func (m *CounterMetrics) SubmissionCount(operation, status string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.submissions[operation+":"+status]
}

// ExtensionCount returns how many submitted requests carried data
// from the named extension.
func (m *CounterMetrics) ExtensionCount(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.extensions[name]
}

// RejectedScores returns the number of refused scores.
func (m *CounterMetrics) RejectedScores() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rejected
}

// MedianLatency returns the median round trip for an operation,
// or zero when nothing was recorded.
func (m *CounterMetrics) MedianLatency(operation string) time.Duration {
	m.mu.RLock()
	samples := append([]time.Duration(nil), m.durations[operation]...)
	m.mu.RUnlock()

	if len(samples) == 0 {
		return 0
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return samples[len(samples)/2]
}
