package utils

import (
	"sync"
	"time"
)

// Metrics tracks bridge call and scenario outcome counters for the
// end-of-run summary.
type Metrics struct {
	mu sync.RWMutex

	calls     map[string]int
	successes map[string]int
	failures  map[string]int
	durations map[string][]time.Duration

	outcomes map[string]int
}

// NewMetrics creates a new metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{
		calls:     make(map[string]int),
		successes: make(map[string]int),
		failures:  make(map[string]int),
		durations: make(map[string][]time.Duration),
		outcomes:  make(map[string]int),
	}
}

// RecordCall records one bridge call against a named service or channel.
func (m *Metrics) RecordCall(service string, success bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[service]++
	if success {
		m.successes[service]++
	} else {
		m.failures[service]++
	}

	m.durations[service] = append(m.durations[service], duration)
}

// RecordScenarioOutcome records the terminal outcome of one scenario run.
func (m *Metrics) RecordScenarioOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.outcomes[outcome]++
}

// CallMetrics summarizes calls to one service.
type CallMetrics struct {
	TotalCalls      int
	SuccessfulCalls int
	FailedCalls     int
	AvgDuration     time.Duration
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	Calls            map[string]CallMetrics
	ScenarioOutcomes map[string]int
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := MetricsSnapshot{
		Calls:            make(map[string]CallMetrics),
		ScenarioOutcomes: make(map[string]int),
	}

	for service := range m.calls {
		snapshot.Calls[service] = CallMetrics{
			TotalCalls:      m.calls[service],
			SuccessfulCalls: m.successes[service],
			FailedCalls:     m.failures[service],
			AvgDuration:     average(m.durations[service]),
		}
	}

	for outcome, count := range m.outcomes {
		snapshot.ScenarioOutcomes[outcome] = count
	}

	return snapshot
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}
