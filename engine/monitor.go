package engine

import (
	"sync"
	"time"

	"github.com/nmoreau/strikecore/types"
)

// TimingStats aggregates pipeline run durations for one action kind.
type TimingStats struct {
	Count int
	Total time.Duration
}

// Mean returns the average run duration, or zero for no runs.
func (t TimingStats) Mean() time.Duration {
	if t.Count == 0 {
		return 0
	}
	return t.Total / time.Duration(t.Count)
}

// TimingMonitor is the default Monitor: it records wall-clock elapsed time
// per span and aggregates totals per action kind.
type TimingMonitor struct {
	mu     sync.Mutex
	open   map[string]time.Time
	totals map[types.ActionKind]TimingStats
}

// NewTimingMonitor creates an empty monitor.
func NewTimingMonitor() *TimingMonitor {
	return &TimingMonitor{
		open:   map[string]time.Time{},
		totals: map[types.ActionKind]TimingStats{},
	}
}

// StartTiming opens a span under the given key.
func (m *TimingMonitor) StartTiming(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open[key] = time.Now()
}

// StopTiming closes the span and folds its elapsed time into the kind's
// aggregate. Stopping an unopened key is a no-op.
func (m *TimingMonitor) StopTiming(key string, kind types.ActionKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start, ok := m.open[key]
	if !ok {
		return
	}
	delete(m.open, key)
	st := m.totals[kind]
	st.Count++
	st.Total += time.Since(start)
	m.totals[kind] = st
}

// Stats returns a copy of the per-kind aggregates.
func (m *TimingMonitor) Stats() map[types.ActionKind]TimingStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[types.ActionKind]TimingStats, len(m.totals))
	for k, v := range m.totals {
		out[k] = v
	}
	return out
}

// OpenSpans returns the number of spans started but not yet stopped.
// Steady-state it should be zero between pipeline runs.
func (m *TimingMonitor) OpenSpans() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}
