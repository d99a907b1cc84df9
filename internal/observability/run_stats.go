// Package observability tracks run outcomes for the scheduled job.
package observability

import (
	"sync"
	"time"
)

// RunStats accumulates run outcomes across invocations. Failures are
// observable only through logs and these counters; no caller awaits a
// run's result.
type RunStats struct {
	mu              sync.RWMutex
	totalRuns       int64
	byState         map[string]int64
	failuresByStage map[string]int64
	rowsInserted    int64
	lateTriggers    int64
	lastRun         time.Time
	lastDuration    time.Duration
	lastError       string
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalRuns       int64
	ByState         map[string]int64
	FailuresByStage map[string]int64
	RowsInserted    int64
	LateTriggers    int64
	LastRun         time.Time
	LastDuration    time.Duration
	LastError       string
}

// NewRunStats creates a new run statistics tracker.
func NewRunStats() *RunStats {
	return &RunStats{
		byState:         make(map[string]int64),
		failuresByStage: make(map[string]int64),
	}
}

// Record registers the outcome of one run. failedStage is empty for
// successful runs. This method is O(1) and thread-safe.
func (s *RunStats) Record(state, failedStage string, rows int, took time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalRuns++
	s.byState[state]++
	if failedStage != "" {
		s.failuresByStage[failedStage]++
	}
	s.rowsInserted += int64(rows)
	s.lastRun = time.Now()
	s.lastDuration = took
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
}

// RecordLateTrigger counts a trigger that fired past its tolerance.
func (s *RunStats) RecordLateTrigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lateTriggers++
}

// Snapshot returns a copy of the current counters. Mutating the returned
// maps does not affect the tracker.
func (s *RunStats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		TotalRuns:       s.totalRuns,
		ByState:         make(map[string]int64, len(s.byState)),
		FailuresByStage: make(map[string]int64, len(s.failuresByStage)),
		RowsInserted:    s.rowsInserted,
		LateTriggers:    s.lateTriggers,
		LastRun:         s.lastRun,
		LastDuration:    s.lastDuration,
		LastError:       s.lastError,
	}
	for k, v := range s.byState {
		snap.ByState[k] = v
	}
	for k, v := range s.failuresByStage {
		snap.FailuresByStage[k] = v
	}
	return snap
}
