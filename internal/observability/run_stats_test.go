package observability

import (
	"fmt"
	"testing"
	"time"
)

func TestRunStats_Record(t *testing.T) {
	stats := NewRunStats()

	stats.Record("done", "", 10, 120*time.Millisecond, nil)
	stats.Record("done", "", 10, 100*time.Millisecond, nil)
	stats.Record("aborted", "provisioning", 0, 50*time.Millisecond, fmt.Errorf("blob missing"))

	snap := stats.Snapshot()
	if snap.TotalRuns != 3 {
		t.Errorf("TotalRuns = %d, want 3", snap.TotalRuns)
	}
	if snap.ByState["done"] != 2 {
		t.Errorf("done count = %d, want 2", snap.ByState["done"])
	}
	if snap.ByState["aborted"] != 1 {
		t.Errorf("aborted count = %d, want 1", snap.ByState["aborted"])
	}
	if snap.FailuresByStage["provisioning"] != 1 {
		t.Errorf("provisioning failures = %d, want 1", snap.FailuresByStage["provisioning"])
	}
	if snap.RowsInserted != 20 {
		t.Errorf("RowsInserted = %d, want 20", snap.RowsInserted)
	}
	if snap.LastError != "blob missing" {
		t.Errorf("LastError = %q", snap.LastError)
	}
	if snap.LastDuration != 50*time.Millisecond {
		t.Errorf("LastDuration = %s", snap.LastDuration)
	}
}

func TestRunStats_LastErrorClearsOnSuccess(t *testing.T) {
	stats := NewRunStats()
	stats.Record("aborted", "connecting", 0, time.Millisecond, fmt.Errorf("auth failed"))
	stats.Record("done", "", 10, time.Millisecond, nil)

	if got := stats.Snapshot().LastError; got != "" {
		t.Errorf("LastError should clear after a successful run, got %q", got)
	}
}

func TestRunStats_SnapshotIsolation(t *testing.T) {
	stats := NewRunStats()
	stats.Record("done", "", 10, time.Millisecond, nil)

	snap := stats.Snapshot()
	snap.ByState["done"] = 99
	snap.FailuresByStage["bogus"] = 1

	fresh := stats.Snapshot()
	if fresh.ByState["done"] != 1 {
		t.Error("mutating a snapshot should not affect the tracker")
	}
	if _, ok := fresh.FailuresByStage["bogus"]; ok {
		t.Error("mutating a snapshot should not affect the tracker")
	}
}

func TestRunStats_LateTriggers(t *testing.T) {
	stats := NewRunStats()
	stats.RecordLateTrigger()
	stats.RecordLateTrigger()

	if got := stats.Snapshot().LateTriggers; got != 2 {
		t.Errorf("LateTriggers = %d, want 2", got)
	}
}
