package audit

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) *FileLogger {
	t.Helper()
	l, err := NewFileLogger(filepath.Join(t.TempDir(), "audit.log"), RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLogAndQuery(t *testing.T) {
	l := newTestLogger(t)

	ev := NewEvent("test-domain-id", "test-cuc-id", OpSetStreams).
		WithStreams([]string{"00-00-00-00-00-01:00-01"}).
		WithResult("Success").
		WithDuration(5 * time.Millisecond)
	if err := l.Log(ev); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := l.Query(Filter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	got := events[0]
	if got.Operation != OpSetStreams || got.CucID != "test-cuc-id" || !got.Success {
		t.Errorf("event round trip mismatch: %+v", got)
	}
	if len(got.StreamIDs) != 1 || got.StreamIDs[0] != "00-00-00-00-00-01:00-01" {
		t.Errorf("stream ids = %v", got.StreamIDs)
	}
}

func TestWithResultMarksFailures(t *testing.T) {
	if NewEvent("", "", OpGetStreams).WithResult("Failure").Success {
		t.Error(`"Failure" counted as success`)
	}
	if NewEvent("", "", OpRequestFreeStreamID).WithResult("no id").Success {
		t.Error(`"no id" counted as success`)
	}
	if !NewEvent("", "", OpRequestDomainID).WithResult("test-domain-id").Success {
		t.Error("domain id result counted as failure")
	}
}

func TestQueryFilters(t *testing.T) {
	l := newTestLogger(t)

	l.Log(NewEvent("d1", "cuc-a", OpSetStreams).WithResult("Success"))
	l.Log(NewEvent("d1", "cuc-b", OpRemoveStreams).WithResult("Success"))
	l.Log(NewEvent("d1", "cuc-a", OpComputeStreams).WithResult("Failure"))

	byCuc, _ := l.Query(Filter{CucID: "cuc-a"})
	if len(byCuc) != 2 {
		t.Errorf("CucID filter: got %d events, want 2", len(byCuc))
	}
	byOp, _ := l.Query(Filter{Operation: OpRemoveStreams})
	if len(byOp) != 1 {
		t.Errorf("Operation filter: got %d events, want 1", len(byOp))
	}
	failures, _ := l.Query(Filter{FailureOnly: true})
	if len(failures) != 1 || failures[0].Operation != OpComputeStreams {
		t.Errorf("FailureOnly filter: %+v", failures)
	}
	limited, _ := l.Query(Filter{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("Limit: got %d events, want 2", len(limited))
	}
	offset, _ := l.Query(Filter{Offset: 2})
	if len(offset) != 1 {
		t.Errorf("Offset: got %d events, want 1", len(offset))
	}
}

func TestStreamIDFilter(t *testing.T) {
	l := newTestLogger(t)
	l.Log(NewEvent("d1", "cuc-a", OpSetStreams).WithStreams([]string{"00-00-00-00-00-01:00-01"}).WithResult("Success"))
	l.Log(NewEvent("d1", "cuc-a", OpSetStreams).WithStreams([]string{"00-00-00-00-00-01:00-02"}).WithResult("Success"))

	events, _ := l.Query(Filter{StreamID: "00-00-00-00-00-01:00-02"})
	if len(events) != 1 {
		t.Errorf("StreamID filter: got %d events, want 1", len(events))
	}
}

func TestRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := NewFileLogger(path, RotationConfig{MaxSize: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer l.Close()

	// Every write after the first exceeds MaxSize and rotates.
	for i := 0; i < 3; i++ {
		if err := l.Log(NewEvent("d1", "cuc-a", OpSetStreams).WithResult("Success")); err != nil {
			t.Fatalf("Log %d failed: %v", i, err)
		}
	}

	rotated, err := filepath.Glob(path + ".*")
	if err != nil {
		t.Fatal(err)
	}
	if len(rotated) == 0 {
		t.Error("no rotated files produced")
	}
}

func TestDefaultLoggerNoop(t *testing.T) {
	// Without a configured default logger, Log and Query are no-ops.
	if err := Log(NewEvent("d", "c", OpSetStreams)); err != nil {
		t.Errorf("Log without default logger errored: %v", err)
	}
	events, err := Query(Filter{})
	if err != nil || len(events) != 0 {
		t.Errorf("Query without default logger = %v, %v", events, err)
	}
}
