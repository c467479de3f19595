package pipeline

import (
	"errors"
	"testing"
	"time"
)

func TestNewRun(t *testing.T) {
	r1 := NewRun()
	r2 := NewRun()
	if r1.ID == "" || r1.ID == r2.ID {
		t.Errorf("expected distinct run ids, got %q and %q", r1.ID, r2.ID)
	}
	if r1.Status != StatusIdle {
		t.Errorf("expected idle, got %s", r1.Status)
	}
}

func TestRun_StateTransitions(t *testing.T) {
	run := NewRun()

	transitions := []struct {
		status RunStatus
		phase  string
	}{
		{StatusLoading, "loading"},
		{StatusRendering, "rendering"},
		{StatusPersisting, "persisting"},
		{StatusDone, "done"},
	}

	for _, tr := range transitions {
		before := run.UpdatedAt
		time.Sleep(time.Millisecond)
		run.SetStatus(tr.status, tr.phase)

		if run.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, run.Status)
		}
		if run.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, run.Phase)
		}
		if !run.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestRun_Fail(t *testing.T) {
	run := NewRun()
	run.SetStatus(StatusRendering, "rendering")
	run.Fail("parsing", errors.New("bad record"))

	snap := run.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Errorf("unexpected state %s/%s", snap.Status, snap.Phase)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "bad record" {
		t.Errorf("unexpected errors %v", snap.Progress.Errors)
	}
}

func TestRun_SnapshotNonNilErrors(t *testing.T) {
	run := NewRun()
	run.SetLoaded(10, 4)
	run.IncrProcessed()
	run.IncrProcessed()

	snap := run.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice for JSON")
	}
	if snap.Progress.Loaded != 10 || snap.Progress.Limit != 4 || snap.Progress.Processed != 2 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
}
