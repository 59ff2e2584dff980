package render

import (
	"errors"
	"testing"
)

func TestNewJob(t *testing.T) {
	j := NewJob("demo", 3)

	if j.ID == "" {
		t.Error("expected job ID to be set")
	}
	if j.Status != StatusReceived {
		t.Errorf("expected status %s, got %s", StatusReceived, j.Status)
	}
	if j.ProjectLabel != "demo" {
		t.Errorf("expected project demo, got %s", j.ProjectLabel)
	}
	if j.ShotCount != 3 {
		t.Errorf("expected 3 shots, got %d", j.ShotCount)
	}
	if j.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	// IDs are unique across jobs
	other := NewJob("demo", 3)
	if other.ID == j.ID {
		t.Error("expected distinct job IDs")
	}
}

func TestJobTransitions(t *testing.T) {
	j := NewJob("demo", 1)

	steps := []Status{StatusFetching, StatusNormalizing, StatusConcatenating, StatusFinalizing, StatusDone}
	for _, s := range steps {
		if err := j.TransitionTo(s); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}
	if !j.IsTerminal() {
		t.Error("expected done job to be terminal")
	}
	if j.CompletedAt.IsZero() {
		t.Error("expected CompletedAt on terminal job")
	}
}

func TestJobInvalidTransitions(t *testing.T) {
	j := NewJob("demo", 1)

	// Skipping states is not allowed
	if err := j.TransitionTo(StatusConcatenating); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}

	// Terminal states accept nothing
	if err := j.TransitionTo(StatusFetching); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := j.Abort("boom"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := j.TransitionTo(StatusNormalizing); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestJobAbortFromAnyActiveState(t *testing.T) {
	for _, from := range []Status{StatusReceived, StatusFetching, StatusNormalizing, StatusConcatenating, StatusFinalizing} {
		if !canTransition(from, StatusAborted) {
			t.Errorf("expected abort to be reachable from %s", from)
		}
	}
	for _, from := range []Status{StatusDone, StatusAborted} {
		if canTransition(from, StatusAborted) {
			t.Errorf("expected abort to be unreachable from %s", from)
		}
	}
}

func TestJobComplete(t *testing.T) {
	j := NewJob("demo", 1)
	for _, s := range []Status{StatusFetching, StatusNormalizing, StatusConcatenating, StatusFinalizing} {
		if err := j.TransitionTo(s); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}

	if err := j.Complete("/renders/demo/out.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.GetStatus() != StatusDone {
		t.Errorf("expected status %s, got %s", StatusDone, j.GetStatus())
	}
	if j.ArtifactURL != "/renders/demo/out.mp4" {
		t.Errorf("expected artifact URL, got %q", j.ArtifactURL)
	}
}

func TestJobAbort(t *testing.T) {
	j := NewJob("demo", 1)

	if err := j.Abort("fetch failed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.GetStatus() != StatusAborted {
		t.Errorf("expected status %s, got %s", StatusAborted, j.GetStatus())
	}
	if j.Error != "fetch failed" {
		t.Errorf("expected abort reason, got %q", j.Error)
	}
}

func TestJobClone(t *testing.T) {
	j := NewJob("demo", 2)
	clone := j.Clone()

	if clone == j {
		t.Fatal("expected a copy, got the same pointer")
	}
	if clone.ID != j.ID || clone.ProjectLabel != j.ProjectLabel || clone.ShotCount != j.ShotCount {
		t.Error("expected clone to carry the job's fields")
	}

	// Mutating the clone does not affect the original
	clone.Status = StatusDone
	if j.GetStatus() != StatusReceived {
		t.Error("expected original job untouched")
	}
}
