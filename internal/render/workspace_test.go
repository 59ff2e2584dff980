package render

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspacePaths(t *testing.T) {
	base := t.TempDir()
	ws, err := NewWorkspace(base, "render-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ws.Root() != filepath.Join(base, "render-123") {
		t.Errorf("unexpected root %q", ws.Root())
	}
	if info, err := os.Stat(ws.Root()); err != nil || !info.IsDir() {
		t.Fatalf("expected workspace dir to exist: %v", err)
	}

	if got := filepath.Base(ws.SourcePath(0, SourceVideo)); got != "source_000.mp4" {
		t.Errorf("unexpected video source name %q", got)
	}
	if got := filepath.Base(ws.SourcePath(7, SourceImage)); got != "source_007.img" {
		t.Errorf("unexpected image source name %q", got)
	}
	if got := filepath.Base(ws.ClipPath(12)); got != "clip_012.mp4" {
		t.Errorf("unexpected clip name %q", got)
	}
	if got := filepath.Base(ws.OutputPath()); got != "combined.mp4" {
		t.Errorf("unexpected output name %q", got)
	}
}

func TestWorkspaceRemove(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir(), "render-456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(ws.ClipPath(0), []byte("clip"), 0o640); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ws.Remove(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(ws.Root()); !os.IsNotExist(err) {
		t.Errorf("expected workspace gone, got %v", err)
	}

	// Removing twice is harmless
	if err := ws.Remove(); err != nil {
		t.Errorf("unexpected error on second remove: %v", err)
	}
}

func TestWorkspaceIsolation(t *testing.T) {
	base := t.TempDir()
	a, err := NewWorkspace(base, "render-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewWorkspace(base, "render-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Root() == b.Root() {
		t.Fatal("expected distinct workspace roots")
	}
	if err := a.Remove(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(b.Root()); err != nil {
		t.Errorf("expected sibling workspace untouched: %v", err)
	}
}
