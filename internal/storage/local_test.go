package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLocalArtifactStore(t *testing.T) {
	t.Run("creates directory if not exists", func(t *testing.T) {
		rendersDir := filepath.Join(t.TempDir(), "renders")

		store, err := NewLocalArtifactStore(rendersDir)
		if err != nil {
			t.Fatalf("NewLocalArtifactStore() error = %v", err)
		}

		if store.RendersDir() != rendersDir {
			t.Errorf("RendersDir() = %v, want %v", store.RendersDir(), rendersDir)
		}

		info, err := os.Stat(rendersDir)
		if err != nil {
			t.Fatalf("directory not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected directory, got file")
		}
	})

	t.Run("uses default directory when empty", func(t *testing.T) {
		store, err := NewLocalArtifactStore("")
		if err != nil {
			t.Fatalf("NewLocalArtifactStore() error = %v", err)
		}
		defer func() { _ = os.RemoveAll("renders") }()

		if store.RendersDir() != "renders" {
			t.Errorf("RendersDir() = %v, want renders", store.RendersDir())
		}
	})
}

func TestLocalArtifactStore_Publish(t *testing.T) {
	ctx := context.Background()

	newStore := func(t *testing.T) (*LocalArtifactStore, string) {
		t.Helper()
		rendersDir := filepath.Join(t.TempDir(), "renders")
		store, err := NewLocalArtifactStore(rendersDir)
		if err != nil {
			t.Fatalf("NewLocalArtifactStore() error = %v", err)
		}
		return store, rendersDir
	}

	writeArtifact := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "combined.mp4")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("publishes under project label with relative URL", func(t *testing.T) {
		store, rendersDir := newStore(t)
		src := writeArtifact(t, "video bytes")

		url, err := store.Publish(ctx, src, "demo")
		if err != nil {
			t.Fatalf("Publish() error = %v", err)
		}

		if !strings.HasPrefix(url, "/renders/demo/demo_") {
			t.Errorf("Publish() url = %v, want /renders/demo/demo_ prefix", url)
		}
		if !strings.HasSuffix(url, ".mp4") {
			t.Errorf("Publish() url = %v, want .mp4 suffix", url)
		}

		// The URL maps onto the renders directory
		onDisk := filepath.Join(rendersDir, strings.TrimPrefix(url, "/renders/"))
		data, err := os.ReadFile(onDisk)
		if err != nil {
			t.Fatalf("published artifact not found: %v", err)
		}
		if string(data) != "video bytes" {
			t.Errorf("artifact content = %q, want %q", data, "video bytes")
		}

		// The scratch copy was consumed by the move
		if _, err := os.Stat(src); !os.IsNotExist(err) {
			t.Error("source file still exists after publish")
		}
	})

	t.Run("repeated publishes get distinct paths", func(t *testing.T) {
		store, _ := newStore(t)

		url1, err := store.Publish(ctx, writeArtifact(t, "first"), "demo")
		if err != nil {
			t.Fatalf("first Publish() error = %v", err)
		}
		url2, err := store.Publish(ctx, writeArtifact(t, "second"), "demo")
		if err != nil {
			t.Fatalf("second Publish() error = %v", err)
		}

		if url1 == url2 {
			t.Errorf("expected distinct artifact paths, both = %v", url1)
		}
	})

	t.Run("missing source fails", func(t *testing.T) {
		store, _ := newStore(t)

		if _, err := store.Publish(ctx, "/nonexistent/combined.mp4", "demo"); err == nil {
			t.Error("expected error for missing source, got nil")
		}
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		store, _ := newStore(t)
		src := writeArtifact(t, "video")

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := store.Publish(cancelled, src, "demo"); err == nil {
			t.Error("expected error for cancelled context, got nil")
		}
	})
}
