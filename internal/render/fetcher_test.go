package render

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestHTTPFetcherDownloadsFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		_, _ = w.Write([]byte("video bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "source_000.mp4")
	f := NewHTTPFetcher()

	if err := f.Fetch(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "video bytes" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "source_000.mp4")
	f := NewHTTPFetcher()

	err := f.Fetch(context.Background(), srv.URL+"/missing.mp4", dest)
	var re *RetrievalError
	if !errors.As(err, &re) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
	if re.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", re.StatusCode)
	}

	// No partial file is left behind
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("expected no file at dest, got %v", err)
	}
}

func TestHTTPFetcherTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	dest := filepath.Join(t.TempDir(), "source_000.mp4")
	f := NewHTTPFetcher()

	err := f.Fetch(context.Background(), srv.URL, dest)
	var re *RetrievalError
	if !errors.As(err, &re) {
		t.Fatalf("expected RetrievalError, got %v", err)
	}
	if re.StatusCode != 0 {
		t.Errorf("expected zero status for transport failure, got %d", re.StatusCode)
	}
	if re.Err == nil {
		t.Error("expected wrapped transport error")
	}
}

func TestHTTPFetcherContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher()
	err := f.Fetch(ctx, srv.URL, filepath.Join(t.TempDir(), "out.mp4"))
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestHTTPFetcherCustomClient(t *testing.T) {
	custom := &http.Client{}
	f := NewHTTPFetcher(WithHTTPClient(custom))
	if f.client != custom {
		t.Error("expected custom client to be set")
	}
}
