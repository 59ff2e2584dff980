package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Compile-time check that LocalArtifactStore implements ArtifactStore.
var _ ArtifactStore = (*LocalArtifactStore)(nil)

// LocalArtifactStore publishes artifacts to a directory on local disk.
// The directory is served statically under /renders/ by the HTTP server,
// so published URLs stay portable across deployment hosts.
type LocalArtifactStore struct {
	rendersDir string
}

// NewLocalArtifactStore creates a LocalArtifactStore rooted at rendersDir.
// The directory is created if it doesn't exist.
func NewLocalArtifactStore(rendersDir string) (*LocalArtifactStore, error) {
	if rendersDir == "" {
		rendersDir = "renders"
	}
	if err := os.MkdirAll(rendersDir, 0750); err != nil {
		return nil, fmt.Errorf("create renders directory: %w", err)
	}
	return &LocalArtifactStore{rendersDir: rendersDir}, nil
}

// RendersDir returns the root directory for published artifacts.
func (s *LocalArtifactStore) RendersDir() string {
	return s.rendersDir
}

// Publish moves localPath into <rendersDir>/<label>/ under a timestamped,
// collision-free name and returns the service-relative URL.
func (s *LocalArtifactStore) Publish(ctx context.Context, localPath, projectLabel string) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	dir := filepath.Join(s.rendersDir, projectLabel)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create project renders directory: %w", err)
	}

	name := artifactName(projectLabel)
	dest := filepath.Join(dir, name)

	if err := moveFile(localPath, dest); err != nil {
		return "", fmt.Errorf("publish artifact: %w", err)
	}

	return "/renders/" + projectLabel + "/" + name, nil
}

// artifactName builds a unique artifact filename from the project label, a
// UTC timestamp and a random nonce. Repeated renders of the same project
// in the same second still get distinct paths.
func artifactName(projectLabel string) string {
	stamp := time.Now().UTC().Format("20060102T150405")
	nonce := make([]byte, 2)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Sprintf("%s_%s.mp4", projectLabel, stamp)
	}
	return fmt.Sprintf("%s_%s_%s.mp4", projectLabel, stamp, hex.EncodeToString(nonce))
}

// moveFile renames src to dst, falling back to copy-and-remove when the
// rename fails (scratch and renders directories may live on different
// filesystems).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src) // #nosec G304 - src is produced by the render pipeline
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640) // #nosec G304
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("close destination: %w", err)
	}

	_ = os.Remove(src)
	return nil
}
