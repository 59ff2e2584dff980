package render

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is the scratch directory for one render job. It is owned
// exclusively by that job and removed in full when the job ends,
// regardless of outcome.
type Workspace struct {
	root string
}

// NewWorkspace creates the scratch directory for a render under baseDir,
// keyed by the render ID so concurrent renders never collide.
func NewWorkspace(baseDir, renderID string) (*Workspace, error) {
	root := filepath.Join(baseDir, renderID)
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{root: root}, nil
}

// Root returns the workspace directory path.
func (w *Workspace) Root() string {
	return w.root
}

// SourcePath returns the path for a shot's raw fetched asset, named by
// shot position to avoid collisions within the job.
func (w *Workspace) SourcePath(index int, kind SourceKind) string {
	ext := ".mp4"
	if kind == SourceImage {
		ext = ".img"
	}
	return filepath.Join(w.root, fmt.Sprintf("source_%03d%s", index, ext))
}

// ClipPath returns the path for a shot's normalized clip, named by shot
// position to preserve timeline order for concatenation.
func (w *Workspace) ClipPath(index int) string {
	return filepath.Join(w.root, fmt.Sprintf("clip_%03d.mp4", index))
}

// OutputPath returns the path for the concatenated output before it is
// published to durable storage.
func (w *Workspace) OutputPath() string {
	return filepath.Join(w.root, "combined.mp4")
}

// Remove deletes the workspace and everything in it.
func (w *Workspace) Remove() error {
	return os.RemoveAll(w.root)
}
