// Package storage provides durable artifact storage for rendered videos.
// It defines the ArtifactStore interface and implementations for local
// disk and S3.
package storage

import "context"

// ArtifactStore persists a finished render outside the scratch workspace
// at a stable, collision-free address. Stores are append-only from the
// perspective of renders: every publish writes to a new uniquely-named
// path and never overwrites an earlier artifact.
type ArtifactStore interface {
	// Publish moves the file at localPath into durable storage under the
	// project label and returns the artifact's address. For local storage
	// the address is relative to the service origin (e.g.
	// /renders/demo/demo_20240101T120000_ab12.mp4).
	Publish(ctx context.Context, localPath, projectLabel string) (url string, err error)
}
