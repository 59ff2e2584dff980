// Package media provides video normalization and concatenation on top of
// the ffmpeg CLI.
package media

import "context"

// Processor defines the interface for media normalization and concatenation.
// Implementations should use ffmpeg or similar tools for media manipulation.
type Processor interface {
	// NormalizeVideo re-encodes a source video into the canonical output
	// format (H.264/AAC, yuv420p, constant frame rate) scaled to fit w x h
	// with aspect ratio preserved and black padding added. Sources without
	// an audio stream get a silent stereo track so every normalized clip
	// shares the same stream layout.
	NormalizeVideo(ctx context.Context, src, dst string, w, h int) error

	// ImageToClip synthesizes a fixed-duration video clip from a still
	// image, with a silent audio track of matching duration, in the same
	// canonical format as NormalizeVideo.
	ImageToClip(ctx context.Context, src, dst string, w, h int, seconds float64) error

	// Concatenate joins the clips, in order, into a single output file.
	// A single clip degenerates to a plain file copy. Multiple clips use
	// the concat demuxer in stream-copy mode, falling back to re-encoding
	// if the copy fails.
	Concatenate(ctx context.Context, clips []string, output string) error

	// Duration returns the duration in seconds of a media file.
	Duration(ctx context.Context, path string) (float64, error)
}
