package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Canonical output frame rate. Every normalized clip is encoded at this
// rate so the concat demuxer can stream-copy without renegotiation.
const OutputFPS = 30

// Static errors for media operations.
var (
	// ErrInvalidDimensions is returned when the provided dimensions are not positive.
	ErrInvalidDimensions = errors.New("invalid dimensions: width and height must be positive")
	// ErrNoClips is returned when no clip paths are provided for concatenation.
	ErrNoClips = errors.New("no clip paths provided")
	// ErrInvalidDuration is returned when duration is not positive.
	ErrInvalidDuration = errors.New("invalid duration: must be positive")
	// ErrFFprobeExecution is returned when ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
)

// FFmpegProcessor implements Processor using the ffmpeg CLI.
type FFmpegProcessor struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
	// ffprobePath is the path to the ffprobe binary. Defaults to "ffprobe".
	ffprobePath string
}

// NewFFmpegProcessor creates a new FFmpegProcessor.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH); the
// ffprobe binary is assumed to live next to it.
func NewFFmpegProcessor(ffmpegPath string) *FFmpegProcessor {
	ffprobePath := "ffprobe"
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	} else if dir := filepath.Dir(ffmpegPath); dir != "." {
		ffprobePath = filepath.Join(dir, "ffprobe")
	}
	return &FFmpegProcessor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// scalePadFilter scales to fit within w x h while maintaining aspect ratio,
// then pads with black to center the frame at exactly w x h.
func scalePadFilter(w, h int) string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black", w, h, w, h)
}

// NormalizeVideo re-encodes src into the canonical format at w x h.
// If the source carries no audio stream, a silent stereo track is muxed in
// so that all normalized clips share the same stream layout.
func (p *FFmpegProcessor) NormalizeVideo(ctx context.Context, src, dst string, w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, w, h)
	}

	hasAudio, err := p.hasAudioStream(ctx, src)
	if err != nil {
		return err
	}

	filter := scalePadFilter(w, h) + fmt.Sprintf(",fps=%d,format=yuv420p", OutputFPS)

	args := []string{
		"-y",      // Overwrite output file without asking
		"-i", src, // Input video
	}
	if !hasAudio {
		// Synthesize a silent stereo track trimmed to the video length
		args = append(args,
			"-f", "lavfi",
			"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
			"-shortest",
		)
	}
	args = append(args,
		"-vf", filter,
		"-c:v", "libx264", // Canonical video codec
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "aac", // Canonical audio codec
		"-b:a", "128k",
		"-ar", "44100",
		dst,
	)

	return p.runFFmpeg(ctx, args)
}

// ImageToClip renders a still image into a video clip of the given length,
// with a silent audio track so concatenation never produces a stream with
// missing audio.
func (p *FFmpegProcessor) ImageToClip(ctx context.Context, src, dst string, w, h int, seconds float64) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: got %.2f", ErrInvalidDuration, seconds)
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, w, h)
	}

	filter := scalePadFilter(w, h) + ",format=yuv420p"

	args := []string{
		"-y",
		"-loop", "1", // Loop the input image
		"-t", fmt.Sprintf("%.2f", seconds),
		"-i", src,
		"-f", "lavfi", // Silent audio track of matching duration
		"-t", fmt.Sprintf("%.2f", seconds),
		"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
		"-vf", filter,
		"-r", fmt.Sprintf("%d", OutputFPS),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-shortest",
		dst,
	}

	return p.runFFmpeg(ctx, args)
}

// Concatenate joins clips in order into output.
// A single clip is copied as-is: no transcoding is invoked. Multiple clips
// go through the concat demuxer in stream-copy mode first, and are
// re-encoded only when the copy fails.
func (p *FFmpegProcessor) Concatenate(ctx context.Context, clips []string, output string) error {
	if len(clips) == 0 {
		return ErrNoClips
	}

	if len(clips) == 1 {
		return p.copyFile(clips[0], output)
	}

	manifest, err := p.writeConcatManifest(clips, filepath.Dir(output))
	if err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}
	// The manifest is scratch, never the deliverable
	defer func() { _ = os.Remove(manifest) }()

	if err := p.concatWithCopy(ctx, manifest, output); err == nil {
		return nil
	}

	return p.concatWithReencode(ctx, manifest, output)
}

// concatWithCopy concatenates clips using stream copy (no re-encoding).
func (p *FFmpegProcessor) concatWithCopy(ctx context.Context, manifest, output string) error {
	args := []string{
		"-y",
		"-f", "concat", // Use concat demuxer
		"-safe", "0", // Allow absolute paths
		"-i", manifest,
		"-c", "copy", // Copy streams without re-encoding
		output,
	}
	return p.runFFmpeg(ctx, args)
}

// concatWithReencode concatenates clips by re-encoding into the canonical codecs.
func (p *FFmpegProcessor) concatWithReencode(ctx context.Context, manifest, output string) error {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		output,
	}
	return p.runFFmpeg(ctx, args)
}

// writeConcatManifest creates a file listing the clip paths in order, in
// the format required by ffmpeg's concat demuxer. The manifest lives in
// dir so it is removed along with the rest of the scratch workspace.
func (p *FFmpegProcessor) writeConcatManifest(clips []string, dir string) (string, error) {
	f, err := os.CreateTemp(dir, "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create manifest file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, clip := range clips {
		absPath, err := filepath.Abs(clip)
		if err != nil {
			return "", fmt.Errorf("get absolute path for %s: %w", clip, err)
		}
		// Escape single quotes in path
		escaped := strings.ReplaceAll(absPath, "'", "'\\''")
		if _, err := fmt.Fprintf(f, "file '%s'\n", escaped); err != nil {
			return "", fmt.Errorf("write manifest entry: %w", err)
		}
	}

	return f.Name(), nil
}

// copyFile copies a file from src to dst.
func (p *FFmpegProcessor) copyFile(src, dst string) error {
	input, err := os.ReadFile(src) // #nosec G304 - src is provided by trusted internal code
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}
	if err := os.WriteFile(dst, input, 0600); err != nil {
		return fmt.Errorf("write destination file: %w", err)
	}
	return nil
}

// hasAudioStream reports whether the media file contains an audio stream.
func (p *FFmpegProcessor) hasAudioStream(ctx context.Context, path string) (bool, error) {
	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return false, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return false, fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, stderr.String())
	}

	return strings.TrimSpace(stdout.String()) != "", nil
}

// Duration returns the duration in seconds of a media file.
// It uses ffprobe to extract the duration metadata.
func (p *FFmpegProcessor) Duration(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, stderr.String())
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(stdout.String()), "%f", &duration); err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	return duration, nil
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (p *FFmpegProcessor) runFFmpeg(ctx context.Context, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Check if context was cancelled
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
