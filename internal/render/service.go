package render

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/storycut/storycut-api/internal/media"
	"github.com/storycut/storycut-api/internal/storage"
)

// Default render policy. The still duration is fixed by product policy,
// not configurable per shot.
const (
	DefaultWidth         = 1920
	DefaultHeight        = 1080
	DefaultStillDuration = 5 * time.Second

	defaultFetchTimeout     = 60 * time.Second
	defaultTranscodeTimeout = 300 * time.Second
)

var labelSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeLabel converts a project label into a filesystem-safe token.
func SanitizeLabel(label string) string {
	return labelSanitizer.ReplaceAllString(label, "_")
}

// Result is the outcome of a successful render.
type Result struct {
	// JobID identifies the render job record.
	JobID string
	// VideoURL is the durable artifact address, relative to the service origin.
	VideoURL string
}

// Service orchestrates the render pipeline. It drives fetch, normalize and
// concatenate for each request, owns the per-render scratch workspace, and
// guarantees its cleanup regardless of outcome.
type Service struct {
	fetcher   Fetcher
	processor media.Processor
	store     storage.ArtifactStore
	repo      Repository
	logger    *slog.Logger

	scratchDir       string
	width            int
	height           int
	stillDuration    time.Duration
	concurrency      int
	fetchTimeout     time.Duration
	transcodeTimeout time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithOutputSize overrides the canonical output resolution.
func WithOutputSize(w, h int) ServiceOption {
	return func(s *Service) {
		if w > 0 && h > 0 {
			s.width = w
			s.height = h
		}
	}
}

// WithConcurrency sets how many shots may be fetched and normalized in
// parallel. The default of 1 processes shots strictly in order; higher
// values parallelize preparation while concatenation still reassembles by
// original shot index.
func WithConcurrency(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithFetchTimeout bounds each asset download.
func WithFetchTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithTranscodeTimeout bounds each transcoding subprocess.
func WithTranscodeTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.transcodeTimeout = d
		}
	}
}

// NewService creates a render Service. scratchDir is the base directory
// under which per-render workspaces are created.
func NewService(
	fetcher Fetcher,
	processor media.Processor,
	store storage.ArtifactStore,
	repo Repository,
	scratchDir string,
	logger *slog.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		fetcher:          fetcher,
		processor:        processor,
		store:            store,
		repo:             repo,
		logger:           logger,
		scratchDir:       scratchDir,
		width:            DefaultWidth,
		height:           DefaultHeight,
		stillDuration:    DefaultStillDuration,
		concurrency:      1,
		fetchTimeout:     defaultFetchTimeout,
		transcodeTimeout: defaultTranscodeTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetJob returns a render job record by ID.
func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// ListJobs returns all render job records, newest first.
func (s *Service) ListJobs(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// Render executes one render request end to end. A render either fully
// succeeds with every processable shot included, or fails entirely with no
// durable artifact produced; there is no partial-success mode.
func (s *Service) Render(ctx context.Context, req Request) (*Result, error) {
	shots := ResolveShots(req.Shots)

	// Skipped shots are a deliberate policy, not an error: they
	// contribute nothing to the timeline and do not break ordering.
	usable := make([]Shot, 0, len(shots))
	for _, shot := range shots {
		if shot.Kind == SourceNone {
			s.logger.Info("skipping shot without source",
				slog.String("shot_id", shot.ID),
				slog.Int("index", shot.Index),
			)
			continue
		}
		usable = append(usable, shot)
	}

	if len(usable) == 0 {
		return nil, ErrNoRenderableShots
	}

	label := SanitizeLabel(req.ProjectLabel)
	job := NewJob(label, len(usable))
	s.saveJob(ctx, job)

	s.logger.Info("render started",
		slog.String("render_id", job.ID),
		slog.String("project", label),
		slog.Int("shots", len(usable)),
	)

	url, err := s.execute(ctx, job, label, usable)
	if err != nil {
		if abortErr := job.Abort(err.Error()); abortErr != nil {
			s.logger.Error("failed to abort job",
				slog.String("render_id", job.ID),
				slog.String("error", abortErr.Error()),
			)
		}
		s.saveJob(ctx, job)
		s.logger.Error("render failed",
			slog.String("render_id", job.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := job.Complete(url); err != nil {
		s.logger.Error("failed to complete job",
			slog.String("render_id", job.ID),
			slog.String("error", err.Error()),
		)
	}
	s.saveJob(ctx, job)

	s.logger.Info("render finished",
		slog.String("render_id", job.ID),
		slog.String("video_url", url),
	)

	return &Result{JobID: job.ID, VideoURL: url}, nil
}

// execute runs the pipeline inside a scratch workspace that is removed on
// every return path.
func (s *Service) execute(ctx context.Context, job *Job, label string, shots []Shot) (string, error) {
	ws, err := NewWorkspace(s.scratchDir, job.ID)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := ws.Remove(); err != nil {
			s.logger.Error("failed to remove workspace",
				slog.String("render_id", job.ID),
				slog.String("path", ws.Root()),
				slog.String("error", err.Error()),
			)
		}
	}()

	s.advance(ctx, job, StatusFetching)

	// Clips are indexed by position in the usable shot list so the final
	// order matches the request timeline even when preparation overlaps.
	clips := make([]string, len(shots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, shot := range shots {
		g.Go(func() error {
			clip, err := s.prepareShot(gctx, job, ws, shot)
			if err != nil {
				return err
			}
			clips[i] = clip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	s.advance(ctx, job, StatusConcatenating)

	concatCtx, cancel := context.WithTimeout(ctx, s.transcodeTimeout)
	defer cancel()
	output := ws.OutputPath()
	if err := s.processor.Concatenate(concatCtx, clips, output); err != nil {
		return "", &ConcatenationError{Err: err}
	}

	s.advance(ctx, job, StatusFinalizing)

	url, err := s.store.Publish(ctx, output, label)
	if err != nil {
		return "", err
	}

	return url, nil
}

// prepareShot fetches one shot's asset and normalizes it into a clip.
func (s *Service) prepareShot(ctx context.Context, job *Job, ws *Workspace, shot Shot) (string, error) {
	src := ws.SourcePath(shot.Index, shot.Kind)

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	if err := s.fetcher.Fetch(fetchCtx, shot.URL, src); err != nil {
		return "", err
	}

	// First shot to finish fetching moves the job into normalizing;
	// later shots are a no-op on the state machine.
	if err := job.TransitionTo(StatusNormalizing); err == nil {
		s.saveJob(ctx, job)
	}

	clip := ws.ClipPath(shot.Index)
	transcodeCtx, cancelTranscode := context.WithTimeout(ctx, s.transcodeTimeout)
	defer cancelTranscode()

	var err error
	switch shot.Kind {
	case SourceVideo:
		err = s.processor.NormalizeVideo(transcodeCtx, src, clip, s.width, s.height)
	case SourceImage:
		err = s.processor.ImageToClip(transcodeCtx, src, clip, s.width, s.height, s.stillDuration.Seconds())
	}
	if err != nil {
		return "", &TranscodeError{ShotID: shot.ID, Err: err}
	}

	// Scratch hygiene: the raw source is no longer needed once the clip
	// exists. The workspace removal covers it anyway if this fails.
	if err := os.Remove(src); err != nil {
		s.logger.Warn("failed to remove fetched source",
			slog.String("render_id", job.ID),
			slog.String("path", src),
		)
	}

	return clip, nil
}

// advance transitions the job and persists it, logging invalid transitions
// instead of failing the render over bookkeeping.
func (s *Service) advance(ctx context.Context, job *Job, status Status) {
	if err := job.TransitionTo(status); err != nil {
		s.logger.Warn("unexpected job transition",
			slog.String("render_id", job.ID),
			slog.String("to", string(status)),
			slog.String("error", err.Error()),
		)
		return
	}
	s.saveJob(ctx, job)
}

func (s *Service) saveJob(ctx context.Context, job *Job) {
	if err := s.repo.Save(ctx, job); err != nil {
		s.logger.Error("failed to save job",
			slog.String("render_id", job.ID),
			slog.String("error", err.Error()),
		)
	}
}
