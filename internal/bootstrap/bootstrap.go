// Package bootstrap provides dependency initialization for the StoryCut API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/storycut/storycut-api/internal/automation"
	"github.com/storycut/storycut-api/internal/config"
	"github.com/storycut/storycut-api/internal/media"
	"github.com/storycut/storycut-api/internal/project"
	"github.com/storycut/storycut-api/internal/render"
	"github.com/storycut/storycut-api/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	RenderService    *render.Service
	AutomationClient automation.Client
	ProjectStore     *project.Store
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize artifact storage
	store, err := initArtifactStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize automation client
	auto, err := automation.NewClient(cfg.AutomationWebhookURL, automation.WithAPIKey(cfg.AutomationAPIKey))
	if err != nil {
		return nil, fmt.Errorf("create automation client: %w", err)
	}

	// Initialize project store
	projects, err := project.NewStore(cfg.ProjectsDir)
	if err != nil {
		return nil, fmt.Errorf("create project store: %w", err)
	}

	// Initialize media processor, fetcher and job repository
	processor := media.NewFFmpegProcessor(cfg.FFmpegPath)
	fetcher := render.NewHTTPFetcher()
	repo := render.NewMemoryRepository()

	svc := render.NewService(
		fetcher,
		processor,
		store,
		repo,
		cfg.ScratchDir,
		logger,
		render.WithOutputSize(cfg.OutputWidth, cfg.OutputHeight),
		render.WithConcurrency(cfg.RenderConcurrency),
		render.WithFetchTimeout(cfg.FetchTimeout()),
		render.WithTranscodeTimeout(cfg.TranscodeTimeout()),
	)

	return &Dependencies{
		RenderService:    svc,
		AutomationClient: auto,
		ProjectStore:     projects,
	}, nil
}

// initArtifactStore creates the appropriate artifact backend based on configuration.
func initArtifactStore(cfg *config.Config, logger *slog.Logger) (storage.ArtifactStore, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3ArtifactStore(s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 artifact store: %w", err)
		}
		logger.Info("S3 artifact store configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalArtifactStore(cfg.RendersDir)
	if err != nil {
		return nil, fmt.Errorf("create local artifact store: %w", err)
	}
	logger.Info("local artifact store configured",
		slog.String("renders_dir", cfg.RendersDir),
	)
	return localStore, nil
}
