// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// ErrAutomationURLRequired is returned when AUTOMATION_WEBHOOK_URL is not set.
var ErrAutomationURLRequired = errors.New("config: AUTOMATION_WEBHOOK_URL is required")

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Automation engine settings
	AutomationWebhookURL string `env:"AUTOMATION_WEBHOOK_URL, required" json:"automation_webhook_url"`
	AutomationAPIKey     string `env:"AUTOMATION_API_KEY" json:"-"` // Masked in JSON

	// Storage settings
	ProjectsDir string `env:"PROJECTS_DIR, default=projects" json:"projects_dir"`
	RendersDir  string `env:"RENDERS_DIR, default=renders" json:"renders_dir"`
	ScratchDir  string `env:"SCRATCH_DIR, default=/tmp/storycut" json:"scratch_dir"`

	// Render pipeline settings
	FFmpegPath          string `env:"FFMPEG_PATH" json:"ffmpeg_path,omitempty"`
	OutputWidth         int    `env:"OUTPUT_WIDTH, default=1920" json:"output_width"`
	OutputHeight        int    `env:"OUTPUT_HEIGHT, default=1080" json:"output_height"`
	RenderConcurrency   int    `env:"RENDER_CONCURRENCY, default=1" json:"render_concurrency"`
	FetchTimeoutSec     int    `env:"FETCH_TIMEOUT_SEC, default=60" json:"fetch_timeout_sec"`
	TranscodeTimeoutSec int    `env:"TRANSCODE_TIMEOUT_SEC, default=300" json:"transcode_timeout_sec"`

	// Optional S3 settings for artifact publication
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// FetchTimeout returns the per-asset download deadline.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

// TranscodeTimeout returns the per-subprocess transcode deadline.
func (c *Config) TranscodeTimeout() time.Duration {
	return time.Duration(c.TranscodeTimeoutSec) * time.Second
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		// Map envconfig errors to our domain errors for required fields
		if strings.Contains(err.Error(), "AUTOMATION_WEBHOOK_URL") {
			return nil, ErrAutomationURLRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
