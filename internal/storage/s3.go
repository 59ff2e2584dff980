package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the configuration for S3 artifact storage.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // Optional: for custom S3-compatible endpoints
	AccessKeyID     string // Optional: AWS access key ID
	SecretAccessKey string // Optional: AWS secret access key
}

// Compile-time check that S3ArtifactStore implements ArtifactStore.
var _ ArtifactStore = (*S3ArtifactStore)(nil)

// S3ArtifactStore publishes artifacts to an S3 bucket. Unlike the local
// store it returns absolute object URLs; deployments that need
// origin-relative addresses should front the bucket with a CDN path.
type S3ArtifactStore struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3ArtifactStore creates a new S3ArtifactStore.
func NewS3ArtifactStore(cfg S3Config) (*S3ArtifactStore, error) {
	var configOpts []func(*config.LoadOptions) error
	configOpts = append(configOpts, config.WithRegion(cfg.Region))

	// Use static credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), configOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, clientOpts...)

	return &S3ArtifactStore{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

// Publish uploads the artifact under renders/<label>/<name> and returns
// the object URL. The local file is removed after a successful upload.
func (s *S3ArtifactStore) Publish(ctx context.Context, localPath, projectLabel string) (string, error) {
	f, err := os.Open(localPath) // #nosec G304 - localPath is produced by the render pipeline
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	key := fmt.Sprintf("renders/%s/%s", projectLabel, artifactName(projectLabel))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return "", fmt.Errorf("upload to S3: %w", err)
	}

	_ = os.Remove(localPath)

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	return url, nil
}
