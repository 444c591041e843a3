package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/okoval/giftbox/internal/config"
)

// Storage defines the interface for media storage operations
type Storage interface {
	// Save stores a file at the given path
	Save(path string, file io.Reader) error

	// Delete removes a file at the given path
	Delete(path string) error

	// URL returns a URL for accessing the file
	URL(path string) string
}

// S3Storage implements Storage for S3-compatible services.
// Works with AWS S3, MinIO, DigitalOcean Spaces, Cloudflare R2, etc.
type S3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	region        string
	endpoint      string
	publicURL     string
	presignExpiry time.Duration
}

// S3Config holds configuration for S3 storage
type S3Config struct {
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	Endpoint      string // Optional: for S3-compatible services
	PresignExpiry time.Duration
}

// New creates an S3-compatible storage instance from app config
func New(c *cfg.Config) (Storage, error) {
	slog.Info("initializing S3 storage",
		"bucket", c.S3Bucket,
		"region", c.S3Region,
		"endpoint", c.S3Endpoint,
	)
	return NewS3Storage(S3Config{
		Region:        c.S3Region,
		Bucket:        c.S3Bucket,
		AccessKey:     c.S3AccessKey,
		SecretKey:     c.S3SecretKey,
		Endpoint:      c.S3Endpoint,
		PresignExpiry: c.S3PresignExpiry,
	})
}

// NewS3Storage creates a new S3 storage instance
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	ctx := context.Background()

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	// Add static credentials if provided
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Create S3 client with optional custom endpoint
	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO and some S3-compatible services
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	publicURL := cfg.Endpoint
	if publicURL == "" {
		// Standard AWS S3 URL
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	} else {
		// Custom endpoint (MinIO, DO Spaces, etc.)
		publicURL = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	presignClient := s3.NewPresignClient(client)

	storage := &S3Storage{
		client:        client,
		presignClient: presignClient,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      cfg.Endpoint,
		publicURL:     publicURL,
		presignExpiry: cfg.PresignExpiry,
	}

	// Auto-create bucket if it doesn't exist
	if err := storage.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return storage, nil
}

// ensureBucket checks if bucket exists, creates it if not
func (s *S3Storage) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil // Bucket exists
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", s.bucket, err)
	}

	slog.Info("created S3 bucket", "bucket", s.bucket)
	return nil
}

// Save stores a file in S3
func (s *S3Storage) Save(path string, file io.Reader) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

// Delete removes a file from S3
func (s *S3Storage) Delete(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// URL returns a presigned URL for accessing the file, falling back to the
// direct bucket URL if presigning fails.
func (s *S3Storage) URL(path string) string {
	url, err := s.PresignedURL(path, s.presignExpiry)
	if err != nil {
		return fmt.Sprintf("%s/%s", s.publicURL, path)
	}
	return url
}

// PresignedURL generates a presigned URL for temporary access
func (s *S3Storage) PresignedURL(path string, expiry time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	presignedReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})

	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}

	return presignedReq.URL, nil
}
