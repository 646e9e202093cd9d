package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/onevector/talenthub/internal/config"
)

const resumePrefix = "resumes/"

// S3ResumeStore keeps candidate resumes in an S3 bucket and hands out short-lived read URLs
type S3ResumeStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	urlExpiry time.Duration
}

// NewS3ResumeStore builds the client from cfg. Static keys are used when set,
// otherwise the default AWS credential chain applies.
func NewS3ResumeStore(ctx context.Context, cfg config.StorageConfig) (*S3ResumeStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}

	return &S3ResumeStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		urlExpiry: expiry,
	}, nil
}

// NewResumeKey returns a unique object key that keeps the upload's extension
func NewResumeKey(filename string) string {
	return resumePrefix + uuid.New().String() + strings.ToLower(path.Ext(filename))
}

// Upload stores body under a fresh key and returns that key
func (s *S3ResumeStore) Upload(ctx context.Context, filename, contentType string, body io.Reader, size int64) (string, error) {
	key := NewResumeKey(filename)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload resume: %w", err)
	}

	return key, nil
}

// PresignGet returns a GET URL for the stored resume valid for the configured expiry
func (s *S3ResumeStore) PresignGet(ctx context.Context, storedPath string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ObjectKey(storedPath)),
	}, s3.WithPresignExpires(s.urlExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign resume url: %w", err)
	}

	return req.URL, nil
}

// ObjectKey turns a stored resume path into a bucket key.
// Older rows hold the full object URL rather than the key.
func ObjectKey(storedPath string) string {
	if strings.HasPrefix(storedPath, "http://") || strings.HasPrefix(storedPath, "https://") {
		if u, err := url.Parse(storedPath); err == nil {
			return strings.TrimPrefix(u.Path, "/")
		}
	}
	return strings.TrimPrefix(storedPath, "/")
}
