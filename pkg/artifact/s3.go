package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/emporiumlabs/emporium/internal/telemetry"
)

// S3Store keeps artifact copies in an S3 bucket for retention beyond
// the instance's lifetime.
type S3Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// NewS3Store creates an S3-backed artifact store and verifies bucket
// access. The bucket must already exist.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// newS3Client builds an S3 client from configuration. Static credentials
// take precedence; otherwise the default AWS credential chain applies.
func newS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

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
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return client, nil
}

func (s *S3Store) key(name string) string {
	return s.keyPrefix + name
}

// Put uploads the artifact under name.
func (s *S3Store) Put(ctx context.Context, name string, r io.Reader) error {
	ctx, span := telemetry.StartArtifactSpan(ctx, "put", name,
		telemetry.StoreType("s3"),
		telemetry.Bucket(s.bucket),
		telemetry.StorageKey(s.key(name)))
	defer span.End()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        r,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("failed to upload artifact %s: %w", name, err)
	}
	return nil
}

// Get downloads the named artifact. The caller closes the returned
// reader.
func (s *S3Store) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	ctx, span := telemetry.StartArtifactSpan(ctx, "get", name,
		telemetry.StoreType("s3"),
		telemetry.Bucket(s.bucket),
		telemetry.StorageKey(s.key(name)))
	defer span.End()

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		telemetry.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to download artifact %s: %w", name, err)
	}
	return result.Body, nil
}

// Remove deletes the named artifact. S3 treats deleting an absent key
// as success, matching the Store contract.
func (s *S3Store) Remove(ctx context.Context, name string) error {
	ctx, span := telemetry.StartArtifactSpan(ctx, "remove", name,
		telemetry.StoreType("s3"),
		telemetry.Bucket(s.bucket),
		telemetry.StorageKey(s.key(name)))
	defer span.End()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil && !isNotFoundError(err) {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("failed to remove artifact %s: %w", name, err)
	}
	return nil
}

// URI returns an s3:// URI for the named artifact.
func (s *S3Store) URI(name string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key(name))
}

func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound" || code == "404"
	}

	return false
}

var _ Store = (*S3Store)(nil)
