// Package s3 stores uploaded assets in an S3-compatible bucket (AWS, MinIO)
// and hands out public object URLs.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/tendant/site-content/pkg/sitecontent"
)

const defaultRegion = "us-east-1"

// DefaultCacheControl is sent with every asset. Object keys embed a
// timestamp and random suffix, so a stored object never changes.
const DefaultCacheControl = "public, max-age=31536000, immutable"

// Config options for the S3 store
type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string // Static credentials; the default AWS chain is used when empty
	SecretAccessKey string
	Endpoint        string // S3-compatible endpoint, e.g. "http://localhost:9000"
	UsePathStyle    bool

	// PublicURL is the base objects are served from, e.g. a CDN. Derived
	// from Endpoint and Bucket when empty.
	PublicURL string

	// CacheControl overrides DefaultCacheControl
	CacheControl string

	EnableSSE    bool
	SSEAlgorithm string // AES256 or aws:kms
	SSEKMSKeyID  string

	CreateBucketIfNotExist bool
}

// Store is the S3 implementation of sitecontent.BlobStore
type Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      Config
	baseURL  string
}

// New creates the store and, when configured, the bucket
func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = DefaultCacheControl
	}

	ctx := context.Background()
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		}
	})

	store := &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
		baseURL:  objectBaseURL(cfg),
	}

	if cfg.CreateBucketIfNotExist {
		if err := store.ensureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return store, nil
}

func loadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		static := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(static))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

func objectBaseURL(cfg Config) string {
	switch {
	case cfg.PublicURL != "":
		return strings.TrimRight(cfg.PublicURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return "https://" + cfg.Bucket + ".s3." + cfg.Region + ".amazonaws.com"
	}
}

// errorCode extracts the S3 error code from err
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	switch errorCode(err) {
	case "NotFound", "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}

func (s *Store) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
	if err == nil {
		return nil
	}
	// MinIO answers HeadBucket on a missing bucket with BadRequest
	if !isNotFound(err) && errorCode(err) != "BadRequest" {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(s.cfg.Bucket)}
	if s.cfg.Region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.cfg.Region),
		}
	}

	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		switch errorCode(err) {
		case "BucketAlreadyExists", "BucketAlreadyOwnedByYou":
			return nil
		}
		return err
	}
	return nil
}

// putInput builds the PutObject request for an asset
func (s *Store) putInput(objectKey string, body io.Reader, contentType string) *s3.PutObjectInput {
	input := &s3.PutObjectInput{
		Bucket:       aws.String(s.cfg.Bucket),
		Key:          aws.String(objectKey),
		Body:         body,
		CacheControl: aws.String(s.cfg.CacheControl),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if s.cfg.EnableSSE {
		switch s.cfg.SSEAlgorithm {
		case "aws:kms":
			input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
			if s.cfg.SSEKMSKeyID != "" {
				input.SSEKMSKeyId = aws.String(s.cfg.SSEKMSKeyID)
			}
		default:
			input.ServerSideEncryption = types.ServerSideEncryptionAes256
		}
	}
	return input
}

// Upload stores the object
func (s *Store) Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) error {
	if _, err := s.uploader.Upload(ctx, s.putInput(objectKey, reader, contentType)); err != nil {
		return &sitecontent.StorageError{Key: objectKey, Op: "upload", Err: err}
	}
	return nil
}

// Download opens the object body
func (s *Store) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, sitecontent.ErrObjectNotFound
		}
		return nil, &sitecontent.StorageError{Key: objectKey, Op: "download", Err: err}
	}
	return out.Body, nil
}

// Delete removes the object. S3 treats deleting a missing key as success.
func (s *Store) Delete(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return &sitecontent.StorageError{Key: objectKey, Op: "delete", Err: err}
	}
	return nil
}

// URL returns the public URL for objectKey
func (s *Store) URL(objectKey string) string {
	return s.baseURL + "/" + objectKey
}
