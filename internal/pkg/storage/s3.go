package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Config holds S3 or MinIO connection settings.
type S3Config struct {
	Endpoint  string // empty for AWS; set for MinIO/R2
	Region    string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// R2Config holds Cloudflare R2 connection settings.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
}

// S3Store implements ObjectStore on any S3-compatible API.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
}

// NewS3Store creates an S3/MinIO store
func NewS3Store(cfg S3Config) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return &S3Store{client: client, presign: s3.NewPresignClient(client)}, nil
}

// NewR2Store creates a Cloudflare R2 store
func NewR2Store(cfg R2Config) (*S3Store, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, errors.New("r2 config incomplete")
	}
	return NewS3Store(S3Config{
		Endpoint:  fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID),
		Region:    "auto",
		AccessKey: cfg.AccessKeyID,
		SecretKey: cfg.AccessKeySecret,
	})
}

// Upload stores an object
func (s *S3Store) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if err := checkKey(bucket, key); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// CreateSignedURL presigns a GET for an existing object
func (s *S3Store) CreateSignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if err := checkKey(bucket, key); err != nil {
		return "", err
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return "", ErrObjectNotFound
		}
		return "", fmt.Errorf("failed to stat S3 object: %w", err)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign S3 object: %w", err)
	}
	return req.URL, nil
}

// Delete removes an object
func (s *S3Store) Delete(ctx context.Context, bucket, key string) error {
	if err := checkKey(bucket, key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
