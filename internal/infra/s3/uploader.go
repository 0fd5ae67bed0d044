// Package s3 uploads CSV exports to S3 or an S3-compatible store.
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
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrInvalidURI is returned for a destination that is not s3://bucket/key.
var ErrInvalidURI = errors.New("invalid s3 uri")

// Config contains configuration for the uploader.
type Config struct {
	Region    string
	Endpoint  string // Custom endpoint for S3-compatible services
	AccessKey string
	SecretKey string
}

// PutObjectAPI is the part of the S3 client the uploader uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes objects to S3.
type Uploader struct {
	client PutObjectAPI
}

// NewUploader creates an uploader. Static keys are used when both are set,
// otherwise the default AWS credential chain.
func NewUploader(ctx context.Context, cfg Config) (*Uploader, error) {
	var awsOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		awsOpts = append(awsOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO
		})
	}

	return &Uploader{client: s3.NewFromConfig(awsCfg, s3Opts...)}, nil
}

// NewUploaderWithClient wraps an existing client.
func NewUploaderWithClient(client PutObjectAPI) *Uploader {
	return &Uploader{client: client}
}

// Upload stores body at the s3://bucket/key destination.
func (u *Uploader) Upload(ctx context.Context, uri string, body io.Reader, contentType string) error {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := u.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("failed to upload %s: %w", uri, err)
	}
	return nil
}

// ParseURI splits s3://bucket/key into its parts.
func ParseURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	key = strings.TrimLeft(key, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	return bucket, key, nil
}
