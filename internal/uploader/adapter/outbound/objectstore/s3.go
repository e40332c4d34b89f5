package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anthanhphan/go-image-upload/internal/uploader/config"
	"github.com/anthanhphan/go-image-upload/internal/uploader/domain"
	"github.com/anthanhphan/go-image-upload/internal/uploader/port"
	"github.com/anthanhphan/go-image-upload/pkg/resilience"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the subset of the S3 client the adapter needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Adapter stores uploads as objects in an S3-compatible bucket.
// The stream is buffered first so that nothing is put when reading fails.
type S3Adapter struct {
	client  PutObjectAPI
	bucket  string
	prefix  string
	breaker *resilience.CircuitBreaker
}

var _ port.Store = (*S3Adapter)(nil)

// NewS3Client builds an S3 client from static configuration.
func NewS3Client(cfg config.S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		creds := aws.Credentials{
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			Source:          "uploader-config",
		}
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil },
		))
	}
	return s3.New(opts)
}

func NewS3Adapter(client PutObjectAPI, cfg config.S3Config, breaker *resilience.CircuitBreaker) (*S3Adapter, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "s3:" + cfg.Bucket})
	}
	return &S3Adapter{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		breaker: breaker,
	}, nil
}

func (a *S3Adapter) Store(ctx context.Context, name string, reader io.Reader) (domain.StoredLocation, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return domain.StoredLocation{}, fmt.Errorf("failed to buffer upload: %w", err)
	}

	key := a.prefix + name
	size := int64(buf.Len())
	err := a.breaker.Execute(ctx, func(ctx context.Context) error {
		_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(a.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(buf.Bytes()),
			ContentLength: aws.Int64(size),
			ContentType:   aws.String(http.DetectContentType(buf.Bytes())),
			Metadata: map[string]string{
				"upload-time": time.Now().UTC().Format(time.RFC3339),
			},
		})
		return err
	})
	if err != nil {
		logger.Warnw("S3 put failed", "bucket", a.bucket, "key", key, "error", err.Error())
		return domain.StoredLocation{}, fmt.Errorf("s3 upload failed: %w", err)
	}

	return domain.StoredLocation{
		Name: name,
		Path: fmt.Sprintf("s3://%s/%s", a.bucket, key),
		Size: size,
	}, nil
}
