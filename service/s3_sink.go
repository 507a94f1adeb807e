package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/ludo-technologies/jsreport/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultS3Region is used when the storage config leaves the region empty
const DefaultS3Region = "us-east-1"

// S3Sink uploads the JSON rendering of the report to S3-compatible object storage
type S3Sink struct {
	mu      sync.Mutex
	client  *minio.Client
	bucket  string
	checked bool
}

// NewS3Sink creates the s3 sink. The client is built on first Emit from the configuration.
func NewS3Sink() *S3Sink {
	return &S3Sink{}
}

// Name implements domain.Sink
func (s *S3Sink) Name() string {
	return SinkS3
}

// Emit implements domain.Sink
func (s *S3Sink) Emit(ctx context.Context, report *domain.LeveledReport, cfg domain.Configuration) error {
	client, err := s.connect(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, report.Value()); err != nil {
		return domain.NewOutputError("failed to encode report", err)
	}

	key := ObjectKey(cfg.Storage.Prefix, ReportFileName(cfg.ReportFilename, OutputFormatJSON.Extension()))
	_, err = client.PutObject(ctx, cfg.Storage.Bucket, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to upload %s to bucket %s", key, cfg.Storage.Bucket), err)
	}
	return nil
}

// connect builds the client once and makes sure the bucket exists
func (s *S3Sink) connect(ctx context.Context, cfg domain.StorageConfig) (*minio.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		client, err := NewS3Client(cfg)
		if err != nil {
			return nil, err
		}
		s.client = client
		s.bucket = strings.TrimSpace(cfg.Bucket)
	}

	if !s.checked {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			return nil, domain.NewOutputError("failed to check bucket "+s.bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: regionOrDefault(cfg.Region)}); err != nil {
				return nil, domain.NewOutputError("failed to create bucket "+s.bucket, err)
			}
		}
		s.checked = true
	}
	return s.client, nil
}

// NewS3Client validates the storage settings and creates a minio client
func NewS3Client(cfg domain.StorageConfig) (*minio.Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, domain.NewConfigError("storage.endpoint is required for the s3 reporter", nil)
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, domain.NewConfigError("storage.access_key and storage.secret_key are required for the s3 reporter", nil)
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, domain.NewConfigError("storage.bucket is required for the s3 reporter", nil)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: regionOrDefault(cfg.Region),
	})
	if err != nil {
		return nil, domain.NewOutputError("init s3 client", err)
	}
	return client, nil
}

// ObjectKey joins the configured prefix and the report file name
func ObjectKey(prefix, name string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func regionOrDefault(region string) string {
	region = strings.TrimSpace(region)
	if region == "" {
		return DefaultS3Region
	}
	return region
}
