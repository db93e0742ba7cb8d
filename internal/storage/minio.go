package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dgallion1/cvparse/internal/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig holds the S3-compatible endpoint settings.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// MinIO stores objects in a single S3-compatible bucket.
type MinIO struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

var _ ObjectStore = (*MinIO)(nil)

// NewMinIO connects to the endpoint and makes sure the bucket exists.
func NewMinIO(ctx context.Context, cfg MinIOConfig, log *logger.Logger) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	m := &MinIO{client: client, bucket: cfg.Bucket, log: log.WithComponent("storage")}
	if err := m.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	m.log.Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.Bucket).Msg("object storage ready")
	return m, nil
}

func (m *MinIO) ensureBucket(ctx context.Context, region string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.bucket, err)
	}
	m.log.Info().Str("bucket", m.bucket).Msg("created bucket")
	return nil
}

func (m *MinIO) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return classify("put", key, err)
	}
	return nil
}

func (m *MinIO) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify("get", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classify("get", key, err)
	}
	return data, nil
}

func (m *MinIO) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return classify("delete", key, err)
	}
	return nil
}

func (m *MinIO) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	err = classify("stat", key, err)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// classify maps minio errors onto ErrNotFound and RetryableError.
func classify(op, key string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %s: %w", op, key, err)
	}
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", op, key, ErrNotFound)
	case resp.StatusCode == 0, resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return &RetryableError{Op: op, Key: key, Err: err}
	}
	return fmt.Errorf("%s %s: %w", op, key, err)
}
