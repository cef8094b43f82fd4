package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
)

// coverCacheControl lets browsers keep a cover for the life of its signed URL.
var coverCacheControl = fmt.Sprintf("private, max-age=%d", int(signedURLTTL/time.Second))

// S3Storage keeps service cover images in one bucket. The bucket is created
// lazily on the first upload.
type S3Storage struct {
	client *minio.Client
	bucket string
	region string

	mu    sync.Mutex
	ready bool
}

func NewS3Storage(client *minio.Client, bucket, region string) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: strings.TrimSpace(bucket),
		region: strings.TrimSpace(region),
	}
}

// EnsureBucket creates the bucket when it is missing. Only success is
// remembered; a failed or cancelled check is retried on the next call.
func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if s.bucket == "" {
		return fmt.Errorf("s3 bucket is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", s.bucket, err)
	}
	if !exists {
		err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			return fmt.Errorf("create s3 bucket %q: %w", s.bucket, err)
		}
	}

	s.ready = true
	return nil
}

func (s *S3Storage) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if s.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if key == "" || body == nil || size <= 0 {
		return ErrValidation
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: coverCacheControl,
	})
	if err != nil {
		return fmt.Errorf("put cover %q: %w", key, err)
	}
	return nil
}

// PresignGet signs a read link for moderators and the public catalog. The
// response is served inline so browsers render the cover.
func (s *S3Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	if key == "" {
		return "", ErrValidation
	}
	if ttl <= 0 {
		ttl = signedURLTTL
	}

	params := url.Values{}
	params.Set("response-content-disposition", "inline")
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, params)
	if err != nil {
		return "", fmt.Errorf("presign cover %q: %w", key, err)
	}
	return presigned.String(), nil
}

// Delete removes a cover. A missing object counts as deleted.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if s.client == nil || key == "" {
		return nil
	}
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("delete cover %q: %w", key, err)
	}
	return nil
}
