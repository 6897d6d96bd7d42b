/*
Package storage wraps the S3-compatible object store that holds user avatars.

Clients never stream avatar bytes through the API: they receive short-lived presigned
URLs and talk to the bucket directly.
*/
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned when the requested key does not exist in the bucket.
var ErrObjectNotFound = errors.New("object not found")

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// ObjectInfo is the subset of object metadata the API needs.
type ObjectInfo struct {
	ContentType   string
	ContentLength int64
}

// Service defines the public interface for the file storage service.
type Service interface {
	// PresignUpload generates a pre-signed URL for uploading an object of exactly fileSize bytes.
	PresignUpload(ctx context.Context, key, mimeType string, fileSize int64, duration time.Duration) (string, error)

	// PresignDownload generates a pre-signed URL for downloading an object.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the object specified by the given key.
	Delete(ctx context.Context, key string) error

	// Stat returns the object's metadata or ErrObjectNotFound.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
}

// NewService is the factory function for Service.
// Currently, only S3 compatible implementations are supported.
func NewService(ctx context.Context, cfg ServiceConfig) (Service, error) {
	return newS3Client(ctx, cfg)
}
