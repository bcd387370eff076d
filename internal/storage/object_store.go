package storage

import (
	"context"
	"fmt"
	"strings"

	"ely.by/textures/internal/textures"
)

// ObjectStore is the port to a remote bucket. Implementations must return
// textures.NotFoundError for absent keys and textures.BackendUnavailableError for everything else
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
}

type ObjectStoreBackendConfig struct {
	Bucket string
	Region string
	// Endpoint is set for S3-compatible services other than AWS
	Endpoint string
	// PublicUrl replaces the URL prefix of generated links completely
	PublicUrl string
}

func NewObjectStoreBackend(objects ObjectStore, config ObjectStoreBackendConfig) (*ObjectStoreBackend, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("%w: object storage bucket must be set", textures.MisconfiguredError)
	}

	if config.Region == "" {
		config.Region = "us-east-1"
	}

	var urlPrefix string
	switch {
	case config.PublicUrl != "":
		urlPrefix = strings.TrimSuffix(config.PublicUrl, "/")
	case config.Endpoint != "":
		urlPrefix = strings.TrimSuffix(config.Endpoint, "/") + "/" + config.Bucket
	default:
		urlPrefix = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", config.Bucket, config.Region)
	}

	return &ObjectStoreBackend{
		objects:   objects,
		urlPrefix: urlPrefix,
	}, nil
}

// ObjectStoreBackend keeps one object per "<digest>.<extension>" key
type ObjectStoreBackend struct {
	objects   ObjectStore
	urlPrefix string
}

func (b *ObjectStoreBackend) StoreFile(ctx context.Context, data []byte, digest string, extension string) (string, error) {
	if !textures.IsDigest(digest) {
		return "", fmt.Errorf("invalid digest %q", digest)
	}

	key := objectKey(digest, extension)
	err := b.objects.PutObject(ctx, key, data, contentType(extension))
	if err != nil {
		return "", fmt.Errorf("unable to put object %s: %w", key, err)
	}

	return b.GenerateUrl(digest, extension), nil
}

func (b *ObjectStoreBackend) GetFile(ctx context.Context, digest string, extension string) ([]byte, error) {
	if !textures.IsDigest(digest) {
		return nil, fmt.Errorf("%w: invalid digest %q", textures.NotFoundError, digest)
	}

	key := objectKey(digest, extension)
	data, err := b.objects.GetObject(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("unable to get object %s: %w", key, err)
	}

	return data, nil
}

func (b *ObjectStoreBackend) GenerateUrl(digest string, extension string) string {
	return b.urlPrefix + "/" + objectKey(digest, extension)
}

func objectKey(digest string, extension string) string {
	if extension == "" {
		return digest
	}

	return digest + "." + extension
}

func contentType(extension string) string {
	if extension == "png" {
		return "image/png"
	}

	return "application/octet-stream"
}
