package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"ely.by/textures/internal/textures"
)

type MinioObjectStoreConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func NewMinioObjectStore(config MinioObjectStoreConfig) (*MinioObjectStore, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("%w: object storage bucket must be set", textures.MisconfiguredError)
	}

	host := "s3.amazonaws.com"
	secure := true
	if config.Endpoint != "" {
		endpoint, err := url.Parse(config.Endpoint)
		if err != nil || endpoint.Host == "" {
			return nil, fmt.Errorf("%w: invalid object storage endpoint %q", textures.MisconfiguredError, config.Endpoint)
		}

		host = endpoint.Host
		secure = endpoint.Scheme == "https"
	}

	var creds *credentials.Credentials
	if config.AccessKey != "" && config.SecretKey != "" {
		creds = credentials.NewStaticV4(config.AccessKey, config.SecretKey, "")
	} else {
		creds = credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.EnvMinio{},
			&credentials.FileAWSCredentials{},
			&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
		})
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: config.Region,
	})
	if err != nil {
		return nil, errors.Join(textures.MisconfiguredError, err)
	}

	return &MinioObjectStore{
		client: client,
		bucket: config.Bucket,
	}, nil
}

type MinioObjectStore struct {
	client *minio.Client
	bucket string
}

func (s *MinioObjectStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return mapObjectStoreError(err)
	}

	return nil
}

func (s *MinioObjectStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapObjectStoreError(err)
	}

	defer object.Close()

	// The request is actually performed on the first read
	data, err := io.ReadAll(object)
	if err != nil {
		return nil, mapObjectStoreError(err)
	}

	return data, nil
}

func (s *MinioObjectStore) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}

	if !exists {
		return fmt.Errorf("bucket %s doesn't exist", s.bucket)
	}

	return nil
}

func mapObjectStoreError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	response := minio.ToErrorResponse(err)
	if response.Code == "NoSuchKey" || (response.StatusCode == http.StatusNotFound && response.Code != "NoSuchBucket") {
		return errors.Join(textures.NotFoundError, err)
	}

	return errors.Join(textures.BackendUnavailableError, err)
}
