package di

import (
	"fmt"
	"strings"

	"github.com/defval/di"
	"github.com/etherlabsio/healthcheck/v2"
	"github.com/spf13/viper"

	"ely.by/textures/internal/storage"
	"ely.by/textures/internal/textures"
)

const (
	localStorage = "local"
	s3Storage    = "s3"
)

var storageDiOptions = di.Options(
	di.Provide(newStorageBackend),
)

func newStorageBackend(container *di.Container, config *viper.Viper) (storage.Backend, error) {
	config.SetDefault("storage.type", localStorage)
	config.SetDefault("storage.local.base_url", baseUrl(config)+"/files")
	config.SetDefault("storage.s3.region", "us-east-1")

	var backend storage.Backend
	var checker healthcheck.CheckerFunc
	storageType := strings.ToLower(config.GetString("storage.type"))
	switch storageType {
	case localStorage:
		local, err := storage.NewLocalBackend(
			config.GetString("storage.local.path"),
			config.GetString("storage.local.base_url"),
		)
		if err != nil {
			return nil, err
		}

		backend, checker = local, local.Ping
	case s3Storage:
		objects, err := storage.NewMinioObjectStore(storage.MinioObjectStoreConfig{
			Bucket:    config.GetString("storage.s3.bucket"),
			Region:    config.GetString("storage.s3.region"),
			Endpoint:  config.GetString("storage.s3.endpoint"),
			AccessKey: config.GetString("storage.s3.access_key"),
			SecretKey: config.GetString("storage.s3.secret_key"),
		})
		if err != nil {
			return nil, err
		}

		s3, err := storage.NewObjectStoreBackend(objects, storage.ObjectStoreBackendConfig{
			Bucket:    config.GetString("storage.s3.bucket"),
			Region:    config.GetString("storage.s3.region"),
			Endpoint:  config.GetString("storage.s3.endpoint"),
			PublicUrl: config.GetString("storage.s3.public_url"),
		})
		if err != nil {
			return nil, err
		}

		backend, checker = s3, objects.Ping
	default:
		return nil, fmt.Errorf("%w: unknown storage type %q, valid types are: %s, %s", textures.MisconfiguredError, storageType, localStorage, s3Storage)
	}

	if err := container.Provide(func() *namedHealthChecker {
		return &namedHealthChecker{
			Name:    "storage",
			Checker: checker,
		}
	}); err != nil {
		return nil, err
	}

	return backend, nil
}
