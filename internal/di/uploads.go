package di

import (
	"github.com/defval/di"
	"github.com/spf13/viper"

	"ely.by/textures/internal/storage"
	"ely.by/textures/internal/uploads"
)

var uploadsDiOptions = di.Options(
	di.Provide(newUploadsManager),
)

func newUploadsManager(
	config *viper.Viper,
	repository uploads.TexturesRepository,
	backend storage.Backend,
) *uploads.Manager {
	config.SetDefault("upload.max_size", uploads.DefaultMaxSize)

	return uploads.NewManager(repository, backend, config.GetInt("upload.max_size"))
}
