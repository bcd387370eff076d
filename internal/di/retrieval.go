package di

import (
	"log/slog"

	"github.com/defval/di"
	"github.com/spf13/viper"

	"ely.by/textures/internal/mojang"
	"ely.by/textures/internal/retrieval"
	"ely.by/textures/internal/storage"
)

var retrievalDiOptions = di.Options(
	di.Provide(newRetrievalBuilder),
	di.Provide(newRetriever),
)

// newRetrievalBuilder resolves dependencies lazily, so only the backends of the configured retrievers are created
func newRetrievalBuilder(container *di.Container, config *viper.Viper) retrieval.Builder {
	config.SetDefault("retrieval.default_skin.url", retrieval.DefaultSkinUrl)
	config.SetDefault("retrieval.default_skin.digest", retrieval.DefaultSkinDigest)
	config.SetDefault("mojang.use_database_username", false)

	return func(retrieverType string) (retrieval.Retriever, error) {
		switch retrieverType {
		case retrieval.StorageType:
			var finder retrieval.TexturesFinder
			if err := container.Resolve(&finder); err != nil {
				return nil, err
			}

			var backend storage.Backend
			if err := container.Resolve(&backend); err != nil {
				return nil, err
			}

			return retrieval.NewStorageRetriever(finder, backend), nil
		case retrieval.MojangType:
			var provider *mojang.MojangTexturesProvider
			if err := container.Resolve(&provider); err != nil {
				return nil, err
			}

			var api *mojang.MojangApi
			if err := container.Resolve(&api); err != nil {
				return nil, err
			}

			var usernames retrieval.UsernamesFinder
			if config.GetBool("mojang.use_database_username") {
				if err := container.Resolve(&usernames); err != nil {
					return nil, err
				}
			}

			return retrieval.NewMojangRetriever(provider, api, usernames), nil
		case retrieval.DefaultSkinType:
			var api *mojang.MojangApi
			if err := container.Resolve(&api); err != nil {
				return nil, err
			}

			return retrieval.NewDefaultSkinRetriever(
				api,
				config.GetString("retrieval.default_skin.url"),
				config.GetString("retrieval.default_skin.digest"),
			), nil
		case retrieval.EmbeddedDefaultSkinType:
			embedded := retrieval.NewEmbeddedDefaultSkinRetriever(nil, baseUrl(config))
			slog.Debug("Embedded default skin is enabled", slog.String("digest", embedded.Digest()))

			return embedded, nil
		}

		return nil, retrieval.UnknownRetrieverError(retrieverType)
	}
}

func newRetriever(config *viper.Viper, build retrieval.Builder) (retrieval.Retriever, error) {
	config.SetDefault("retrieval.type", retrieval.StorageType)

	return retrieval.NewFromConfig(
		config.GetString("retrieval.type"),
		config.GetString("retrieval.chain"),
		build,
	)
}
