package di

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/defval/di"
	"github.com/spf13/viper"

	"ely.by/textures/internal/mojang"
	"ely.by/textures/internal/textures"
)

var mojangDiOptions = di.Options(
	di.Provide(newMojangApi),
	di.Provide(newMojangTexturesProvider),
)

func newMojangApi(config *viper.Viper, httpClient *http.Client) (*mojang.MojangApi, error) {
	config.SetDefault("mojang.uuid_url", mojang.DefaultUuidUrl)
	config.SetDefault("mojang.profile_url", mojang.DefaultProfileUrl)
	config.SetDefault("mojang.textures_url", mojang.DefaultTexturesUrl)

	uuidUrl := config.GetString("mojang.uuid_url")
	profileUrl := config.GetString("mojang.profile_url")
	texturesUrl := config.GetString("mojang.textures_url")
	for _, value := range []string{uuidUrl, profileUrl, texturesUrl} {
		if _, err := url.ParseRequestURI(value); err != nil {
			return nil, fmt.Errorf("%w: invalid Mojang API url %q", textures.MisconfiguredError, value)
		}
	}

	return mojang.NewMojangApi(httpClient, uuidUrl, profileUrl, texturesUrl), nil
}

func newMojangTexturesProvider(mojangApi *mojang.MojangApi, config *viper.Viper) (*mojang.MojangTexturesProvider, error) {
	config.SetDefault("mojang.cache_ttl", 0)

	uuidsProvider, err := mojang.NewMojangApiUuidsProvider(mojangApi.UsernameToUuid)
	if err != nil {
		return nil, err
	}

	apiTexturesProvider, err := mojang.NewMojangApiTexturesProvider(mojangApi.UuidToTextures)
	if err != nil {
		return nil, err
	}

	var texturesProvider mojang.TexturesProvider = apiTexturesProvider
	if ttl := config.GetDuration("mojang.cache_ttl"); ttl > 0 {
		texturesProvider, err = mojang.NewTexturesProviderWithInMemoryCache(apiTexturesProvider, ttl)
		if err != nil {
			return nil, err
		}
	}

	return mojang.NewMojangTexturesProvider(uuidsProvider, texturesProvider)
}
