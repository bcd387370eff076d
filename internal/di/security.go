package di

import (
	"errors"
	"fmt"

	"github.com/defval/di"
	"github.com/spf13/viper"

	"ely.by/textures/internal/security"
	"ely.by/textures/internal/textures"
)

var securityDiOptions = di.Options(
	di.Provide(newAdminAuthenticator),
	di.Provide(newUserAuthenticator),
)

func newAdminAuthenticator(config *viper.Viper) (*security.Jwt, error) {
	key := config.GetString("auth.secret")
	if key == "" {
		return nil, errors.New("auth.secret must be set in order to use authenticator")
	}

	return security.NewJwt([]byte(key)), nil
}

func newUserAuthenticator(config *viper.Viper) (*security.UserTokens, error) {
	key, err := security.ParseEcPublicKey(config.GetString("auth.public_key"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid auth.public_key: %w", textures.MisconfiguredError, err)
	}

	return security.NewUserTokens(key), nil
}
