package di

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/defval/di"
	"github.com/spf13/viper"
)

var configDiOptions = di.Options(
	di.Provide(newConfig),
	di.Provide(newBaseContext),
)

func newConfig() *viper.Viper {
	config := viper.GetViper()
	config.SetDefault("base_url", "http://localhost:3000")

	return config
}

func newBaseContext() context.Context {
	ctx := context.Background()
	ctx, _ = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)

	return ctx
}

func baseUrl(config *viper.Viper) string {
	return strings.TrimSuffix(config.GetString("base_url"), "/")
}
