package cmd

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	. "github.com/defval/di"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ely.by/textures/internal/di"
	"ely.by/textures/internal/http"
	"ely.by/textures/internal/otel"
	"ely.by/textures/internal/version"
)

var RootCmd = &cobra.Command{
	Use:     "textures",
	Short:   "Minecraft textures retrieval and storage server",
	Version: version.Version(),
}

func shouldGetContainer() *Container {
	container, err := di.New()
	if err != nil {
		panic(err)
	}

	return container
}

func startServer() error {
	container := shouldGetContainer()

	var config *viper.Viper
	err := container.Resolve(&config)
	if err != nil {
		return err
	}

	var ctx context.Context
	err = container.Resolve(&ctx)
	if err != nil {
		return err
	}

	if config.GetBool("otel.enabled") {
		shutdownOtel, err := otel.SetupOTelSDK(ctx)
		if err != nil {
			return err
		}

		defer func() {
			// The base context is already cancelled at this point
			err := shutdownOtel(context.Background())
			if err != nil {
				slog.Error("Unable to shutdown OpenTelemetry", slog.Any("error", err))
			}
		}()
	}

	err = container.Invoke(http.StartServer)
	if err != nil {
		return errors.Join(errors.New("unable to start the server"), err)
	}

	return nil
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env is optional, the real environment always takes precedence
	_ = godotenv.Load()

	viper.AutomaticEnv()
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
}
