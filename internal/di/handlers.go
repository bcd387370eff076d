package di

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/defval/di"
	"github.com/etherlabsio/healthcheck/v2"
	"github.com/gorilla/mux"
	"github.com/spf13/viper"

	. "ely.by/textures/internal/http"
	"ely.by/textures/internal/retrieval"
	"ely.by/textures/internal/security"
	"ely.by/textures/internal/storage"
	"ely.by/textures/internal/uploads"
)

var handlersDiOptions = di.Options(
	di.Provide(newHandlerFactory, di.As(new(http.Handler))),
	di.Provide(newTexturesApi),
	di.Provide(newFilesApi),
	di.Provide(newUploadsApi),
)

func newHandlerFactory(
	container *di.Container,
	config *viper.Viper,
	texturesApi *TexturesApi,
	filesApi *FilesApi,
) (*mux.Router, error) {
	// gorilla.mux has no native way to combine multiple routers.
	// The hack used later in the code works for prefixes in addresses, but leads to misbehavior
	// if you set an empty prefix. Since the textures api should be mounted at the root prefix,
	// we use it as the base router
	router := texturesApi.Handler()
	router.StrictSlash(true)
	tracingMiddleware := NewTracingMiddleware()
	router.Use(tracingMiddleware)
	// NotFoundHandler doesn't call for registered middlewares, so we must wrap it manually.
	// See https://github.com/gorilla/mux/issues/416#issuecomment-600079279
	router.NotFoundHandler = tracingMiddleware(http.HandlerFunc(NotFoundHandler))

	mount(router, "/files", filesApi.Handler())

	// Uploads are optional: each kind of them is enabled by its own key
	if config.GetString("auth.public_key") != "" || config.GetString("auth.secret") != "" {
		var uploadsApi *UploadsApi
		if err := container.Resolve(&uploadsApi); err != nil {
			return nil, err
		}

		if config.GetString("auth.public_key") != "" {
			mount(router, "/upload", uploadsApi.Handler())
		} else {
			slog.Warn("auth.public_key isn't set, users' uploads are disabled")
		}

		if config.GetString("auth.secret") != "" {
			var authenticator *security.Jwt
			if err := container.Resolve(&authenticator); err != nil {
				return nil, err
			}

			apiRouter := uploadsApi.AdminHandler()
			apiRouter.Use(NewAuthenticationMiddleware(authenticator, security.TexturesScope))
			mount(router, "/api", apiRouter)
		} else {
			slog.Warn("auth.secret isn't set, admin uploads are disabled")
		}
	} else {
		slog.Warn("Neither auth.public_key nor auth.secret is set, uploads are disabled")
	}

	// Resolve health checkers last, because all the services required by the application
	// must first be initialized and each of them can publish its own checkers
	var healthCheckers []*namedHealthChecker
	if has, _ := container.Has(&healthCheckers); has {
		if err := container.Resolve(&healthCheckers); err != nil {
			return nil, err
		}

		checkersOptions := make([]healthcheck.Option, len(healthCheckers))
		for i, checker := range healthCheckers {
			checkersOptions[i] = healthcheck.WithChecker(checker.Name, checker.Checker)
		}

		router.Handle("/healthcheck", healthcheck.Handler(checkersOptions...)).Methods("GET")
	}

	return router, nil
}

func newTexturesApi(config *viper.Viper, retriever retrieval.Retriever) (*TexturesApi, error) {
	config.SetDefault("http.cache_max_age", 0)

	return NewTexturesApi(retriever, config.GetInt("http.cache_max_age"))
}

func newFilesApi(config *viper.Viper, backend storage.Backend) *FilesApi {
	return &FilesApi{
		FilesStorage: backend,
		CacheMaxAge:  config.GetInt("http.cache_max_age"),
	}
}

func newUploadsApi(container *di.Container, config *viper.Viper, manager *uploads.Manager) (*UploadsApi, error) {
	var authenticator UserAuthenticator
	if config.GetString("auth.public_key") != "" {
		var userTokens *security.UserTokens
		if err := container.Resolve(&userTokens); err != nil {
			return nil, err
		}

		authenticator = userTokens
	}

	return NewUploadsApi(manager, authenticator, config.GetInt64("upload.max_size"))
}

func mount(router *mux.Router, path string, handler http.Handler) {
	router.PathPrefix(path).Handler(
		http.StripPrefix(
			strings.TrimSuffix(path, "/"),
			handler,
		),
	)
}

type namedHealthChecker struct {
	Name    string
	Checker healthcheck.Checker
}
