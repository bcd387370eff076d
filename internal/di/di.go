package di

import "github.com/defval/di"

func New() (*di.Container, error) {
	return di.New(
		configDiOptions,
		dbDiOptions,
		handlersDiOptions,
		httpClientDiOptions,
		loggerDiOptions,
		mojangDiOptions,
		retrievalDiOptions,
		securityDiOptions,
		serverDiOptions,
		storageDiOptions,
		uploadsDiOptions,
	)
}
