package di

import (
	"context"
	"fmt"
	"strings"

	"github.com/defval/di"
	"github.com/etherlabsio/healthcheck/v2"
	"github.com/spf13/viper"

	"ely.by/textures/internal/db"
	"ely.by/textures/internal/db/postgres"
	"ely.by/textures/internal/db/redis"
	"ely.by/textures/internal/retrieval"
	"ely.by/textures/internal/textures"
	"ely.by/textures/internal/uploads"
)

const (
	postgresDriver = "postgres"
	redisDriver    = "redis"
)

// texturesDb is implemented by every supported records backend
type texturesDb interface {
	retrieval.TexturesFinder
	retrieval.UsernamesFinder
	uploads.TexturesRepository
	Ping(ctx context.Context) error
}

var dbDiOptions = di.Options(
	di.Provide(newPostgres),
	di.Provide(newRedis),
	di.Provide(newTexturesDb),
	di.Provide(newTexturesFinder),
	di.Provide(newUsernamesFinder),
	di.Provide(newTexturesRepository),
)

func newTexturesDb(container *di.Container, config *viper.Viper) (texturesDb, error) {
	config.SetDefault("db.driver", postgresDriver)

	var conn texturesDb
	driver := strings.ToLower(config.GetString("db.driver"))
	switch driver {
	case postgresDriver:
		var pg *postgres.Postgres
		if err := container.Resolve(&pg); err != nil {
			return nil, err
		}

		conn = pg
	case redisDriver:
		var r *redis.Redis
		if err := container.Resolve(&r); err != nil {
			return nil, err
		}

		conn = r
	default:
		return nil, fmt.Errorf("%w: unknown db driver %q, valid drivers are: %s, %s", textures.MisconfiguredError, driver, postgresDriver, redisDriver)
	}

	if err := container.Provide(func() *namedHealthChecker {
		return &namedHealthChecker{
			Name:    driver,
			Checker: healthcheck.CheckerFunc(conn.Ping),
		}
	}); err != nil {
		return nil, err
	}

	return conn, nil
}

func newPostgres(ctx context.Context, config *viper.Viper) (*postgres.Postgres, error) {
	return postgres.New(ctx, config.GetString("db.postgres.dsn"))
}

func newRedis(ctx context.Context, config *viper.Viper) (*redis.Redis, error) {
	config.SetDefault("db.redis.host", "localhost")
	config.SetDefault("db.redis.port", 6379)
	config.SetDefault("db.redis.pool_size", 10)

	return redis.New(
		ctx,
		db.NewZlibEncoder(db.NewJsonSerializer()),
		fmt.Sprintf("%s:%d", config.GetString("db.redis.host"), config.GetInt("db.redis.port")),
		config.GetInt("db.redis.pool_size"),
	)
}

func newTexturesFinder(conn texturesDb) retrieval.TexturesFinder {
	return conn
}

func newUsernamesFinder(conn texturesDb) retrieval.UsernamesFinder {
	return conn
}

func newTexturesRepository(conn texturesDb) uploads.TexturesRepository {
	return conn
}
