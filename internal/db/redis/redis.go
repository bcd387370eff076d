package redis

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mediocregopher/radix/v4"

	"ely.by/textures/internal/db"
	"ely.by/textures/internal/textures"
)

const texturesKey = "hash:textures"
const digestToTextureKey = "hash:digest-to-texture"
const userUuidToUsernameKey = "hash:uuid-to-username"

type Redis struct {
	client     radix.Client
	serializer db.TextureSerializer
}

func New(ctx context.Context, serializer db.TextureSerializer, addr string, poolSize int) (*Redis, error) {
	client, err := (radix.PoolConfig{Size: poolSize}).New(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Redis{
		client:     client,
		serializer: serializer,
	}, nil
}

func (r *Redis) FindTexture(ctx context.Context, userUuid uuid.UUID, kind textures.Kind) (*db.Texture, error) {
	var texture *db.Texture
	err := r.client.Do(ctx, radix.WithConn("", func(ctx context.Context, conn radix.Conn) error {
		var err error
		texture, err = r.findTexture(ctx, conn, textureHashKey(userUuid, kind))

		return err
	}))

	return texture, err
}

func (r *Redis) findTexture(ctx context.Context, conn radix.Conn, hashKey string) (*db.Texture, error) {
	var encodedResult []byte
	err := conn.Do(ctx, radix.Cmd(&encodedResult, "HGET", texturesKey, hashKey))
	if err != nil {
		return nil, err
	}

	if len(encodedResult) == 0 {
		return nil, nil
	}

	return r.serializer.Deserialize(encodedResult)
}

// FindTextureByDigest returns the last saved texture with the digest
func (r *Redis) FindTextureByDigest(ctx context.Context, digest string) (*db.Texture, error) {
	var texture *db.Texture
	err := r.client.Do(ctx, radix.WithConn("", func(ctx context.Context, conn radix.Conn) error {
		var hashKey string
		err := conn.Do(ctx, radix.Cmd(&hashKey, "HGET", digestToTextureKey, digest))
		if err != nil {
			return err
		}

		if hashKey == "" {
			return nil
		}

		texture, err = r.findTexture(ctx, conn, hashKey)
		if err != nil {
			return err
		}

		// The owner could replace the texture since then
		if texture != nil && texture.Digest != digest {
			texture = nil
		}

		return nil
	}))

	return texture, err
}

func (r *Redis) SaveTexture(ctx context.Context, texture *db.Texture) error {
	return r.client.Do(ctx, radix.WithConn("", func(ctx context.Context, conn radix.Conn) error {
		return r.saveTexture(ctx, conn, texture)
	}))
}

func (r *Redis) saveTexture(ctx context.Context, conn radix.Conn, texture *db.Texture) error {
	hashKey := textureHashKey(texture.UserUuid, texture.Kind)
	exists, err := r.findTexture(ctx, conn, hashKey)
	if err != nil {
		return err
	}

	record := *texture
	if exists != nil && !exists.CreatedAt.IsZero() {
		record.CreatedAt = exists.CreatedAt
	}

	serializedTexture, err := r.serializer.Serialize(&record)
	if err != nil {
		return err
	}

	err = conn.Do(ctx, radix.Cmd(nil, "MULTI"))
	if err != nil {
		return err
	}

	err = conn.Do(ctx, radix.FlatCmd(nil, "HSET", texturesKey, hashKey, serializedTexture))
	if err != nil {
		return err
	}

	err = conn.Do(ctx, radix.FlatCmd(nil, "HSET", digestToTextureKey, texture.Digest, hashKey))
	if err != nil {
		return err
	}

	return conn.Do(ctx, radix.Cmd(nil, "EXEC"))
}

func (r *Redis) FindUsernameByUuid(ctx context.Context, userUuid uuid.UUID) (string, error) {
	var username string
	err := r.client.Do(ctx, radix.Cmd(&username, "HGET", userUuidToUsernameKey, normalizeUuid(userUuid)))

	return username, err
}

func (r *Redis) StoreUsername(ctx context.Context, userUuid uuid.UUID, username string) error {
	return r.client.Do(ctx, radix.Cmd(nil, "HSET", userUuidToUsernameKey, normalizeUuid(userUuid), username))
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Do(ctx, radix.Cmd(nil, "PING"))
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func normalizeUuid(userUuid uuid.UUID) string {
	return strings.ReplaceAll(userUuid.String(), "-", "")
}

func textureHashKey(userUuid uuid.UUID, kind textures.Kind) string {
	return normalizeUuid(userUuid) + ":" + kind.String()
}
