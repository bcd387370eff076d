package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"ely.by/textures/internal/db"
	"ely.by/textures/internal/textures"
)

//go:embed schema.sql
var schema string

type Postgres struct {
	db *sql.DB
}

func New(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn must be set", textures.MisconfiguredError)
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	err = conn.PingContext(ctx)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Postgres{db: conn}, nil
}

// Migrate creates missing tables and indexes. It's safe to call it multiple times
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)

	return err
}

const selectTextureColumns = "SELECT user_uuid, kind, digest, url, metadata, created_at, updated_at FROM textures"

func (p *Postgres) FindTexture(ctx context.Context, userUuid uuid.UUID, kind textures.Kind) (*db.Texture, error) {
	row := p.db.QueryRowContext(ctx, selectTextureColumns+" WHERE user_uuid = $1 AND kind = $2", userUuid, kind.String())

	return scanTexture(row)
}

// FindTextureByDigest returns the most recently updated record among the ones sharing the digest
func (p *Postgres) FindTextureByDigest(ctx context.Context, digest string) (*db.Texture, error) {
	row := p.db.QueryRowContext(ctx, selectTextureColumns+" WHERE digest = $1 ORDER BY updated_at DESC LIMIT 1", digest)

	return scanTexture(row)
}

func (p *Postgres) SaveTexture(ctx context.Context, texture *db.Texture) error {
	var metadata any
	if texture.Metadata != nil {
		encoded, err := json.Marshal(texture.Metadata)
		if err != nil {
			return err
		}

		metadata = string(encoded)
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO textures (user_uuid, kind, digest, url, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (user_uuid, kind) DO UPDATE
		SET digest = EXCLUDED.digest, url = EXCLUDED.url, metadata = EXCLUDED.metadata, updated_at = now()
	`, texture.UserUuid, texture.Kind.String(), texture.Digest, texture.Url, metadata)

	return err
}

func (p *Postgres) FindUsernameByUuid(ctx context.Context, userUuid uuid.UUID) (string, error) {
	var username string
	err := p.db.QueryRowContext(ctx, "SELECT username FROM username_mappings WHERE user_uuid = $1", userUuid).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	return username, nil
}

func (p *Postgres) StoreUsername(ctx context.Context, userUuid uuid.UUID, username string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO username_mappings (user_uuid, username, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_uuid) DO UPDATE SET username = EXCLUDED.username, updated_at = now()
	`, userUuid, username)

	return err
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func scanTexture(row *sql.Row) (*db.Texture, error) {
	texture := &db.Texture{}
	var kind string
	var metadata []byte
	err := row.Scan(&texture.UserUuid, &kind, &texture.Digest, &texture.Url, &metadata, &texture.CreatedAt, &texture.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	texture.Kind, err = textures.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	if len(metadata) != 0 {
		texture.Metadata = &textures.Metadata{}
		err = json.Unmarshal(metadata, texture.Metadata)
		if err != nil {
			return nil, fmt.Errorf("invalid metadata of the texture %s: %w", texture.Digest, err)
		}
	}

	return texture, nil
}
