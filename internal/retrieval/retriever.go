package retrieval

import (
	"context"

	"github.com/google/uuid"

	"ely.by/textures/internal/db"
	"ely.by/textures/internal/textures"
)

const ScopeName = "ely.by/textures/internal/retrieval"

// Retriever is a source of textures.
//
// Each method has three outcomes: a value with nil error when the source knows the texture,
// nil with nil error when the source affirmatively has no answer, and an error when the source
// couldn't be consulted. Callers must keep the last two cases distinguishable.
type Retriever interface {
	GetTexture(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTexture, error)
	GetTextureBytes(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTextureBytes, error)
	GetTextureBytesByDigest(ctx context.Context, digest string) (*textures.RetrievedTextureBytes, error)
	GetTextureBytesByUsername(ctx context.Context, username string, kind textures.Kind) (*textures.RetrievedTextureBytes, error)
	SupportsKind(kind textures.Kind) bool
}

// Unsupported can be embedded into a Retriever that can't serve lookups by digest or username
type Unsupported struct{}

func (Unsupported) GetTextureBytesByDigest(ctx context.Context, digest string) (*textures.RetrievedTextureBytes, error) {
	return nil, nil
}

func (Unsupported) GetTextureBytesByUsername(ctx context.Context, username string, kind textures.Kind) (*textures.RetrievedTextureBytes, error) {
	return nil, nil
}

type TexturesFinder interface {
	FindTexture(ctx context.Context, user uuid.UUID, kind textures.Kind) (*db.Texture, error)
	FindTextureByDigest(ctx context.Context, digest string) (*db.Texture, error)
}

type UsernamesFinder interface {
	// FindUsernameByUuid returns an empty string when there is no known username
	FindUsernameByUuid(ctx context.Context, user uuid.UUID) (string, error)
}
