package retrieval

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"ely.by/textures/internal/storage"
	"ely.by/textures/internal/textures"
)

// StorageRetriever serves textures uploaded to this service
type StorageRetriever struct {
	Unsupported

	finder  TexturesFinder
	backend storage.Backend
}

func NewStorageRetriever(finder TexturesFinder, backend storage.Backend) *StorageRetriever {
	return &StorageRetriever{
		finder:  finder,
		backend: backend,
	}
}

func (r *StorageRetriever) GetTexture(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTexture, error) {
	record, err := r.finder.FindTexture(ctx, user, kind)
	if err != nil {
		return nil, errors.Join(textures.BackendUnavailableError, err)
	}

	if record == nil {
		return nil, nil
	}

	return &textures.RetrievedTexture{
		Url:      record.Url,
		Digest:   record.Digest,
		Metadata: record.Metadata,
	}, nil
}

func (r *StorageRetriever) GetTextureBytes(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTextureBytes, error) {
	record, err := r.finder.FindTexture(ctx, user, kind)
	if err != nil {
		return nil, errors.Join(textures.BackendUnavailableError, err)
	}

	if record == nil {
		return nil, nil
	}

	data, err := r.backend.GetFile(ctx, record.Digest, kind.Extension())
	if err != nil {
		// The record exists, so the missing file is an inconsistency rather than an absent texture
		return nil, err
	}

	return &textures.RetrievedTextureBytes{
		Digest:   record.Digest,
		Data:     data,
		Metadata: record.Metadata,
	}, nil
}

func (r *StorageRetriever) GetTextureBytesByDigest(ctx context.Context, digest string) (*textures.RetrievedTextureBytes, error) {
	if !textures.IsDigest(digest) {
		return nil, nil
	}

	// All kinds share the same extension
	data, err := r.backend.GetFile(ctx, digest, textures.Skin.Extension())
	if errors.Is(err, textures.NotFoundError) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	result := &textures.RetrievedTextureBytes{
		Digest: digest,
		Data:   data,
	}

	record, err := r.finder.FindTextureByDigest(ctx, digest)
	if err != nil {
		slog.WarnContext(ctx, "Unable to find texture metadata by digest", slog.String("digest", digest), slog.Any("error", err))
	} else if record != nil {
		result.Metadata = record.Metadata
	}

	return result, nil
}

func (r *StorageRetriever) SupportsKind(kind textures.Kind) bool {
	return true
}
