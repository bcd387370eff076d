package retrieval

import (
	"context"

	"github.com/google/uuid"

	"ely.by/textures/internal/textures"
)

// The classic Steve skin
const DefaultSkinDigest = "1a4af718455d58aab3011401517e43cb6f84b5f9cbd717f8df0334e0b88b8ecf"
const DefaultSkinUrl = "http://textures.minecraft.net/texture/" + DefaultSkinDigest

// DefaultSkinRetriever answers every skin request with the same well-known skin hosted elsewhere.
// The digest is configured together with the url and is never verified against the downloaded file
type DefaultSkinRetriever struct {
	Unsupported

	downloader Downloader
	url        string
	digest     string
}

func NewDefaultSkinRetriever(downloader Downloader, url string, digest string) *DefaultSkinRetriever {
	if url == "" {
		url = DefaultSkinUrl
	}

	if digest == "" {
		digest = DefaultSkinDigest
	}

	return &DefaultSkinRetriever{
		downloader: downloader,
		url:        url,
		digest:     digest,
	}
}

func (r *DefaultSkinRetriever) GetTexture(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTexture, error) {
	if kind != textures.Skin {
		return nil, nil
	}

	return &textures.RetrievedTexture{
		Url:    r.url,
		Digest: r.digest,
	}, nil
}

func (r *DefaultSkinRetriever) GetTextureBytes(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTextureBytes, error) {
	if kind != textures.Skin {
		return nil, nil
	}

	return r.download(ctx)
}

func (r *DefaultSkinRetriever) GetTextureBytesByDigest(ctx context.Context, digest string) (*textures.RetrievedTextureBytes, error) {
	if digest != r.digest {
		return nil, nil
	}

	return r.download(ctx)
}

func (r *DefaultSkinRetriever) SupportsKind(kind textures.Kind) bool {
	return kind == textures.Skin
}

func (r *DefaultSkinRetriever) download(ctx context.Context) (*textures.RetrievedTextureBytes, error) {
	data, err := r.downloader.DownloadTexture(ctx, r.url)
	if err != nil || data == nil {
		return nil, err
	}

	return &textures.RetrievedTextureBytes{
		Digest: r.digest,
		Data:   data,
	}, nil
}
