package retrieval

import (
	"context"
	_ "embed"
	"strings"

	"github.com/google/uuid"

	"ely.by/textures/internal/textures"
)

//go:embed default_skin.png
var embeddedDefaultSkin []byte

// EmbeddedDefaultSkinRetriever serves the default skin compiled into the binary without any network access.
// The reported url points to this service's download by digest route
type EmbeddedDefaultSkinRetriever struct {
	Unsupported

	data   []byte
	digest string
	url    string
}

// NewEmbeddedDefaultSkinRetriever uses the bundled skin when data is nil
func NewEmbeddedDefaultSkinRetriever(data []byte, baseUrl string) *EmbeddedDefaultSkinRetriever {
	if data == nil {
		data = embeddedDefaultSkin
	}

	digest := textures.ComputeDigest(data)

	return &EmbeddedDefaultSkinRetriever{
		data:   data,
		digest: digest,
		url:    strings.TrimSuffix(baseUrl, "/") + "/download/" + digest,
	}
}

func (r *EmbeddedDefaultSkinRetriever) Digest() string {
	return r.digest
}

func (r *EmbeddedDefaultSkinRetriever) GetTexture(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTexture, error) {
	if kind != textures.Skin {
		return nil, nil
	}

	return &textures.RetrievedTexture{
		Url:    r.url,
		Digest: r.digest,
	}, nil
}

func (r *EmbeddedDefaultSkinRetriever) GetTextureBytes(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTextureBytes, error) {
	if kind != textures.Skin {
		return nil, nil
	}

	return r.bytes(), nil
}

func (r *EmbeddedDefaultSkinRetriever) GetTextureBytesByDigest(ctx context.Context, digest string) (*textures.RetrievedTextureBytes, error) {
	if digest != r.digest {
		return nil, nil
	}

	return r.bytes(), nil
}

func (r *EmbeddedDefaultSkinRetriever) SupportsKind(kind textures.Kind) bool {
	return kind == textures.Skin
}

// Each caller gets its own copy, so the shared bytes can't be modified
func (r *EmbeddedDefaultSkinRetriever) bytes() *textures.RetrievedTextureBytes {
	return &textures.RetrievedTextureBytes{
		Digest: r.digest,
		Data:   append([]byte(nil), r.data...),
	}
}
