package retrieval

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"ely.by/textures/internal/db"
	"ely.by/textures/internal/mojang"
	"ely.by/textures/internal/textures"
)

type RetrieverMock struct {
	mock.Mock
}

func (m *RetrieverMock) GetTexture(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTexture, error) {
	args := m.Called(ctx, user, kind)
	var result *textures.RetrievedTexture
	if casted, ok := args.Get(0).(*textures.RetrievedTexture); ok {
		result = casted
	}

	return result, args.Error(1)
}

func (m *RetrieverMock) GetTextureBytes(ctx context.Context, user uuid.UUID, kind textures.Kind) (*textures.RetrievedTextureBytes, error) {
	args := m.Called(ctx, user, kind)
	var result *textures.RetrievedTextureBytes
	if casted, ok := args.Get(0).(*textures.RetrievedTextureBytes); ok {
		result = casted
	}

	return result, args.Error(1)
}

func (m *RetrieverMock) GetTextureBytesByDigest(ctx context.Context, digest string) (*textures.RetrievedTextureBytes, error) {
	args := m.Called(ctx, digest)
	var result *textures.RetrievedTextureBytes
	if casted, ok := args.Get(0).(*textures.RetrievedTextureBytes); ok {
		result = casted
	}

	return result, args.Error(1)
}

func (m *RetrieverMock) GetTextureBytesByUsername(ctx context.Context, username string, kind textures.Kind) (*textures.RetrievedTextureBytes, error) {
	args := m.Called(ctx, username, kind)
	var result *textures.RetrievedTextureBytes
	if casted, ok := args.Get(0).(*textures.RetrievedTextureBytes); ok {
		result = casted
	}

	return result, args.Error(1)
}

func (m *RetrieverMock) SupportsKind(kind textures.Kind) bool {
	return m.Called(kind).Bool(0)
}

type TexturesFinderMock struct {
	mock.Mock
}

func (m *TexturesFinderMock) FindTexture(ctx context.Context, user uuid.UUID, kind textures.Kind) (*db.Texture, error) {
	args := m.Called(ctx, user, kind)
	var result *db.Texture
	if casted, ok := args.Get(0).(*db.Texture); ok {
		result = casted
	}

	return result, args.Error(1)
}

func (m *TexturesFinderMock) FindTextureByDigest(ctx context.Context, digest string) (*db.Texture, error) {
	args := m.Called(ctx, digest)
	var result *db.Texture
	if casted, ok := args.Get(0).(*db.Texture); ok {
		result = casted
	}

	return result, args.Error(1)
}

type UsernamesFinderMock struct {
	mock.Mock
}

func (m *UsernamesFinderMock) FindUsernameByUuid(ctx context.Context, user uuid.UUID) (string, error) {
	args := m.Called(ctx, user)

	return args.String(0), args.Error(1)
}

type MojangProfilesProviderMock struct {
	mock.Mock
}

func (m *MojangProfilesProviderMock) GetForUuid(ctx context.Context, user uuid.UUID) (*mojang.ProfileResponse, error) {
	args := m.Called(ctx, user)
	var result *mojang.ProfileResponse
	if casted, ok := args.Get(0).(*mojang.ProfileResponse); ok {
		result = casted
	}

	return result, args.Error(1)
}

func (m *MojangProfilesProviderMock) GetForUsername(ctx context.Context, username string) (*mojang.ProfileResponse, error) {
	args := m.Called(ctx, username)
	var result *mojang.ProfileResponse
	if casted, ok := args.Get(0).(*mojang.ProfileResponse); ok {
		result = casted
	}

	return result, args.Error(1)
}

func (m *MojangProfilesProviderMock) GetUuid(ctx context.Context, username string) (*mojang.ProfileInfo, error) {
	args := m.Called(ctx, username)
	var result *mojang.ProfileInfo
	if casted, ok := args.Get(0).(*mojang.ProfileInfo); ok {
		result = casted
	}

	return result, args.Error(1)
}

type DownloaderMock struct {
	mock.Mock
}

func (m *DownloaderMock) DownloadTexture(ctx context.Context, textureUrl string) ([]byte, error) {
	args := m.Called(ctx, textureUrl)
	var result []byte
	if casted, ok := args.Get(0).([]byte); ok {
		result = casted
	}

	return result, args.Error(1)
}

func (m *DownloaderMock) TextureUrl(digest string) string {
	return "http://textures.minecraft.net/texture/" + digest
}

// captureLogs redirects the default logger into the returned buffer until the test ends
func captureLogs(t *testing.T) *bytes.Buffer {
	buf := &bytes.Buffer{}
	original := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(buf, nil)))
	t.Cleanup(func() {
		slog.SetDefault(original)
	})

	return buf
}

var pngPayload = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x01}
