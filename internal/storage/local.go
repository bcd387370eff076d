package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ely.by/textures/internal/textures"
)

func NewLocalBackend(path string, baseUrl string) (*LocalBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: local storage path must be set", textures.MisconfiguredError)
	}

	if baseUrl == "" {
		return nil, fmt.Errorf("%w: local storage base url must be set", textures.MisconfiguredError)
	}

	return &LocalBackend{
		path:    path,
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
	}, nil
}

// LocalBackend keeps one file per digest under the root directory.
// Files are named by the raw digest, so the extension is ignored on both write and read paths.
type LocalBackend struct {
	path    string
	baseUrl string
}

func (b *LocalBackend) StoreFile(ctx context.Context, data []byte, digest string, extension string) (string, error) {
	if !textures.IsDigest(digest) {
		return "", fmt.Errorf("invalid digest %q", digest)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	err := os.MkdirAll(b.path, 0o755)
	if err != nil {
		return "", errors.Join(textures.BackendUnavailableError, err)
	}

	// Write into a temporary file first, so concurrent readers never observe a partially written texture
	tmp, err := os.CreateTemp(b.path, "."+digest+".*")
	if err != nil {
		return "", errors.Join(textures.BackendUnavailableError, err)
	}

	_, err = tmp.Write(data)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}

	if err == nil {
		err = os.Rename(tmp.Name(), b.filePath(digest))
	}

	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", errors.Join(textures.BackendUnavailableError, err)
	}

	return b.GenerateUrl(digest, extension), nil
}

func (b *LocalBackend) GetFile(ctx context.Context, digest string, extension string) ([]byte, error) {
	if !textures.IsDigest(digest) {
		return nil, fmt.Errorf("%w: invalid digest %q", textures.NotFoundError, digest)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.filePath(digest))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", textures.NotFoundError, digest)
	}

	if err != nil {
		return nil, errors.Join(textures.BackendUnavailableError, err)
	}

	return data, nil
}

func (b *LocalBackend) GenerateUrl(digest string, _ string) string {
	return b.baseUrl + "/" + digest
}

// Ping is used by the healthcheck
func (b *LocalBackend) Ping(ctx context.Context) error {
	stat, err := os.Stat(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		// The directory will be created on the first write
		return nil
	}

	if err != nil {
		return err
	}

	if !stat.IsDir() {
		return fmt.Errorf("%s is not a directory", b.path)
	}

	return nil
}

func (b *LocalBackend) filePath(digest string) string {
	return filepath.Join(b.path, digest)
}
