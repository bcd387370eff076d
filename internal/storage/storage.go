package storage

import "context"

// Backend is a content-addressed byte storage. All implementations must produce
// identical results for the same inputs, so the retrieval layer can use any of them.
type Backend interface {
	// StoreFile persists data under the key derived from the digest and extension,
	// overwriting an existing object. The returned URL always equals GenerateUrl for the same arguments.
	StoreFile(ctx context.Context, data []byte, digest string, extension string) (string, error)
	// GetFile returns textures.NotFoundError if there is no object under the key
	GetFile(ctx context.Context, digest string, extension string) ([]byte, error)
	// GenerateUrl must not perform any I/O
	GenerateUrl(digest string, extension string) string
}
