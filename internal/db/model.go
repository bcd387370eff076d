package db

import (
	"time"

	"github.com/google/uuid"

	"ely.by/textures/internal/textures"
)

// Texture is the persisted description of the user's texture of the particular kind.
// There is at most one record for each (UserUuid, Kind) pair
type Texture struct {
	UserUuid uuid.UUID
	Kind     textures.Kind
	// Digest contains the content hash of the stored file
	Digest string
	// Url contains the address the file can be downloaded from at the moment of upload
	Url string
	// Metadata is nil when the texture has no additional properties
	Metadata  *textures.Metadata
	CreatedAt time.Time
	UpdatedAt time.Time
}
