package textures

import "bytes"

const SlimModel = "slim"

type Metadata struct {
	Model string `json:"model,omitempty"`
}

// RetrievedTexture describes where a texture can be fetched from
type RetrievedTexture struct {
	Url      string
	Digest   string
	Metadata *Metadata
}

// RetrievedTextureBytes carries the texture payload itself
type RetrievedTextureBytes struct {
	Digest   string
	Data     []byte
	Metadata *Metadata
}

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// IsPng checks only the container signature, the image itself isn't decoded
func IsPng(data []byte) bool {
	return bytes.HasPrefix(data, pngSignature)
}
