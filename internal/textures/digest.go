package textures

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

var digestRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)

// ComputeDigest returns the lowercase hex encoded SHA-256 of the data.
// It's used both as the storage key and as the public texture identifier.
func ComputeDigest(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}

// IsDigest reports whether the value is a digest in its canonical form
func IsDigest(value string) bool {
	return digestRegex.MatchString(value)
}
