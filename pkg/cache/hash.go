package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// RenderKey returns the cache key of a diagram rendered from dot in format.
// The key format is: render:format:sha256(dot)
func RenderKey(format, dot string) string {
	return "render:" + format + ":" + Hash([]byte(dot))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
