package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashDocuments computes a single content hash over a set of named documents.
// The hash covers names and contents in the order given, so callers should
// sort documents by name first if order is not meaningful.
func HashDocuments(names []string, contents [][]byte) string {
	h := sha256.New()
	for i, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
		if i < len(contents) {
			h.Write(contents[i])
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
