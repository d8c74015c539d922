package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CacheKey derives a stable cache key from its parts. Keys are hashed so
// arbitrary repo paths and queries stay within Redis key conventions.
func CacheKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}
