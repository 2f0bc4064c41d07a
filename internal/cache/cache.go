package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching oracle responses.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from an oracle prompt pair. Identical prompts hit
// the same entry regardless of which component issued them.
func Key(systemPrompt, userContent string) string {
	h := sha256.New()
	h.Write([]byte(systemPrompt))
	h.Write([]byte{0})
	h.Write([]byte(userContent))
	return "arbiter:v1:" + hex.EncodeToString(h.Sum(nil))
}
