package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ScanKey returns the key for the result of scanning the repository file rel
// for marker. Size and modification time are part of the key, so a rebuilt
// file never hits a stale entry.
func ScanKey(marker, rel string, size int64, modTime time.Time) string {
	return hashKey("scan", marker, rel, size, modTime.UTC().UnixNano())
}
