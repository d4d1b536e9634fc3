package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// UserPrefix derives the storage prefix under which a user's blobs live.
// Hashing keeps raw user IDs out of object keys.
func UserPrefix(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}
