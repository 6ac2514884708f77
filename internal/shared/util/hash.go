package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// AnonymousOwner is the storage prefix of uploads made without a user id.
const AnonymousOwner = "anonymous"

// OwnerPrefix is the storage directory of a user's CV uploads: the hex
// SHA-256 of the user id, so raw ids never appear in object keys.
func OwnerPrefix(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return AnonymousOwner
	}
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}
