package security

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// SessionKey is the storage key of a session id. Stores never see raw ids.
func SessionKey(sessionID string) string {
	sum := blake2b.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:])
}
