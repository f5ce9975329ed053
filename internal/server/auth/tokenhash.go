package auth

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashToken returns the base64-encoded SHA-256 digest of a refresh-token
// plaintext. Only this digest is ever persisted; lookups hash the presented
// plaintext and compare digests.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(sum[:])
}
