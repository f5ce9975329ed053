package common

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateRandByteArray returns size cryptographically secure random bytes.
// It panics only if the system entropy source is unreadable.
func GenerateRandByteArray(size int) []byte {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("reading system entropy: %v", err))
	}
	return buf
}

// MakeRandBase64String returns a base64-encoded string of size random bytes.
func MakeRandBase64String(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading system entropy: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// WipeByteArray zeroes the buffer in place. Nil-safe.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
