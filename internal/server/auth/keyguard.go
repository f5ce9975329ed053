// Package auth contains the stateless cryptographic pieces of the server:
// signing-key validation, access-token minting and parsing, refresh-token
// hashing, and password hashing.
package auth

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
)

// MinSigningKeyBytes is the minimum HMAC key size: 256 bits. HS256 with a
// shorter key weakens every signature issued for the lifetime of the
// process, so startup must fail instead.
const MinSigningKeyBytes = 32

// DecodeSigningKey turns the configured secret into HMAC key material.
// The secret is preferred as base64; when it does not decode, its raw UTF-8
// bytes are used instead. Keys shorter than MinSigningKeyBytes are rejected
// with common.ErrWeakSigningKey.
//
// Called once at startup; the minter never re-validates per call.
func DecodeSigningKey(secret string) ([]byte, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: secret is not configured", common.ErrWeakSigningKey)
	}

	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		key = []byte(secret)
	}

	if len(key) < MinSigningKeyBytes {
		return nil, fmt.Errorf("%w: decoded to %d bytes, need at least %d (base64 preferred)",
			common.ErrWeakSigningKey, len(key), MinSigningKeyBytes)
	}

	return key, nil
}
