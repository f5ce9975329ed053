// Package services hosts the authentication engine: credential checks,
// access-token minting, and refresh-token rotation. Time and randomness are
// injected so that every decision the engine makes is reproducible in tests.
package services

import (
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
)

// Clock supplies the single time source for the engine. All issuance,
// expiry, and revocation decisions read it exactly once per operation.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock. It always reports UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// SecretSource generates opaque refresh-token secrets.
type SecretSource interface {
	Generate() (string, error)
}

const (
	// DefaultRefreshSecretBytes is the entropy of a generated refresh secret.
	DefaultRefreshSecretBytes = 64

	// MinRefreshSecretBytes is the floor below which a configured size is
	// silently raised.
	MinRefreshSecretBytes = 32
)

// RandomSecretSource draws secrets from the system entropy pool and encodes
// them with standard base64.
type RandomSecretSource struct {
	size int
}

// NewRandomSecretSource returns a source producing size-byte secrets,
// clamped to MinRefreshSecretBytes.
func NewRandomSecretSource(size int) *RandomSecretSource {
	if size < MinRefreshSecretBytes {
		size = MinRefreshSecretBytes
	}
	return &RandomSecretSource{size: size}
}

func (s *RandomSecretSource) Generate() (string, error) {
	return common.MakeRandBase64String(s.size)
}
