package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
)

// minAccessTokenLifetime is the floor applied at mint time regardless of
// configuration.
const minAccessTokenLifetime = time.Minute

// Claims carried by an access token. Roles are embedded so that resource
// servers can authorize without a store round trip.
type Claims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
}

// Minter builds and signs short-lived access tokens with HS256. It is a pure
// function of its inputs plus the configured key, issuer, and audience; key
// validity is checked once at startup by DecodeSigningKey, not per call.
type Minter struct {
	issuer   string
	audience string
	key      []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewMinter constructs a Minter. now may be nil, in which case the UTC
// system clock is used.
func NewMinter(issuer, audience string, key []byte, lifetime time.Duration, now func() time.Time) *Minter {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if lifetime < minAccessTokenLifetime {
		lifetime = minAccessTokenLifetime
	}
	return &Minter{
		issuer:   issuer,
		audience: audience,
		key:      key,
		lifetime: lifetime,
		now:      now,
	}
}

// Mint signs an access token for the user. Each call produces a fresh jti so
// two otherwise identical tokens never share a fingerprint.
func (m *Minter) Mint(user *models.User, roles []string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.lifetime)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			ID:        strings.ReplaceAll(uuid.NewString(), "-", ""),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Email: user.Email,
		Roles: roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing access token: %w", err)
	}

	return signed, expires, nil
}

// Parse verifies the signature, lifetime, issuer, and audience of an access
// token and returns its claims.
func (m *Minter) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return m.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("parsing access token: token invalid")
	}

	return claims, nil
}
