// Package common defines shared constants and sentinel errors used across
// the layers of tokenkeeper. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// ErrInvalidCredentials is returned for any login failure. It deliberately
	// does not distinguish "user not found" from "wrong password" so that the
	// login endpoint cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidOrExpiredToken covers every refresh/revoke failure on a token
	// that is unknown, revoked, rotated, or past its expiry. A single sentinel
	// keeps the outward message identical for all of those causes.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired refresh token")

	// ErrUserNotFound is returned by administrative operations addressed to a
	// nonexistent user id.
	ErrUserNotFound = errors.New("user not found")

	// ErrWeakSigningKey aborts startup when the configured signing secret
	// decodes to fewer than 256 bits.
	ErrWeakSigningKey = errors.New("signing key shorter than 256 bits")
)
