package models

import (
	"errors"
	"time"
)

// ErrTerminalState is returned when a revoke or rotate is attempted on a
// token that has already left the active state. Revoked and Rotated are
// terminal; there is no way back.
var ErrTerminalState = errors.New("refresh token already in a terminal state")

// State is the rotation state of a refresh token. Exactly one implementation
// holds at any time. Modelling revocation metadata as part of the state
// (instead of independently nullable fields) makes it impossible to build a
// token that is, say, both revoked and still linked forward.
type State interface {
	isState()
}

// Active is the only non-terminal state.
type Active struct{}

// Revoked marks a token explicitly invalidated (logout or admin action).
type Revoked struct {
	At   time.Time
	ByIP string
}

// Rotated marks a token spent by a refresh call. SuccessorHash links forward
// to the replacement, forming a one-directional chain per logical session.
type Rotated struct {
	At            time.Time
	ByIP          string
	SuccessorHash string
}

func (Active) isState()  {}
func (Revoked) isState() {}
func (Rotated) isState() {}

// RefreshToken is the persisted identity of an opaque refresh secret. Only
// the SHA-256 hash of the secret is ever stored; the plaintext is handed to
// the client exactly once at issue time.
type RefreshToken struct {
	ID          string
	TokenHash   string
	UserID      string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	CreatedByIP string

	state State
}

// NewRefreshToken builds a freshly issued, active token record.
func NewRefreshToken(id, tokenHash, userID string, createdAt, expiresAt time.Time, createdByIP string) *RefreshToken {
	return &RefreshToken{
		ID:          id,
		TokenHash:   tokenHash,
		UserID:      userID,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
		CreatedByIP: createdByIP,
		state:       Active{},
	}
}

// RestoreRefreshToken rebuilds a token from persisted columns. Repositories
// are the only intended callers.
func RestoreRefreshToken(id, tokenHash, userID string, createdAt, expiresAt time.Time, createdByIP string, state State) *RefreshToken {
	if state == nil {
		state = Active{}
	}
	return &RefreshToken{
		ID:          id,
		TokenHash:   tokenHash,
		UserID:      userID,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
		CreatedByIP: createdByIP,
		state:       state,
	}
}

// State returns the current rotation state.
func (t *RefreshToken) State() State {
	return t.state
}

// Expired reports whether the token's lifetime has passed. A token whose
// expiry equals now is already expired.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsActive reports whether the token can still be exchanged: not revoked,
// not rotated, and not past its expiry.
func (t *RefreshToken) IsActive(now time.Time) bool {
	if _, ok := t.state.(Active); !ok {
		return false
	}
	return !t.Expired(now)
}

// Revoke moves the token into the Revoked terminal state. It fails if the
// token has already been revoked or rotated; expiry does not block an
// explicit revoke, the audit trail still wants the timestamp.
func (t *RefreshToken) Revoke(at time.Time, ip string) error {
	if _, ok := t.state.(Active); !ok {
		return ErrTerminalState
	}
	t.state = Revoked{At: at, ByIP: ip}
	return nil
}

// RotateTo moves the token into the Rotated terminal state, recording the
// hash of its successor.
func (t *RefreshToken) RotateTo(successorHash string, at time.Time, ip string) error {
	if _, ok := t.state.(Active); !ok {
		return ErrTerminalState
	}
	t.state = Rotated{At: at, ByIP: ip, SuccessorHash: successorHash}
	return nil
}
