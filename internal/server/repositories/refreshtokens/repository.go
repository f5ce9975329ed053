// Package refreshtokens declares the server-side store contract for
// persisted refresh-token identities. The store is append-only: the only
// mutation ever applied to a row is the one-time transition into a terminal
// state. Rows are never deleted by the core; housekeeping is external.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts a freshly issued token record. The unique constraint on
	// token_hash is the backstop against duplicate-secret collisions.
	Create(ctx context.Context, token *models.RefreshToken) error

	// FindByHash looks a token up by the hash of its plaintext and returns
	// its full record, or common.ErrNotFound.
	FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error)

	// Revoke marks the row revoked, guarded by revoked_at IS NULL. It
	// reports whether a row actually changed; false means the token had
	// already reached a terminal state (possibly in a concurrent request).
	Revoke(ctx context.Context, id string, at time.Time, ip string) (bool, error)

	// Rotate marks the row revoked and links it forward to its successor in
	// a single guarded update. As with Revoke, false means another request
	// got there first.
	Rotate(ctx context.Context, id string, at time.Time, ip string, successorHash string) (bool, error)
}
