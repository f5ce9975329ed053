// Package roles declares the role-store contract used by the administrative
// promote/demote operations and by login to collect role claims.
package roles

import (
	"context"

	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
)

type Repository interface {
	// Ensure returns the role with the given name, creating it when missing.
	Ensure(ctx context.Context, name string) (*models.Role, error)

	// Find returns the role with the given name, or common.ErrNotFound.
	Find(ctx context.Context, name string) (*models.Role, error)

	// Assign grants the role to the user. Assigning an already-held role is
	// not an error.
	Assign(ctx context.Context, userID, roleID string) error

	// Remove takes the role away from the user. Removing a role the user
	// does not hold is not an error.
	Remove(ctx context.Context, userID, roleID string) error

	// ListForUser returns the names of the user's roles, sorted.
	ListForUser(ctx context.Context, userID string) ([]string, error)

	// HasRole reports whether the user holds the named role.
	HasRole(ctx context.Context, userID, name string) (bool, error)
}
