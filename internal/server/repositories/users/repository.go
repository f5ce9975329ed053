// Package users declares the capability interface the engine needs from a
// user store. Any implementation (relational table, embedded store) can
// satisfy it; the engine depends only on this contract.
package users

import (
	"context"

	"github.com/dmitrijs2005/tokenkeeper/internal/server/models"
)

type Repository interface {
	// Create persists a new user and returns it with the generated id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByID returns the user with the given id, or common.ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail returns the user with the given email (case-insensitive),
	// or common.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
