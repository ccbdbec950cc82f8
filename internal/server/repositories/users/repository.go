// Package users declares the user repository contract and its PostgreSQL,
// SQLite and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/league-auth/internal/server/models"
)

// Repository stores identity records.
type Repository interface {
	// Create inserts user, assigning its ID and CreatedAt. A clash on username
	// or email is reported as common.ErrUserAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByUsername, FindByEmail and FindByID return common.ErrorNotFound
	// when no record matches.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}
