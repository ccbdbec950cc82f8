// Package refreshtokens declares the server-side repository contract for
// refresh tokens and its storage implementations.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/league-auth/internal/server/models"
)

// Repository stores refresh tokens keyed by their opaque token string.
//
// A user is meant to hold at most one live token, so callers replace it with
// DeleteByUserID followed by Save. The SQL implementations run that pair in
// whatever transaction their DBTX belongs to. A transaction alone does not
// stop two concurrent replacements under READ COMMITTED, so implementations
// that can serialize per user also satisfy UserLocker. The Redis and in-memory
// implementations ignore transactions, so two concurrent replacements for the
// same user may both survive.
type Repository interface {
	// Save inserts token, assigning ID and CreatedAt when the store generates them.
	Save(ctx context.Context, token *models.RefreshToken) error

	// FindByToken returns common.ErrorNotFound when the token is absent.
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a token. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUserID removes every token owned by userID. Idempotent.
	DeleteByUserID(ctx context.Context, userID string) error
}

// UserLocker is implemented by repositories that can serialize token
// replacement per user inside the current transaction.
type UserLocker interface {
	// LockUser blocks until no other transaction holds userID's lock. A
	// missing user is not an error.
	LockUser(ctx context.Context, userID string) error
}
