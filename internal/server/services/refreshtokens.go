package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/league-auth/internal/common"
	"github.com/dmitrijs2005/league-auth/internal/dbx"
	"github.com/dmitrijs2005/league-auth/internal/server/models"
	"github.com/dmitrijs2005/league-auth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/league-auth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// RefreshTokenManager owns the refresh token lifecycle: issue on login,
// resolve on refresh, purge on expiry. Tokens are never updated in place.
type RefreshTokenManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validity    time.Duration
	now         func() time.Time
	newToken    func() string
}

// RefreshTokenOption customizes a RefreshTokenManager.
type RefreshTokenOption func(*RefreshTokenManager)

// WithRefreshClock replaces time.Now.
func WithRefreshClock(now func() time.Time) RefreshTokenOption {
	return func(m *RefreshTokenManager) { m.now = now }
}

// WithTokenGenerator replaces the random token source.
func WithTokenGenerator(gen func() string) RefreshTokenOption {
	return func(m *RefreshTokenManager) { m.newToken = gen }
}

// NewRefreshTokenManager builds a manager whose tokens live for validity.
// A non-positive validity falls back to common.DefaultRefreshTokenValidity.
func NewRefreshTokenManager(db *sql.DB, m repomanager.RepositoryManager, validity time.Duration, opts ...RefreshTokenOption) *RefreshTokenManager {
	if validity <= 0 {
		validity = common.DefaultRefreshTokenValidity
	}
	rm := &RefreshTokenManager{
		db:          db,
		repomanager: m,
		validity:    validity,
		now:         time.Now,
		newToken:    uuid.NewString,
	}
	for _, o := range opts {
		o(rm)
	}
	return rm
}

// Issue replaces every token of userID with a fresh one. On SQL backends the
// delete and insert share one transaction, and on Postgres the user row is
// locked first so concurrent logins for one user queue up.
func (m *RefreshTokenManager) Issue(ctx context.Context, userID string) (*models.RefreshToken, error) {
	token := &models.RefreshToken{
		UserID:     userID,
		Token:      m.newToken(),
		ExpiryDate: m.now().Add(m.validity),
	}

	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := m.repomanager.RefreshTokens(tx)
		if locker, ok := repo.(refreshtokens.UserLocker); ok {
			if err := locker.LockUser(ctx, userID); err != nil {
				return fmt.Errorf("error locking user: %w", err)
			}
		}
		if err := repo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("error deleting refresh tokens: %w", err)
		}
		if err := repo.Save(ctx, token); err != nil {
			return fmt.Errorf("error saving refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return token, nil
}

// Resolve looks up a token. Unknown tokens yield common.ErrInvalidToken.
// Expired ones are deleted and yield common.ErrRefreshTokenExpired.
func (m *RefreshTokenManager) Resolve(ctx context.Context, token string) (*models.RefreshToken, error) {
	repo := m.repomanager.RefreshTokens(m.db)

	rt, err := repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if rt.Expired(m.now()) {
		if err := repo.Delete(ctx, token); err != nil {
			return nil, fmt.Errorf("%w: purge failed: %w", common.ErrRefreshTokenExpired, err)
		}
		return nil, common.ErrRefreshTokenExpired
	}

	return rt, nil
}

// DeleteAllForUser removes every refresh token of userID. Idempotent.
func (m *RefreshTokenManager) DeleteAllForUser(ctx context.Context, userID string) error {
	if err := m.repomanager.RefreshTokens(m.db).DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("error deleting refresh tokens: %w", err)
	}
	return nil
}
