package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/league-auth/internal/common"
	"github.com/dmitrijs2005/league-auth/internal/dbx"
	"github.com/dmitrijs2005/league-auth/internal/server/models"
	"github.com/google/uuid"
)

// SQLiteRepository implements Repository on SQLite.
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Save(ctx context.Context, token *models.RefreshToken) error {
	id := uuid.NewString()
	createdAt := r.now().UTC()

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at)
VALUES (?, ?, ?, ?, ?)`,
		id, token.UserID, token.Token, token.ExpiryDate.UTC(), createdAt,
	); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	token.ID = id
	token.CreatedAt = createdAt
	return nil
}

func (r *SQLiteRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, token, expires_at, created_at
FROM refresh_tokens
WHERE token = ?`,
		token,
	)

	rt := &models.RefreshToken{}
	if err := row.Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiryDate, &rt.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rt, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = ?`, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
