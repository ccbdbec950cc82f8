package refreshtokens

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/league-auth/internal/common"
	"github.com/dmitrijs2005/league-auth/internal/server/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE refresh_tokens (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	token TEXT NOT NULL UNIQUE,
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL
);`

func newSQLite(t *testing.T) Repository {
	t.Helper()
	db, err := sql.Open("sqlite", "file:rt_"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(sqliteSchema)
	require.NoError(t, err)
	return NewSQLiteRepository(db)
}

func newRedis(t *testing.T) Repository {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisRepository(rdb, "test", DefaultRedisRetention)
}

func backends() map[string]func(*testing.T) Repository {
	return map[string]func(*testing.T) Repository{
		"memory": func(*testing.T) Repository { return NewMemoryRepository() },
		"sqlite": newSQLite,
		"redis":  newRedis,
	}
}

func TestRepositoryContract(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := mk(t)
			expiry := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Millisecond)

			rt := &models.RefreshToken{UserID: "u1", Token: "tok-1", ExpiryDate: expiry}
			require.NoError(t, repo.Save(ctx, rt))
			assert.NotEmpty(t, rt.ID)

			got, err := repo.FindByToken(ctx, "tok-1")
			require.NoError(t, err)
			assert.Equal(t, "u1", got.UserID)
			assert.Equal(t, "tok-1", got.Token)
			assert.True(t, got.ExpiryDate.Equal(expiry), "expiry %v != %v", got.ExpiryDate, expiry)

			_, err = repo.FindByToken(ctx, "nope")
			assert.ErrorIs(t, err, common.ErrorNotFound)

			require.NoError(t, repo.Delete(ctx, "tok-1"))
			_, err = repo.FindByToken(ctx, "tok-1")
			assert.ErrorIs(t, err, common.ErrorNotFound)

			assert.NoError(t, repo.Delete(ctx, "tok-1"), "delete must be idempotent")
		})
	}
}

func TestRepositoryContract_DeleteByUserID(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := mk(t)
			exp := time.Now().Add(time.Hour)

			require.NoError(t, repo.Save(ctx, &models.RefreshToken{UserID: "u1", Token: "a", ExpiryDate: exp}))
			require.NoError(t, repo.Save(ctx, &models.RefreshToken{UserID: "u1", Token: "b", ExpiryDate: exp}))
			require.NoError(t, repo.Save(ctx, &models.RefreshToken{UserID: "u2", Token: "c", ExpiryDate: exp}))

			require.NoError(t, repo.DeleteByUserID(ctx, "u1"))

			for _, tok := range []string{"a", "b"} {
				_, err := repo.FindByToken(ctx, tok)
				assert.ErrorIs(t, err, common.ErrorNotFound, tok)
			}
			other, err := repo.FindByToken(ctx, "c")
			require.NoError(t, err)
			assert.Equal(t, "u2", other.UserID)

			assert.NoError(t, repo.DeleteByUserID(ctx, "u1"))
			assert.NoError(t, repo.DeleteByUserID(ctx, "never-existed"))
		})
	}
}

func TestRedisRepository_KeepsExpiredTokensForRetention(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	repo := NewRedisRepository(rdb, "", time.Hour)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, repo.Save(ctx, &models.RefreshToken{UserID: "u1", Token: "old", ExpiryDate: expired}))

	assert.True(t, mr.Exists("rt:t:old"))
	got, err := repo.FindByToken(ctx, "old")
	require.NoError(t, err)
	assert.True(t, got.Expired(time.Now()))

	mr.FastForward(2 * time.Hour)
	_, err = repo.FindByToken(ctx, "old")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRedisRepository_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	repo := NewRedisRepository(rdb, "x", 0)
	mr.Close()

	_, err := repo.FindByToken(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrRedisUnavailable)
	assert.ErrorIs(t, repo.Save(context.Background(), &models.RefreshToken{UserID: "u", Token: "t"}), ErrRedisUnavailable)
}
