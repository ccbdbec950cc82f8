package refreshtokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/league-auth/internal/common"
	"github.com/dmitrijs2005/league-auth/internal/server/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport failures from the Redis client.
var ErrRedisUnavailable = errors.New("redis unavailable")

// DefaultRedisRetention keeps a token hash around after its expiry so a late
// refresh still reports the token as expired rather than unknown.
const DefaultRedisRetention = 24 * time.Hour

const (
	fieldID        = "id"
	fieldUserID    = "user_id"
	fieldExpiresAt = "expires_at"
	fieldCreatedAt = "created_at"
)

// RedisRepository stores each token as a hash under "<prefix>:t:<token>" and
// indexes a user's tokens in the set "<prefix>:u:<userID>".
//
// DeleteByUserID reads the set and then deletes, so a token saved between
// those two steps survives. It does not take part in SQL transactions.
type RedisRepository struct {
	rdb       redis.UniversalClient
	prefix    string
	retention time.Duration
	now       func() time.Time
}

// NewRedisRepository binds a repository to rdb. An empty prefix defaults to "rt".
func NewRedisRepository(rdb redis.UniversalClient, prefix string, retention time.Duration) *RedisRepository {
	if prefix == "" {
		prefix = "rt"
	}
	if retention < 0 {
		retention = 0
	}
	return &RedisRepository{rdb: rdb, prefix: prefix, retention: retention, now: time.Now}
}

func (r *RedisRepository) tokenKey(token string) string {
	return r.prefix + ":t:" + token
}

func (r *RedisRepository) userKey(userID string) string {
	return r.prefix + ":u:" + userID
}

func (r *RedisRepository) Save(ctx context.Context, token *models.RefreshToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = r.now().UTC()

	tokenKey := r.tokenKey(token.Token)
	userKey := r.userKey(token.UserID)
	expireAt := token.ExpiryDate.Add(r.retention)

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, tokenKey,
			fieldID, token.ID,
			fieldUserID, token.UserID,
			fieldExpiresAt, token.ExpiryDate.UTC().Format(time.RFC3339Nano),
			fieldCreatedAt, token.CreatedAt.Format(time.RFC3339Nano),
		)
		pipe.ExpireAt(ctx, tokenKey, expireAt)
		pipe.SAdd(ctx, userKey, token.Token)
		pipe.ExpireAt(ctx, userKey, expireAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *RedisRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	vals, err := r.rdb.HGetAll(ctx, r.tokenKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(vals) == 0 {
		return nil, common.ErrorNotFound
	}

	rt := &models.RefreshToken{
		ID:     vals[fieldID],
		UserID: vals[fieldUserID],
		Token:  token,
	}
	if rt.ExpiryDate, err = time.Parse(time.RFC3339Nano, vals[fieldExpiresAt]); err != nil {
		return nil, fmt.Errorf("corrupt refresh token record: %w", err)
	}
	if rt.CreatedAt, err = time.Parse(time.RFC3339Nano, vals[fieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("corrupt refresh token record: %w", err)
	}
	return rt, nil
}

func (r *RedisRepository) Delete(ctx context.Context, token string) error {
	key := r.tokenKey(token)

	userID, err := r.rdb.HGet(ctx, key, fieldUserID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, r.userKey(userID), token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *RedisRepository) DeleteByUserID(ctx context.Context, userID string) error {
	userKey := r.userKey(userID)

	tokens, err := r.rdb.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, r.tokenKey(t))
	}
	keys = append(keys, userKey)

	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
