package repomanager

import (
	"github.com/dmitrijs2005/league-auth/internal/dbx"
	"github.com/dmitrijs2005/league-auth/internal/server/repositories/refreshtokens"
)

// redisRefreshTokens routes refresh tokens to Redis and everything else to
// the wrapped manager.
type redisRefreshTokens struct {
	RepositoryManager
	tokens *refreshtokens.RedisRepository
}

// WithRedisRefreshTokens keeps users in m but stores refresh tokens in Redis.
// Token replacement is then no longer covered by the SQL transaction.
func WithRedisRefreshTokens(m RepositoryManager, tokens *refreshtokens.RedisRepository) RepositoryManager {
	return &redisRefreshTokens{RepositoryManager: m, tokens: tokens}
}

func (r *redisRefreshTokens) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return r.tokens
}
