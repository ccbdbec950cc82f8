package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/league-auth/internal/logging"
	"github.com/dmitrijs2005/league-auth/internal/server/auth"
	"github.com/dmitrijs2005/league-auth/internal/server/config"
	"github.com/dmitrijs2005/league-auth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/league-auth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/league-auth/internal/server/services"
	"github.com/redis/go-redis/v9"
)

// Storage is an opened, migrated storage backend.
type Storage struct {
	DB      *sql.DB
	Manager repomanager.RepositoryManager
	redis   *redis.Client
}

// OpenStorage opens the backend selected by cfg.StorageDriver, applies
// migrations and, when cfg.RedisAddr is set, moves refresh tokens to Redis.
func OpenStorage(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Storage, error) {
	st := &Storage{}

	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		st.DB, st.Manager = db, repomanager.NewPostgresRepositoryManager()
	case config.DriverSQLite:
		db, err := repomanager.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		st.DB, st.Manager = db, repomanager.NewSQLiteRepositoryManager()
	case config.DriverMemory:
		st.Manager = repomanager.NewMemoryRepositoryManager()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if err := st.Manager.RunMigrations(ctx, st.DB); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	logger.Info(ctx, "storage ready", "driver", cfg.StorageDriver)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			_ = st.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		st.redis = rdb
		st.Manager = repomanager.WithRedisRefreshTokens(st.Manager,
			refreshtokens.NewRedisRepository(rdb, "", refreshtokens.DefaultRedisRetention))
		logger.Info(ctx, "refresh tokens stored in redis", "address", cfg.RedisAddr)
	}

	return st, nil
}

// Close releases the database and Redis connections.
func (s *Storage) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}
	return errors.Join(errs...)
}

// NewUserService wires the credential verifier, token issuer and refresh
// token manager over st.
func NewUserService(cfg *config.Config, st *Storage, logger logging.Logger) (*services.UserService, *auth.TokenIssuer, error) {
	hasher, err := auth.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, auth.WithIssuer(cfg.Issuer))
	if err != nil {
		return nil, nil, err
	}

	refresh := services.NewRefreshTokenManager(st.DB, st.Manager, cfg.RefreshTokenValidityDuration)
	return services.NewUserService(st.DB, st.Manager, hasher, tokens, refresh, logger), tokens, nil
}
