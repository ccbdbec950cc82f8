// Package services contains server-side business logic: UserService
// registers users, logs them in and refreshes access tokens, delegating the
// refresh token lifecycle to RefreshTokenManager.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/league-auth/internal/common"
	"github.com/dmitrijs2005/league-auth/internal/logging"
	"github.com/dmitrijs2005/league-auth/internal/server/auth"
	"github.com/dmitrijs2005/league-auth/internal/server/models"
	"github.com/dmitrijs2005/league-auth/internal/server/repositories/repomanager"
)

// TokenPair is what login and refresh hand back to the caller.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	Role         string
}

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint tokens
// - RefreshToken: mint a new access token for a live refresh token
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	hasher        auth.PasswordHasher
	tokens        *auth.TokenIssuer
	refreshTokens *RefreshTokenManager
	logger        logging.Logger
}

// NewUserService wires the service. db may be nil for storage that has no
// SQL connection.
func NewUserService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	hasher auth.PasswordHasher,
	tokens *auth.TokenIssuer,
	refreshTokens *RefreshTokenManager,
	logger logging.Logger,
) *UserService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &UserService{
		db:            db,
		repomanager:   m,
		hasher:        hasher,
		tokens:        tokens,
		refreshTokens: refreshTokens,
		logger:        logger,
	}
}

// Register creates a user with the default role. Username is checked before
// email; either clash yields common.ErrUserAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, password string) error {
	v := &common.ValidationError{}
	requireNotBlank(v, "username", username)
	requireNotBlank(v, "email", email)
	requireNotBlank(v, "password", password)
	if limited, ok := s.hasher.(auth.LengthLimited); ok && len(password) > limited.MaxPasswordBytes() {
		v.Add("password", fmt.Sprintf("must be at most %d bytes", limited.MaxPasswordBytes()))
	}
	if err := v.OrNil(); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)

	if err := s.ensureAbsent(ctx, repo.FindByUsername, username); err != nil {
		return err
	}
	if err := s.ensureAbsent(ctx, repo.FindByEmail, email); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			v.Add("password", "is too long")
			return v
		}
		return fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         common.DefaultRole,
	}
	if _, err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrUserAlreadyExists) {
			return common.ErrUserAlreadyExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "username", username, "user_id", user.ID)
	return nil
}

// Login verifies credentials, replaces the user's refresh token and returns
// a fresh token pair.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	v := &common.ValidationError{}
	requireNotBlank(v, "username", username)
	requireNotBlank(v, "password", password)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Matches(password, user.PasswordHash) {
		s.logger.Warn(ctx, "login rejected", "username", username)
		return nil, common.ErrInvalidCredentials
	}

	rt, err := s.refreshTokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "login succeeded", "username", username)
	return &TokenPair{AccessToken: access, RefreshToken: rt.Token, Role: user.Role}, nil
}

// RefreshToken mints a new access token for the owner of refreshToken. The
// refresh token itself is returned unchanged.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	v := &common.ValidationError{}
	requireNotBlank(v, "refreshToken", refreshToken)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	rt, err := s.refreshTokens.Resolve(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	access, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "access token refreshed", "username", user.Username)
	return &TokenPair{AccessToken: access, RefreshToken: rt.Token, Role: user.Role}, nil
}

func (s *UserService) ensureAbsent(ctx context.Context, find func(context.Context, string) (*models.User, error), value string) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return common.ErrUserAlreadyExists
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return fmt.Errorf("error searching user: %w", err)
	}
}

func requireNotBlank(v *common.ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "must not be blank")
	}
}
