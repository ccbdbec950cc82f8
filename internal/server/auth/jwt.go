// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/league-auth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the access-token payload: the registered claims (sub, iss, iat,
// exp) plus the user's role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 access tokens. It is immutable after
// construction and safe for concurrent use.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option customizes a TokenIssuer.
type Option func(*TokenIssuer)

// WithIssuer overrides the "iss" claim written and required on tokens.
func WithIssuer(issuer string) Option {
	return func(t *TokenIssuer) {
		if issuer != "" {
			t.issuer = issuer
		}
	}
}

// WithClock replaces time.Now for both issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(t *TokenIssuer) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTokenIssuer returns an issuer signing with secret whose tokens live for ttl.
func NewTokenIssuer(secret []byte, ttl time.Duration, opts ...Option) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("access token validity must be positive")
	}
	t := &TokenIssuer{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		issuer: common.DefaultIssuer,
		now:    time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Issue signs a token for subject carrying role.
func (t *TokenIssuer) Issue(subject, role string) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})

	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return tokenString, nil
}

// Validate verifies signature, structure and expiry and then compares the
// subject. A subject mismatch is (false, nil); every verification failure is
// an error matching common.ErrTokenMalformed, common.ErrTokenSignatureInvalid,
// common.ErrTokenExpired or common.ErrTokenInvalid.
func (t *TokenIssuer) Validate(tokenString, expectedSubject string) (bool, error) {
	claims, err := t.ParseClaims(tokenString)
	if err != nil {
		return false, err
	}
	return claims.Subject == expectedSubject, nil
}

// ExtractSubject returns the "sub" claim of a verified token.
func (t *TokenIssuer) ExtractSubject(tokenString string) (string, error) {
	claims, err := t.ParseClaims(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractRole returns the "role" claim of a verified token.
func (t *TokenIssuer) ExtractRole(tokenString string) (string, error) {
	claims, err := t.ParseClaims(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}

// ExtractExpiry returns the "exp" claim of a verified token.
func (t *TokenIssuer) ExtractExpiry(tokenString string) (time.Time, error) {
	claims, err := t.ParseClaims(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

// ParseClaims verifies tokenString and returns its claims.
func (t *TokenIssuer) ParseClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return nil, classify(tokenString, err)
	}
	return claims, nil
}

// classify maps library errors onto the distinct access-token failure kinds.
// A token whose header and payload decode but whose signature segment does
// not is a forged signature, not a malformed token.
func classify(tokenString string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed) && signatureUndecodable(tokenString):
		return fmt.Errorf("%w: %w", common.ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", common.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", common.ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", common.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %w", common.ErrTokenInvalid, err)
	}
}

// signatureUndecodable reports whether tokenString has three segments, the
// first two strict base64url, and a third that is not.
func signatureUndecodable(tokenString string) bool {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return false
	}
	enc := base64.RawURLEncoding.Strict()
	for _, part := range parts[:2] {
		if _, err := enc.DecodeString(part); err != nil {
			return false
		}
	}
	_, err := enc.DecodeString(parts[2])
	return err != nil
}
