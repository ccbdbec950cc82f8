package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/league-auth/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// failure describes how a service error is rendered.
type failure struct {
	status  int
	message string
	outcome string
}

var failures = []struct {
	target error
	failure
}{
	{common.ErrUserAlreadyExists, failure{http.StatusConflict, "User already exists", "user_exists"}},
	{common.ErrUserNotFound, failure{http.StatusNotFound, "User not found", "user_not_found"}},
	{common.ErrInvalidCredentials, failure{http.StatusUnauthorized, "Invalid credentials", "invalid_credentials"}},
	{common.ErrInvalidToken, failure{http.StatusUnauthorized, "Invalid refresh token", "invalid_token"}},
	{common.ErrRefreshTokenExpired, failure{http.StatusUnauthorized, "Refresh token expired", "token_expired"}},
	{common.ErrTokenExpired, failure{http.StatusUnauthorized, "Access token expired", "access_token_expired"}},
	{common.ErrTokenSignatureInvalid, failure{http.StatusUnauthorized, "Invalid access token signature", "access_token_invalid"}},
	{common.ErrTokenMalformed, failure{http.StatusUnauthorized, "Malformed access token", "access_token_invalid"}},
	{common.ErrTokenInvalid, failure{http.StatusUnauthorized, "Invalid access token", "access_token_invalid"}},
}

var internalFailure = failure{http.StatusInternalServerError, "Internal server error", "error"}

func classify(err error) failure {
	for _, f := range failures {
		if errors.Is(err, f.target) {
			return f.failure
		}
	}
	return internalFailure
}

// writeError renders err and returns the metrics outcome label.
func writeError(c *gin.Context, err error) string {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ve.Fields)
		return "validation"
	}

	f := classify(err)
	c.AbortWithStatusJSON(f.status, gin.H{"error": f.message})
	return f.outcome
}

// bindingError turns a gin binding failure into field-keyed messages.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v := &common.ValidationError{}
		v.Add("body", "malformed JSON request body")
		return v
	}

	v := &common.ValidationError{}
	for _, fe := range verrs {
		v.Add(jsonName(fe.Field()), messageFor(fe.Tag()))
	}
	return v
}

func messageFor(tag string) string {
	switch tag {
	case "required":
		return "must not be blank"
	case "email":
		return "must be a well-formed email address"
	default:
		return "is invalid"
	}
}

// jsonName lower-cases the first letter of a Go field name.
func jsonName(field string) string {
	if field == "" {
		return field
	}
	b := []byte(field)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
