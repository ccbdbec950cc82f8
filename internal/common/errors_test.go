package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_OrNil(t *testing.T) {
	v := &ValidationError{}
	assert.NoError(t, v.OrNil())

	v.Add("username", "must not be blank")
	err := v.OrNil()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestValidationError_AddKeepsFirstMessage(t *testing.T) {
	v := &ValidationError{}
	v.Add("email", "must not be blank")
	v.Add("email", "must be a well-formed email address")

	assert.Equal(t, map[string]string{"email": "must not be blank"}, v.Fields)
}

func TestValidationError_WrappedStillMatches(t *testing.T) {
	v := &ValidationError{}
	v.Add("password", "must not be blank")

	wrapped := fmt.Errorf("register: %w", v.OrNil())

	assert.True(t, errors.Is(wrapped, ErrValidation))

	var ve *ValidationError
	require.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "must not be blank", ve.Fields["password"])
}

func TestSentinels_AreDistinct(t *testing.T) {
	all := []error{
		ErrUserAlreadyExists, ErrUserNotFound, ErrInvalidCredentials,
		ErrInvalidToken, ErrRefreshTokenExpired,
		ErrTokenMalformed, ErrTokenSignatureInvalid, ErrTokenExpired, ErrTokenInvalid,
	}
	for i := range all {
		for j := range all {
			if i != j {
				assert.False(t, errors.Is(all[i], all[j]), "%v must not match %v", all[i], all[j])
			}
		}
	}
}
