package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fastArgon2 = Argon2Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestNewPasswordHasher(t *testing.T) {
	tests := []struct {
		name    string
		algo    string
		want    any
		wantErr bool
	}{
		{name: "default", algo: "", want: &BcryptHasher{}},
		{name: "bcrypt", algo: "bcrypt", want: &BcryptHasher{}},
		{name: "argon2id mixed case", algo: " Argon2ID ", want: &Argon2Hasher{}},
		{name: "unknown", algo: "md5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewPasswordHasher(tt.algo, bcrypt.MinCost)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, h)
		})
	}
}

func TestNewBcryptHasher_CostBounds(t *testing.T) {
	h, err := NewBcryptHasher(0)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)

	_, err = NewBcryptHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)
	_, err = NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestHashers_RoundTrip(t *testing.T) {
	bh, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hashers := map[string]PasswordHasher{
		"bcrypt":   bh,
		"argon2id": NewArgon2Hasher(fastArgon2),
	}
	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash("pw123")
			require.NoError(t, err)
			assert.NotContains(t, hash, "pw123")

			assert.True(t, h.Matches("pw123", hash))
			assert.False(t, h.Matches("wrongpw", hash))
			assert.False(t, h.Matches("pw123", "not-a-hash"))

			again, err := h.Hash("pw123")
			require.NoError(t, err)
			assert.NotEqual(t, hash, again, "hashes must be salted")
		})
	}
}

func TestArgon2Hasher_Format(t *testing.T) {
	h := NewArgon2Hasher(fastArgon2)
	hash, err := h.Hash("secret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$"), hash)
	assert.Len(t, strings.Split(hash, "$"), 6)
}

func TestArgon2Hasher_VerifiesWithStoredParams(t *testing.T) {
	old := NewArgon2Hasher(fastArgon2)
	hash, err := old.Hash("secret")
	require.NoError(t, err)

	current := NewArgon2Hasher(Argon2Params{Memory: 16 * 1024, Time: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32})
	assert.True(t, current.Matches("secret", hash))
}

func TestDecodeArgon2_Rejects(t *testing.T) {
	bad := []string{
		"",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$",
	}
	for _, in := range bad {
		_, _, _, err := decodeArgon2(in)
		assert.ErrorIs(t, err, errBadArgon2Hash, in)
	}
}

func TestBcryptHasher_RejectsLongPasswords(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, MaxBcryptPasswordBytes, h.MaxPasswordBytes())

	_, err = h.Hash(strings.Repeat("x", MaxBcryptPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := h.Hash(strings.Repeat("x", MaxBcryptPasswordBytes))
	require.NoError(t, err)
	assert.True(t, h.Matches(strings.Repeat("x", MaxBcryptPasswordBytes), hash))
}

func TestArgon2Hasher_NoLengthLimit(t *testing.T) {
	var h PasswordHasher = NewArgon2Hasher(fastArgon2)
	_, limited := h.(LengthLimited)
	assert.False(t, limited)

	long := strings.Repeat("x", 200)
	hash, err := h.Hash(long)
	require.NoError(t, err)
	assert.True(t, h.Matches(long, hash))
}
