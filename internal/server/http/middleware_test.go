package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/league-auth/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginAlice(t *testing.T, api *testAPI) AuthResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/auth/register", alice).Code)
	w := api.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "pw123"})
	require.Equal(t, http.StatusOK, w.Code)
	return decode[AuthResponse](t, w)
}

func TestMe_ValidToken(t *testing.T) {
	api := newTestAPI(t)
	login := loginAlice(t, api)

	w := api.do(t, http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer "+login.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	me := decode[meResponse](t, w)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "USER", me.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), me.ExpiresAt, time.Minute)
}

// flipLast returns a base64url character different from tok's last one.
func flipLast(tok string) string {
	if tok[len(tok)-1] == 'A' {
		return "B"
	}
	return "A"
}

func TestMe_ExpiryMatchesTokenClaims(t *testing.T) {
	api := newTestAPI(t)
	login := loginAlice(t, api)

	want, err := api.tokens.ExtractExpiry(login.Token)
	require.NoError(t, err)

	w := api.do(t, http.MethodGet, "/api/auth/me", nil, "Authorization", "Bearer "+login.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, want.Equal(decode[meResponse](t, w).ExpiresAt))
}

func TestMe_Rejections(t *testing.T) {
	api := newTestAPI(t)
	login := loginAlice(t, api)

	past := time.Now().Add(-2 * time.Hour)
	stale, err := auth.NewTokenIssuer([]byte(testSecret), time.Hour, auth.WithClock(func() time.Time { return past }))
	require.NoError(t, err)
	expired, err := stale.Issue("alice", "USER")
	require.NoError(t, err)

	other, err := auth.NewTokenIssuer([]byte("anotherSecretKey0123456789012345678901234567890123"), time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue("alice", "ADMIN")
	require.NoError(t, err)

	elsewhere, err := auth.NewTokenIssuer([]byte(testSecret), time.Hour, auth.WithIssuer("someone-else"))
	require.NoError(t, err)
	wrongIssuer, err := elsewhere.Issue("alice", "USER")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{name: "no header", header: "", wantMsg: "missing token"},
		{name: "not bearer", header: "Basic abc", wantMsg: "missing token"},
		{name: "malformed", header: "Bearer not-a-jwt", wantMsg: "Malformed access token"},
		{name: "expired", header: "Bearer " + expired, wantMsg: "Access token expired"},
		{name: "wrong secret", header: "Bearer " + foreign, wantMsg: "Invalid access token signature"},
		{name: "wrong issuer", header: "Bearer " + wrongIssuer, wantMsg: "Invalid access token"},
		{name: "tampered signature", header: "Bearer " + login.Token[:len(login.Token)-1] + flipLast(login.Token), wantMsg: "Invalid access token signature"},
		{name: "refresh token as bearer", header: "Bearer " + login.RefreshToken, wantMsg: "Malformed access token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hdr []string
			if tt.header != "" {
				hdr = []string{"Authorization", tt.header}
			}
			w := api.do(t, http.MethodGet, "/api/auth/me", nil, hdr...)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.wantMsg, decode[map[string]string](t, w)["error"])
		})
	}
}
