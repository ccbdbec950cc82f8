package authctl

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/league-auth/internal/common"
	"github.com/dmitrijs2005/league-auth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	registered []string
	loginErr   error
}

func (f *fakeUsers) Register(_ context.Context, username, email, _ string) error {
	f.registered = append(f.registered, username+"|"+email)
	return nil
}

func (f *fakeUsers) Login(_ context.Context, username, _ string) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.TokenPair{AccessToken: "acc-" + username, RefreshToken: "ref", Role: "USER"}, nil
}

func TestApp_RegisterPromptsForMissingValues(t *testing.T) {
	stubPassword(t, "pw123", nil)
	users := &fakeUsers{}
	var out bytes.Buffer

	app := NewApp(users, strings.NewReader("alice\nalice@x.com\n"), &out, 0)
	require.NoError(t, app.Run(context.Background(), "register", "", ""))

	assert.Equal(t, []string{"alice|alice@x.com"}, users.registered)
	assert.Contains(t, out.String(), "User registered successfully")
}

func TestApp_LoginPrintsTokens(t *testing.T) {
	stubPassword(t, "pw123", nil)
	var out bytes.Buffer

	app := NewApp(&fakeUsers{}, strings.NewReader(""), &out, 0)
	require.NoError(t, app.Run(context.Background(), "login", "bob", ""))

	assert.Contains(t, out.String(), "access token:  acc-bob")
	assert.Contains(t, out.String(), "role:          USER")
}

func TestApp_Errors(t *testing.T) {
	stubPassword(t, "pw123", nil)
	var out bytes.Buffer

	app := NewApp(&fakeUsers{loginErr: common.ErrInvalidCredentials}, strings.NewReader(""), &out, 0)
	err := app.Run(context.Background(), "login", "bob", "")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	assert.ErrorContains(t, app.Run(context.Background(), "delete", "", ""), "unknown command")
}

func TestDescribe(t *testing.T) {
	ve := &common.ValidationError{}
	ve.Add("username", "must not be blank")
	ve.Add("email", "must not be blank")

	assert.Equal(t, "invalid input: email must not be blank, username must not be blank", describe(ve))
	assert.Equal(t, "User already exists", describe(common.ErrUserAlreadyExists))
	assert.Equal(t, "User not found", describe(common.ErrUserNotFound))
	assert.Equal(t, "boom", describe(errors.New("boom")))
}

func stdinFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestMain_RegisterThenLoginAgainstSQLite(t *testing.T) {
	t.Setenv("LEAGUE_AUTH_STORAGE_DRIVER", "sqlite")
	t.Setenv("LEAGUE_AUTH_SQLITE_PATH", filepath.Join(t.TempDir(), "auth.db"))
	t.Setenv("LEAGUE_AUTH_BCRYPT_COST", "4")
	t.Setenv("LEAGUE_AUTH_LOG_LEVEL", "error")
	stubPassword(t, "pw123", nil)
	ctx := context.Background()

	var out, errOut bytes.Buffer
	code := Main(ctx, []string{"register", "-u", "alice", "-e", "alice@x.com"}, stdinFile(t, ""), &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	out.Reset()
	code = Main(ctx, []string{"register", "-u", "alice", "-e", "other@x.com"}, stdinFile(t, ""), &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "User already exists")

	out.Reset()
	code = Main(ctx, []string{"login", "-u", "alice"}, stdinFile(t, ""), &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "role:          USER")
	assert.Contains(t, out.String(), "refresh token: ")
}

func TestMain_Usage(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, Main(context.Background(), nil, stdinFile(t, ""), &out, &errOut))
	assert.Contains(t, errOut.String(), "usage: authctl")

	errOut.Reset()
	assert.Equal(t, 2, Main(context.Background(), []string{"login", "--nope"}, stdinFile(t, ""), &out, &errOut))
}

func TestMain_BadConfig(t *testing.T) {
	t.Setenv("LEAGUE_AUTH_STORAGE_DRIVER", "mongo")
	var out, errOut bytes.Buffer
	assert.Equal(t, 1, Main(context.Background(), []string{"login", "-u", "a"}, stdinFile(t, ""), &out, &errOut))
	assert.Contains(t, errOut.String(), "unknown storage_driver")
}
