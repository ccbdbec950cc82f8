// Package authctl implements the provisioning CLI: it registers users and
// performs logins directly against the configured storage, without going
// through the HTTP API.
package authctl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/dmitrijs2005/league-auth/internal/common"
	"github.com/dmitrijs2005/league-auth/internal/logging"
	"github.com/dmitrijs2005/league-auth/internal/server"
	"github.com/dmitrijs2005/league-auth/internal/server/config"
	"github.com/dmitrijs2005/league-auth/internal/server/services"
	"github.com/spf13/pflag"
)

// AuthService is the part of services.UserService the CLI drives.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) error
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
}

type App struct {
	users  AuthService
	reader *bufio.Reader
	out    io.Writer
	fd     int
}

func NewApp(users AuthService, in io.Reader, out io.Writer, fd int) *App {
	return &App{users: users, reader: bufio.NewReader(in), out: out, fd: fd}
}

const usage = `usage: authctl <command> [flags]

commands:
  register -u NAME -e EMAIL   create a user (password is prompted)
  login -u NAME               log in and print the issued tokens
`

// Main loads configuration, opens storage and runs the command in args.
// It returns the process exit code.
func Main(ctx context.Context, args []string, stdin *os.File, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, rest := args[0], args[1:]

	fs := pflag.NewFlagSet("authctl "+cmd, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.StringP("config", "c", "", "path to config file (JSON or YAML)")
	username := fs.StringP("username", "u", "", "user name")
	email := fs.StringP("email", "e", "", "email (register only)")
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	var cfgArgs []string
	if *configPath != "" {
		cfgArgs = []string{"--config", *configPath}
	}
	cfg, err := config.Load("authctl", cfgArgs)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger := logging.New(stderr, "text", cfg.LogLevel)

	st, err := server.OpenStorage(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = st.Close() }()

	users, _, err := server.NewUserService(cfg, st, logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	app := NewApp(users, stdin, stdout, int(stdin.Fd()))
	if err := app.Run(ctx, cmd, *username, *email); err != nil {
		fmt.Fprintln(stderr, describe(err))
		return 1
	}
	return 0
}

// Run executes a single command. Missing username or email are prompted for.
func (a *App) Run(ctx context.Context, cmd, username, email string) error {
	switch cmd {
	case "register":
		return a.Register(ctx, username, email)
	case "login":
		return a.Login(ctx, username)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) Register(ctx context.Context, username, email string) error {
	username, err := a.orPrompt(username, "Enter user name")
	if err != nil {
		return err
	}
	email, err = a.orPrompt(email, "Enter email")
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, a.fd)
	if err != nil {
		return err
	}

	if err := a.users.Register(ctx, username, email, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "User registered successfully")
	return nil
}

func (a *App) Login(ctx context.Context, username string) error {
	username, err := a.orPrompt(username, "Enter user name")
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, a.fd)
	if err != nil {
		return err
	}

	pair, err := a.users.Login(ctx, username, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "role:          %s\naccess token:  %s\nrefresh token: %s\n",
		pair.Role, pair.AccessToken, pair.RefreshToken)
	return nil
}

func (a *App) orPrompt(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	return GetSimpleText(a.reader, prompt, a.out)
}

// describe turns service errors into operator-facing messages.
func describe(err error) string {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		parts := make([]string, 0, len(ve.Fields))
		for _, field := range slices.Sorted(maps.Keys(ve.Fields)) {
			parts = append(parts, field+" "+ve.Fields[field])
		}
		return "invalid input: " + strings.Join(parts, ", ")
	case errors.Is(err, common.ErrUserAlreadyExists):
		return "User already exists"
	case errors.Is(err, common.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid credentials"
	default:
		return err.Error()
	}
}
