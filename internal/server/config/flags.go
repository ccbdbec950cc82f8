package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const flagConfig = "config"

// flagKeys maps long flag names to config keys.
var flagKeys = map[string]string{
	"http-addr":       "http_addr",
	"storage":         "storage_driver",
	"dsn":             "database_dsn",
	"sqlite-path":     "sqlite_path",
	"redis-addr":      "redis_addr",
	"secret":          "secret_key",
	"issuer":          "issuer",
	"access-ttl":      "access_token_validity_duration",
	"refresh-ttl":     "refresh_token_validity_duration",
	"password-hasher": "password_hasher",
	"bcrypt-cost":     "bcrypt_cost",
	"log-level":       "log_level",
	"log-format":      "log_format",
}

// newFlagSet declares the supported flags.
//
//	-c, --config string       JSON or YAML config file
//	-a, --http-addr string    HTTP bind address (e.g. ":8080")
//	    --storage string      postgres | sqlite | memory
//	-d, --dsn string          PostgreSQL DSN
//	    --sqlite-path string  SQLite database file
//	    --redis-addr string   Redis address for refresh tokens
//	-s, --secret string       JWT HMAC secret key
//	-t, --access-ttl dur      access token validity (e.g. 15m)
//	-r, --refresh-ttl dur     refresh token validity (e.g. 168h)
//
// Only flags set explicitly override lower layers; defaults shown in help
// are the built-in ones.
func newFlagSet(name string, d *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	fs.StringP(flagConfig, "c", "", "path to a JSON or YAML config file")
	fs.StringP("http-addr", "a", d.HTTPAddr, "address and port to run server")
	fs.String("storage", d.StorageDriver, "storage driver: postgres, sqlite or memory")
	fs.StringP("dsn", "d", d.DatabaseDSN, "database DSN")
	fs.String("sqlite-path", d.SQLitePath, "sqlite database file")
	fs.String("redis-addr", d.RedisAddr, "redis address for refresh tokens (optional)")
	fs.StringP("secret", "s", d.SecretKey, "secret key")
	fs.String("issuer", d.Issuer, "access token issuer")
	fs.DurationP("access-ttl", "t", d.AccessTokenValidityDuration, "access token validity")
	fs.DurationP("refresh-ttl", "r", d.RefreshTokenValidityDuration, "refresh token validity")
	fs.String("password-hasher", d.PasswordHasher, "password hasher: bcrypt or argon2id")
	fs.Int("bcrypt-cost", d.BcryptCost, "bcrypt cost")
	fs.String("log-level", d.LogLevel, "log level")
	fs.String("log-format", d.LogFormat, "log format: json or text")

	return fs
}

// bindFlags wires every flag into v under its config key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}
