// Package migrations embeds the goose SQL migrations for each supported
// database dialect.
package migrations

import "embed"

// Migrations holds one directory per dialect: "postgres" and "sqlite".
//
//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
