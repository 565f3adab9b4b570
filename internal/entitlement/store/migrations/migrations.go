// Package migrations embeds the schema of every SQL backend.
package migrations

import "embed"

// SQLite contains the SQLite schema migrations.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres contains the Postgres schema migrations.
//
//go:embed postgres/*.sql
var Postgres embed.FS
