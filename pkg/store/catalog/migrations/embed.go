// Package migrations embeds the catalog schema migration files.
package migrations

import "embed"

// FS contains the SQL migration files applied by golang-migrate.
//
//go:embed *.sql
var FS embed.FS
