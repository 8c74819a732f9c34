// Package migrations embeds the SQL schema applied by cmd/migrate and AUTO_MIGRATE.
package migrations

import "embed"

// Files holds every *.sql migration.
//
//go:embed *.sql
var Files embed.FS
