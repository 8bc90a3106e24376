// Package migrations embeds the SQL schema applied at startup.
package migrations

import "embed"

//go:embed *.sql
var MigrationsFS embed.FS
