// Package migrations embeds the PostgreSQL schema migrations applied at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
