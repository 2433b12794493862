package migrations

import "embed"

// MigrationsFS embeds all SQL migration files so the binary can run
// migrations without access to the source tree.
//
//go:embed *.sql
var MigrationsFS embed.FS
