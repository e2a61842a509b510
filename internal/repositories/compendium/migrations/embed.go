package migrations

import "embed"

// FS contains the embedded compendium migrations.
//
//go:embed *.sql
var FS embed.FS
