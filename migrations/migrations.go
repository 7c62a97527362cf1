// Package migrations embeds the SQL schema applied at start-up.
package migrations

import "embed"

// FS holds every *.up.sql migration, applied in file name order.
//
//go:embed *.sql
var FS embed.FS
