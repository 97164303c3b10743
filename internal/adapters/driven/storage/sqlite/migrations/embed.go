// Package migrations embeds the SQL schema for the SQLite store.
package migrations

import "embed"

// FS contains every migration, applied in file name order.
//
//go:embed *.sql
var FS embed.FS
