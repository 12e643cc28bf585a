// Package migrations embeds the dataset schema into the binary so a fresh
// SQLite file can be created without the SQL files on disk.
package migrations

import "embed"

// FS holds the schema migrations at its root, in the layout
// database.Config.Migrations expects.
//
//go:embed *.sql
var FS embed.FS
