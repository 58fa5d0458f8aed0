// Package migrations embeds the schema migrations for each supported database.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// SQLite returns the SQLite migrations rooted at their directory.
func SQLite() fs.FS {
	sub, _ := fs.Sub(files, "sqlite")
	return sub
}

// Postgres returns the PostgreSQL migrations rooted at their directory.
func Postgres() fs.FS {
	sub, _ := fs.Sub(files, "postgres")
	return sub
}
