package db

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsFS returns the embedded migration files rooted at the
// directory golang-migrate expects.
func MigrationsFS() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		// The subdirectory is part of the binary; a failure here is a
		// build defect, not a runtime condition.
		panic(err)
	}
	return sub
}
