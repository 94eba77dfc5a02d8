// Package filesystem embeds the catalog schema migrations, one directory per database type.
package filesystem

import (
	"embed"
	"io/fs"

	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

//go:embed resource
var rawCatalogMigrationFS embed.FS

// ProvideCatalogMigrationsFS returns the embedded migrations rooted at the
// per-dialect directories ("sqlite", "mysql", "postgres").
func ProvideCatalogMigrationsFS() fs.FS {
	subFS, err := fs.Sub(rawCatalogMigrationFS, "resource")
	if err != nil {
		logger.Fatalf("Failed to create subdirectory for catalog migration FS: %v", err)
	}
	return subFS
}
