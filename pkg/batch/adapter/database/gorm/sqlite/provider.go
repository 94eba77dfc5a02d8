// Package sqlite provides a GORM DBProvider implementation for SQLite databases.
package sqlite

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	dbconfig "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/gorm"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

const dbType = "sqlite"

func init() {
	gormadapter.RegisterDialector(dbType, func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, exception.NewUploadError("database", exception.KindConfiguration, "SQLite database path cannot be empty", nil)
		}
		return sqlite.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString returns the file path, or ":memory:", of the SQLite database.
// Foreign keys are enabled for file databases.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	if c.Database == ":memory:" {
		return c.Database
	}
	return c.Database + "?_foreign_keys=on"
}

// SQLiteDBProvider implements database.DBProvider for SQLite connections.
type SQLiteDBProvider struct {
	*gormadapter.BaseProvider
}

// NewProvider creates a new database.DBProvider for SQLite.
func NewProvider(cfg *config.Config) database.DBProvider {
	return &SQLiteDBProvider{BaseProvider: gormadapter.NewBaseProvider(cfg, dbType)}
}
