package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	dbconfig "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/gorm"
	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/gorm/sqlite"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/tasklet/migration"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/tasklet/migration/filesystem"
	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
)

// TestDBName is the connection name used by the helpers below.
const TestDBName = "catalog"

// StaticConnectionResolver always resolves to the same connection.
type StaticConnectionResolver struct {
	Conn database.DBConnection
}

// NewStaticConnectionResolver returns a resolver for conn.
func NewStaticConnectionResolver(conn database.DBConnection) database.DBConnectionResolver {
	return &StaticConnectionResolver{Conn: conn}
}

func (r *StaticConnectionResolver) ResolveDBConnection(ctx context.Context, name string) (database.DBConnection, error) {
	return r.Conn, nil
}

// NewSQLMockConnection wraps a go-sqlmock database in a MySQL-flavoured GORM connection.
func NewSQLMockConnection(t *testing.T) (database.DBConnection, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gorm_logger.Default.LogMode(gorm_logger.Silent)})
	require.NoError(t, err)

	t.Cleanup(func() { sqlDB.Close() })
	return gormadapter.NewGormConnection(gormDB, dbconfig.DatabaseConfig{Type: "mysql"}, TestDBName), mock
}

// NewMigratedSQLiteConnection opens a file-backed SQLite database in a temp
// directory and applies the catalog migrations to it.
func NewMigratedSQLiteConnection(t *testing.T) database.DBConnection {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Surfin.Infrastructure.CatalogDBRef = TestDBName
	cfg.Surfin.AdapterConfigs[TestDBName] = SQLiteAdapterConfig(filepath.Join(t.TempDir(), "catalog.db"))
	return MigrateSQLite(t, cfg)
}

// SQLiteAdapterConfig is the surfin.database entry of a single-connection SQLite file.
func SQLiteAdapterConfig(path string) map[string]interface{} {
	return map[string]interface{}{
		"type":     "sqlite",
		"database": path,
		"pool": map[string]interface{}{
			"max_open_conns": 1,
		},
	}
}

// MigrateSQLite applies the catalog migrations to the SQLite connection named
// by cfg's catalog_db_ref and returns that connection. It is closed when the
// test ends.
func MigrateSQLite(t *testing.T, cfg *config.Config) database.DBConnection {
	t.Helper()
	provider := sqlite.NewProvider(cfg)
	t.Cleanup(func() { provider.CloseAll() })

	tasklet, err := migration.NewMigrationTasklet(cfg, []database.DBProvider{provider}, migration.NewMigratorProvider(), filesystem.ProvideCatalogMigrationsFS(), "up")
	require.NoError(t, err)
	require.NoError(t, tasklet.Execute(context.Background()))

	conn, err := provider.GetConnection(cfg.Surfin.Infrastructure.CatalogDBRef)
	require.NoError(t, err)
	return conn
}
