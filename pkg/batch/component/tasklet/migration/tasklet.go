package migration

import (
	"context"
	"io/fs"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	gormadapter "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/gorm"
	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

// MigrationTasklet applies the embedded catalog schema to a named connection
// before the upload run starts.
type MigrationTasklet struct {
	cfg              *config.Config
	providers        map[string]database.DBProvider
	migratorProvider MigratorProvider
	migrationFS      fs.FS

	dbConnectionName string
	migrationTable   string
	command          string
}

// NewMigrationTasklet creates a MigrationTasklet for the catalog connection named
// by `surfin.infrastructure.catalog_db_ref`.
func NewMigrationTasklet(
	cfg *config.Config,
	providers []database.DBProvider,
	migratorProvider MigratorProvider,
	migrationFS fs.FS,
	command string,
) (*MigrationTasklet, error) {
	if cfg.Surfin.Infrastructure.CatalogDBRef == "" {
		return nil, exception.NewUploadError(moduleName, exception.KindConfiguration, "surfin.infrastructure.catalog_db_ref is required for migrations", nil)
	}
	if command == "" {
		command = commandUp
	}
	if command != commandUp && command != commandDown {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "unknown migration command: %s", command)
	}
	table := cfg.Surfin.Infrastructure.MigrationsTable
	if table == "" {
		table = "schema_migrations"
	}

	providerMap := make(map[string]database.DBProvider, len(providers))
	for _, p := range providers {
		providerMap[p.Type()] = p
	}

	return &MigrationTasklet{
		cfg:              cfg,
		providers:        providerMap,
		migratorProvider: migratorProvider,
		migrationFS:      migrationFS,
		dbConnectionName: cfg.Surfin.Infrastructure.CatalogDBRef,
		migrationTable:   table,
		command:          command,
	}, nil
}

// Execute runs the migration command against a freshly opened connection and
// re-establishes the connection afterwards, so later resolutions see a live pool.
func (t *MigrationTasklet) Execute(ctx context.Context) error {
	dbConfig, err := gormadapter.DecodeDatabaseConfig(t.cfg, t.dbConnectionName)
	if err != nil {
		return err
	}

	provider, ok := t.providers[dbConfig.Type]
	if !ok {
		return exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "DBProvider for type '%s' not found", dbConfig.Type)
	}

	logger.Infof("Starting database migration '%s' for DB connection '%s' (%s).", t.command, t.dbConnectionName, dbConfig.Type)

	dbConn, err := provider.ForceReconnect(t.dbConnectionName)
	if err != nil {
		return err
	}

	migrator := t.migratorProvider.NewMigrator(dbConn)
	switch t.command {
	case commandUp:
		err = migrator.Up(ctx, t.migrationFS, dbConfig.Type, t.migrationTable)
	case commandDown:
		err = migrator.Down(ctx, t.migrationFS, dbConfig.Type, t.migrationTable)
	}
	if err != nil {
		return err
	}

	if _, err := provider.ForceReconnect(t.dbConnectionName); err != nil {
		return exception.NewUploadError(moduleName, exception.KindPersistence, "failed to reconnect after migration", err)
	}
	return nil
}
