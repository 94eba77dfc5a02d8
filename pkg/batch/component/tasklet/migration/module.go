// Package migration applies the catalog schema with golang-migrate.
package migration

import (
	"context"
	"io/fs"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/tasklet/migration/filesystem"
	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

// MigrationTaskletParams defines the dependencies for the startup migration.
type MigrationTaskletParams struct {
	fx.In
	Cfg              *config.Config
	DBProviders      []database.DBProvider `group:"db_providers"`
	MigratorProvider MigratorProvider
	MigrationFS      fs.FS `name:"catalogMigrationsFS"`
}

// NewMigrationTaskletFromParams builds the "up" MigrationTasklet.
func NewMigrationTaskletFromParams(p MigrationTaskletParams) (*MigrationTasklet, error) {
	return NewMigrationTasklet(p.Cfg, p.DBProviders, p.MigratorProvider, p.MigrationFS, commandUp)
}

// runOnStart applies migrations during application start when
// `surfin.infrastructure.migrate_on_start` is set.
func runOnStart(lc fx.Lifecycle, cfg *config.Config, t *MigrationTasklet) {
	if !cfg.Surfin.Infrastructure.MigrateOnStart {
		logger.Debugf("Schema migration on start is disabled.")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return t.Execute(ctx)
		},
	})
}

// Module provides the migration tasklet and registers it as a start hook.
var Module = fx.Options(
	filesystem.Module,
	fx.Provide(NewMigratorProvider),
	fx.Provide(NewMigrationTaskletFromParams),
	fx.Invoke(runOnStart),
)
