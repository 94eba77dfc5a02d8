package filesystem

import (
	"go.uber.org/fx"
)

// CatalogMigrationsFSTag is the Fx tag for the embedded catalog migrations filesystem.
const CatalogMigrationsFSTag = `name:"catalogMigrationsFS"`

// Module provides the embedded migrations filesystem.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		ProvideCatalogMigrationsFS,
		fx.ResultTags(CatalogMigrationsFSTag),
	)),
)
