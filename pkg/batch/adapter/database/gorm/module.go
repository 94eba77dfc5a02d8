package gorm

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

// Module exports the connection resolver. Concrete providers come from the
// mysql, postgres and sqlite sub-packages.
var Module = fx.Options(
	fx.Provide(NewGormDBConnectionResolver),
	fx.Provide(fx.Annotate(
		func(r *GormDBConnectionResolver) *GormDBConnectionResolver { return r },
		fx.As(new(database.DBConnectionResolver)),
	)),
	fx.Invoke(func(lc fx.Lifecycle, r *GormDBConnectionResolver) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				logger.Debugf("Closing database connections.")
				return r.CloseAll()
			},
		})
	}),
)
