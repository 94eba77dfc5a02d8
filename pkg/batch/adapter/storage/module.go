package storage

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the StorageConnectionResolver. Providers come from the
// local and gcs sub-packages.
var Module = fx.Options(
	fx.Provide(NewConnectionResolver),
	fx.Provide(fx.Annotate(
		func(r *ConnectionResolver) *ConnectionResolver { return r },
		fx.As(new(StorageConnectionResolver)),
	)),
	fx.Invoke(func(lc fx.Lifecycle, r *ConnectionResolver) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error { return r.CloseAll() },
		})
	}),
)
