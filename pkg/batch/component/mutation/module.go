package mutation

import "go.uber.org/fx"

// Module provides Ops.
var Module = fx.Options(
	fx.Provide(NewOps),
)
