package uploader

import "go.uber.org/fx"

// Module provides the uploader Registry. Additional kinds are contributed as
// Registration values in the uploader_factories group.
var Module = fx.Options(
	fx.Provide(NewRegistry),
)
