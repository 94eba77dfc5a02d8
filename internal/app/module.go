// Package app wires the uploader application together with uber-fx.
package app

import (
	"go.uber.org/fx"

	gormadapter "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/gorm"
	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/gorm/mysql"
	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/gorm/postgres"
	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/gorm/sqlite"
	storageAdapter "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/storage"
	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/storage/gcs"
	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/storage/local"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/manipulator"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/mutation"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/step/writer"
	migration "github.com/tigerroll/surfin-transporter/pkg/batch/component/tasklet/migration"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/uploader"
	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/engine/upload"
	infraMetrics "github.com/tigerroll/surfin-transporter/pkg/batch/infrastructure/metrics"
	gormRepository "github.com/tigerroll/surfin-transporter/pkg/batch/infrastructure/repository/gorm"
	"github.com/tigerroll/surfin-transporter/pkg/batch/listener/logging"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

// DatabaseModule provides the connection resolver and every SQL dialect.
var DatabaseModule = fx.Options(
	gormadapter.Module,
	mysql.Module,
	postgres.Module,
	sqlite.Module,
)

// StorageModule provides the storage resolver with the local and GCS adapters.
var StorageModule = fx.Options(
	storageAdapter.Module,
	local.Module,
	gcs.Module,
)

// Module aggregates everything an upload run needs, except the run hook itself.
// Migrations are listed before the repositories so that their start hook runs first.
var Module = fx.Options(
	logger.Module,
	config.Module,
	DatabaseModule,
	migration.Module,
	gormRepository.Module,
	StorageModule,
	infraMetrics.Module,
	mutation.Module,
	uploader.Module,
	manipulator.Module,
	upload.Module,
	logging.Module,
	writer.Module,
)
