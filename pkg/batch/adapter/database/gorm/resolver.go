package gorm

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

// GormDBConnectionResolver is the GORM implementation of database.DBConnectionResolver.
type GormDBConnectionResolver struct {
	dbProviders map[string]database.DBProvider // keyed by database type
	cfg         *config.Config
}

// ResolverParams defines the dependencies for creating a GormDBConnectionResolver.
type ResolverParams struct {
	fx.In
	DBProviders []database.DBProvider `group:"db_providers"`
	Cfg         *config.Config
}

// NewGormDBConnectionResolver creates a new GormDBConnectionResolver.
func NewGormDBConnectionResolver(p ResolverParams) *GormDBConnectionResolver {
	providerMap := make(map[string]database.DBProvider)
	for _, provider := range p.DBProviders {
		providerMap[provider.Type()] = provider
	}

	return &GormDBConnectionResolver{
		dbProviders: providerMap,
		cfg:         p.Cfg,
	}
}

// ResolveDBConnection resolves a database connection with the specified name.
// A connection that no longer answers a ping is re-established once.
func (r *GormDBConnectionResolver) ResolveDBConnection(ctx context.Context, name string) (database.DBConnection, error) {
	dbConfig, err := DecodeDatabaseConfig(r.cfg, name)
	if err != nil {
		return nil, err
	}

	provider, ok := r.dbProviders[dbConfig.Type]
	if !ok {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
			"no DBProvider for type '%s' (connection '%s')", dbConfig.Type, name)
	}

	conn, err := provider.GetConnection(name)
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.GetSQLDB()
	if err != nil {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindPersistence, "connection '%s' has no sql.DB", name, err)
	}

	if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		logger.Warnf("DBConnectionResolver: Connection '%s' is invalid (%v). Attempting to reconnect.", name, pingErr)
		reconnectedConn, reconnectErr := provider.ForceReconnect(name)
		if reconnectErr != nil {
			return nil, exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to reconnect '%s'", name, reconnectErr)
		}
		logger.Infof("DBConnectionResolver: Successfully reconnected connection '%s'.", name)
		return reconnectedConn, nil
	}

	return conn, nil
}

// CloseAll closes the connections of every provider.
func (r *GormDBConnectionResolver) CloseAll() error {
	var errs error
	for _, p := range r.dbProviders {
		errs = exception.Append(errs, p.CloseAll())
	}
	return errs
}
