// Package database declares the connection abstractions shared by the GORM providers.
package database

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/config"
)

// DBConnection represents one named, open database connection.
type DBConnection interface {
	// Name returns the key of the connection under `surfin.database`.
	Name() string
	// Type returns the database type (e.g., "postgres", "mysql", "sqlite").
	Type() string
	// Config returns the database configuration associated with this connection.
	Config() dbconfig.DatabaseConfig
	// GormDB returns the GORM handle repositories work with.
	GormDB() *gorm.DB
	// GetSQLDB returns the underlying *sql.DB connection.
	GetSQLDB() (*sql.DB, error)
	// Close closes the connection.
	Close() error
}

// DBConnectionResolver resolves named connections, re-establishing them when they went stale.
type DBConnectionResolver interface {
	ResolveDBConnection(ctx context.Context, name string) (DBConnection, error)
}

// DBProvider is responsible for providing database connections of one type.
type DBProvider interface {
	// GetConnection retrieves a database connection with the specified name.
	GetConnection(name string) (DBConnection, error)
	// CloseAll closes all connections managed by this provider.
	CloseAll() error
	// Type returns the database type handled by this provider.
	Type() string
	// ForceReconnect forces the closure and re-establishment of an existing connection with the specified name.
	ForceReconnect(name string) (DBConnection, error)
}

// DBProviderGroup is an Fx tag used to group all DBProvider implementations.
const DBProviderGroup = `group:"db_providers"`
