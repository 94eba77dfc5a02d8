// Package gorm provides GORM-backed implementations of the upload collaborators.
// Every repository resolves its connection by name on each call, so a
// connection re-established by the resolver is picked up transparently.
package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

const moduleName = "repository"

// connectionSource resolves the *gorm.DB of one named connection.
type connectionSource struct {
	dbResolver database.DBConnectionResolver
	dbName     string
}

func newConnectionSource(dbResolver database.DBConnectionResolver, dbName string) connectionSource {
	return connectionSource{dbResolver: dbResolver, dbName: dbName}
}

func (s connectionSource) db(ctx context.Context) (*gorm.DB, error) {
	conn, err := s.dbResolver.ResolveDBConnection(ctx, s.dbName)
	if err != nil {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to resolve DB connection '%s'", s.dbName, err)
	}
	return conn.GormDB().WithContext(ctx), nil
}

func persistenceError(format string, args ...interface{}) error {
	return exception.NewUploadErrorf(moduleName, exception.KindPersistence, format, args...)
}

// exists reports whether any row of model matches the condition. Updates use it
// to tell a missing row from an unchanged one, since MySQL without
// clientFoundRows counts only changed rows.
func exists(db *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
