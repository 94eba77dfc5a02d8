package gorm

import (
	"context"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
)

// UrlRewriteRepository implements port.URLRewriteRepository over url_rewrite.
type UrlRewriteRepository struct {
	connectionSource
}

// NewUrlRewriteRepository creates a UrlRewriteRepository on the named connection.
func NewUrlRewriteRepository(dbResolver database.DBConnectionResolver, dbName string) *UrlRewriteRepository {
	return &UrlRewriteRepository{connectionSource: newConnectionSource(dbResolver, dbName)}
}

func (r *UrlRewriteRepository) FindByRequestPath(ctx context.Context, requestPath string) ([]model.UrlRewrite, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	var records []UrlRewriteRecord
	if err := db.Where("request_path = ?", requestPath).Order("id").Find(&records).Error; err != nil {
		return nil, persistenceError("failed to look up request path '%s'", requestPath, err)
	}
	rewrites := make([]model.UrlRewrite, len(records))
	for i := range records {
		rewrites[i] = toDomainUrlRewrite(&records[i])
	}
	return rewrites, nil
}

// Delete removes the rewrite by ID. Deleting an already removed rewrite is not an error.
func (r *UrlRewriteRepository) Delete(ctx context.Context, rewrite model.UrlRewrite) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}
	if err := db.Where("id = ?", rewrite.ID).Delete(&UrlRewriteRecord{}).Error; err != nil {
		return persistenceError("failed to delete url rewrite %d", rewrite.ID, err)
	}
	return nil
}
