package gorm

import (
	"context"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

// EntityRepository reads staged entities from transporter_entity.
type EntityRepository struct {
	connectionSource
}

// NewEntityRepository creates an EntityRepository on the named connection.
func NewEntityRepository(dbResolver database.DBConnectionResolver, dbName string) *EntityRepository {
	return &EntityRepository{connectionSource: newConnectionSource(dbResolver, dbName)}
}

// GetAllByActivityGroupedByIdentifier loads the activity's entities in insertion
// order and groups them by identifier.
func (r *EntityRepository) GetAllByActivityGroupedByIdentifier(ctx context.Context, activityID int64) (model.ActivityBatch, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	var records []EntityRecord
	if err := db.Where("activity_id = ?", activityID).Order("id").Find(&records).Error; err != nil {
		return nil, persistenceError("failed to load entities of activity %d", activityID, err)
	}

	entities := make([]*model.Entity, 0, len(records))
	for i := range records {
		entities = append(entities, toDomainEntity(&records[i]))
	}
	return model.NewActivityBatch(entities), nil
}

// UpdateManipulated stores entity.DataManipulated. Rewriting an unchanged
// payload succeeds.
func (r *EntityRepository) UpdateManipulated(ctx context.Context, entity *model.Entity) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&EntityRecord{}).Where("id = ?", entity.ID).Update("data_manipulated", entity.DataManipulated)
	if result.Error != nil {
		return persistenceError("failed to update entity %d", entity.ID, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	found, err := exists(db, &EntityRecord{}, "id = ?", entity.ID)
	if err != nil {
		return persistenceError("failed to look up entity %d", entity.ID, err)
	}
	if !found {
		return exception.NewUploadErrorf(moduleName, exception.KindNotFound, "entity %d not found", entity.ID)
	}
	return nil
}
