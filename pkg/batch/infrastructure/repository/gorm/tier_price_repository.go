package gorm

import (
	"context"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
)

// TierPriceRepository implements port.TierPriceRepository over catalog_tier_price.
type TierPriceRepository struct {
	connectionSource
}

// NewTierPriceRepository creates a TierPriceRepository on the named connection.
func NewTierPriceRepository(dbResolver database.DBConnectionResolver, dbName string) *TierPriceRepository {
	return &TierPriceRepository{connectionSource: newConnectionSource(dbResolver, dbName)}
}

func (r *TierPriceRepository) DeleteBySku(ctx context.Context, sku string) (int64, error) {
	db, err := r.db(ctx)
	if err != nil {
		return 0, err
	}
	result := db.Where("sku = ?", sku).Delete(&TierPriceRecord{})
	if result.Error != nil {
		return 0, persistenceError("failed to delete tier prices of '%s'", sku, result.Error)
	}
	return result.RowsAffected, nil
}
