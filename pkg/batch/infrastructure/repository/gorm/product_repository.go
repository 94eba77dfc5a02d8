package gorm

import (
	"context"
	"database/sql"
	"time"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

// productColumns are the attributes readable without a catalog_product_attribute row.
var productColumns = map[string]string{
	"name":    "name",
	"url_key": "url_key",
	"type_id": "type_id",
}

// ProductRepository implements port.ProductRepository and port.AttributeReader.
type ProductRepository struct {
	connectionSource
}

// NewProductRepository creates a ProductRepository on the named connection.
func NewProductRepository(dbResolver database.DBConnectionResolver, dbName string) *ProductRepository {
	return &ProductRepository{connectionSource: newConnectionSource(dbResolver, dbName)}
}

func (r *ProductRepository) Get(ctx context.Context, sku string) (*model.Product, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	var record ProductRecord
	if err := db.Where("sku = ?", sku).Take(&record).Error; err != nil {
		if isNotFound(err) {
			return nil, exception.NewUploadErrorf(moduleName, exception.KindNotFound, "product '%s' not found", sku)
		}
		return nil, persistenceError("failed to load product '%s'", sku, err)
	}
	return toDomainProduct(&record), nil
}

// Save writes the price fields of p. A nil special price is stored as NULL; a
// nil special date bound leaves the stored bound as it is.
func (r *ProductRepository) Save(ctx context.Context, p *model.Product) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	record := ProductRecord{
		Price:           p.Price,
		SpecialPrice:    p.SpecialPrice,
		SpecialFromDate: p.SpecialFromDate,
		SpecialToDate:   p.SpecialToDate,
		UpdatedAt:       &now,
	}
	columns := []interface{}{"special_price", "updated_at"}
	if p.SpecialFromDate != nil {
		columns = append(columns, "special_from_date")
	}
	if p.SpecialToDate != nil {
		columns = append(columns, "special_to_date")
	}
	result := db.Model(&ProductRecord{}).
		Where("id = ?", p.ID).
		Select("price", columns...).
		Updates(&record)
	if result.Error != nil {
		return persistenceError("failed to save product '%s'", p.SKU, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	found, err := exists(db, &ProductRecord{}, "id = ?", p.ID)
	if err != nil {
		return persistenceError("failed to look up product '%s'", p.SKU, err)
	}
	if !found {
		return exception.NewUploadErrorf(moduleName, exception.KindNotFound, "product '%s' (ID: %d) not found", p.SKU, p.ID)
	}
	return nil
}

// GetChildren returns the children in link order. A linked SKU without a
// product row comes back with ID 0.
func (r *ProductRepository) GetChildren(ctx context.Context, parent *model.Product) ([]*model.Product, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	var links []ProductLinkRecord
	if err := db.Where("parent_sku = ?", parent.SKU).Order("position, child_sku").Find(&links).Error; err != nil {
		return nil, persistenceError("failed to load children of '%s'", parent.SKU, err)
	}
	if len(links) == 0 {
		return nil, nil
	}

	skus := make([]string, len(links))
	for i, l := range links {
		skus[i] = l.ChildSKU
	}
	var records []ProductRecord
	if err := db.Where("sku IN ?", skus).Find(&records).Error; err != nil {
		return nil, persistenceError("failed to load children of '%s'", parent.SKU, err)
	}
	bySku := make(map[string]*ProductRecord, len(records))
	for i := range records {
		bySku[records[i].SKU] = &records[i]
	}

	children := make([]*model.Product, 0, len(links))
	for _, sku := range skus {
		if record, ok := bySku[sku]; ok {
			children = append(children, toDomainProduct(record))
			continue
		}
		children = append(children, &model.Product{SKU: sku})
	}
	return children, nil
}

// GetAttributeValueBySku reads an attribute row, falling back to the product
// columns listed in productColumns.
func (r *ProductRepository) GetAttributeValueBySku(ctx context.Context, sku, attributeCode string) (string, bool, error) {
	db, err := r.db(ctx)
	if err != nil {
		return "", false, err
	}

	var attr ProductAttributeRecord
	err = db.Where("sku = ? AND attribute_code = ?", sku, attributeCode).Take(&attr).Error
	switch {
	case err == nil:
		if attr.Value == nil || *attr.Value == "" {
			return "", false, nil
		}
		return *attr.Value, true, nil
	case !isNotFound(err):
		return "", false, persistenceError("failed to read attribute '%s' of '%s'", attributeCode, sku, err)
	}

	column, ok := productColumns[attributeCode]
	if !ok {
		return "", false, nil
	}
	var values []sql.NullString
	if err := db.Model(&ProductRecord{}).Where("sku = ?", sku).Limit(1).Pluck(column, &values).Error; err != nil {
		return "", false, persistenceError("failed to read attribute '%s' of '%s'", attributeCode, sku, err)
	}
	if len(values) == 0 || !values[0].Valid || values[0].String == "" {
		return "", false, nil
	}
	return values[0].String, true, nil
}
