package gorm

import (
	"time"

	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
)

// EntityRecord is the persistence model of a staged entity.
type EntityRecord struct {
	ID              int64 `gorm:"primaryKey"`
	ActivityID      int64
	Identifier      string
	Type            string
	DataOriginal    *model.Value
	DataManipulated *model.Value
	CreatedAt       time.Time
}

func (EntityRecord) TableName() string {
	return "transporter_entity"
}

// ProductRecord is the persistence model of a catalog product.
type ProductRecord struct {
	ID              int64 `gorm:"primaryKey"`
	SKU             string `gorm:"column:sku"`
	TypeID          string
	Name            string
	URLKey          string `gorm:"column:url_key"`
	Price           float64
	SpecialPrice    *float64
	SpecialFromDate *time.Time
	SpecialToDate   *time.Time
	UpdatedAt       *time.Time
}

func (ProductRecord) TableName() string {
	return "catalog_product"
}

// ProductLinkRecord links a composite product to one child SKU.
type ProductLinkRecord struct {
	ParentSKU string `gorm:"column:parent_sku;primaryKey"`
	ChildSKU  string `gorm:"column:child_sku;primaryKey"`
	Position  int
}

func (ProductLinkRecord) TableName() string {
	return "catalog_product_link"
}

// ProductAttributeRecord holds one attribute value of a product.
type ProductAttributeRecord struct {
	SKU           string `gorm:"column:sku;primaryKey"`
	AttributeCode string `gorm:"primaryKey"`
	Value         *string
}

func (ProductAttributeRecord) TableName() string {
	return "catalog_product_attribute"
}

// ReindexRequestRecord queues a product for reindexing.
type ReindexRequestRecord struct {
	ID          int64 `gorm:"primaryKey"`
	ProductID   int64
	RequestedAt time.Time
}

func (ReindexRequestRecord) TableName() string {
	return "catalog_reindex_queue"
}

// UrlRewriteRecord is one registered URL key.
type UrlRewriteRecord struct {
	ID          int64 `gorm:"primaryKey"`
	RequestPath string
	EntityType  string
	EntityID    int64
}

func (UrlRewriteRecord) TableName() string {
	return "url_rewrite"
}

// CustomerGroupRecord is a customer group.
type CustomerGroupRecord struct {
	ID   int64 `gorm:"primaryKey"`
	Code string
}

func (CustomerGroupRecord) TableName() string {
	return "customer_group"
}

// CustomerRecord is a customer and its current group.
type CustomerRecord struct {
	ID      int64 `gorm:"primaryKey"`
	Code    string
	GroupID *int64
}

func (CustomerRecord) TableName() string {
	return "customer"
}

// CatalogRuleRecord is a stored price rule.
type CatalogRuleRecord struct {
	ID              int64 `gorm:"primaryKey"`
	Name            string
	CustomerGroupID int64
	SKU             *string `gorm:"column:sku"`
	FromDate        *time.Time
	ToDate          *time.Time
	Amount          *float64
	ConditionExpr   string
}

func (CatalogRuleRecord) TableName() string {
	return "catalog_rule"
}

// TierPriceRecord is one tier price of a SKU.
type TierPriceRecord struct {
	ID              int64 `gorm:"primaryKey"`
	SKU             string `gorm:"column:sku"`
	CustomerGroupID *int64
	Qty             float64
	Value           float64
}

func (TierPriceRecord) TableName() string {
	return "catalog_tier_price"
}
