// Package port declares the collaborator interfaces the upload core depends on.
// Concrete implementations live under pkg/batch/infrastructure.
package port

import (
	"context"

	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
)

// EntityRepository reads and updates staged entities.
type EntityRepository interface {
	// GetAllByActivityGroupedByIdentifier returns the activity's entities grouped by
	// identifier, in the order the store yields them.
	GetAllByActivityGroupedByIdentifier(ctx context.Context, activityID int64) (model.ActivityBatch, error)
	// UpdateManipulated persists entity.DataManipulated.
	UpdateManipulated(ctx context.Context, entity *model.Entity) error
}

// ProductRepository loads and saves catalog products.
type ProductRepository interface {
	// Get returns the product with the given SKU, or an error of kind NotFound.
	Get(ctx context.Context, sku string) (*model.Product, error)
	// Save persists the price fields of p. A nil special date bound is not
	// written, so the stored bound stays as it is.
	Save(ctx context.Context, p *model.Product) error
	// GetChildren returns the children of a composite product. Children that could
	// not be resolved are returned with ID 0.
	GetChildren(ctx context.Context, parent *model.Product) ([]*model.Product, error)
}

// Indexer refreshes derived catalog data for a product.
type Indexer interface {
	Reindex(ctx context.Context, productID int64) error
}

// URLRewriteRepository is the persisted registry of active URL keys.
type URLRewriteRepository interface {
	FindByRequestPath(ctx context.Context, requestPath string) ([]model.UrlRewrite, error)
	Delete(ctx context.Context, rewrite model.UrlRewrite) error
}

// CustomerGroupService manages customer groups and their members.
type CustomerGroupService interface {
	// GetOrCreate returns the group with the given code, creating it if needed.
	GetOrCreate(ctx context.Context, code string) (*model.CustomerGroup, error)
	// AssignCustomer moves the customer into the group, replacing any previous group.
	AssignCustomer(ctx context.Context, groupID int64, customerCode string) error
}

// CatalogRuleService manages named catalog price rules.
type CatalogRuleService interface {
	// CreateOrReplace stores rule for the group; an existing rule with the same name is replaced.
	CreateOrReplace(ctx context.Context, group *model.CustomerGroup, rule model.PriceRule) error
	// DeleteByName removes the rule with the given name. Deleting a missing rule is not an error.
	DeleteByName(ctx context.Context, name string) error
}

// TierPriceRepository manages per-SKU tier prices.
type TierPriceRepository interface {
	// DeleteBySku removes all tier prices of the SKU and returns how many were removed.
	DeleteBySku(ctx context.Context, sku string) (int64, error)
}

// AttributeReader reads single catalog attributes.
type AttributeReader interface {
	// GetAttributeValueBySku returns the attribute value, or ok=false when the product
	// has no value for it.
	GetAttributeValueBySku(ctx context.Context, sku, attributeCode string) (value string, ok bool, err error)
}

// RunListener observes the lifecycle of an upload run.
type RunListener interface {
	BeforeRun(ctx context.Context, summary *model.RunSummary)
	// AfterRun is called once the summary is final, including after an abort.
	AfterRun(ctx context.Context, summary *model.RunSummary)
}
