// Package mutation applies price and rule mutations to the catalog.
//
// Price mutations load the primary product by SKU, apply the change, save it,
// and cascade the identical change to the children of configurable products.
// Children without a resolved ID are skipped. Saves are individual; the first
// failing save stops the cascade and earlier saves stay in place.
package mutation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-transporter/pkg/batch/component/rule"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/application/port"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

const moduleName = "mutation"

// Ops groups the catalog mutations the uploaders perform.
type Ops struct {
	products   port.ProductRepository
	indexer    port.Indexer
	groups     port.CustomerGroupService
	rules      port.CatalogRuleService
	tierPrices port.TierPriceRepository
	attributes port.AttributeReader
}

// OpsParams defines the dependencies for creating Ops.
type OpsParams struct {
	fx.In
	Products   port.ProductRepository
	Indexer    port.Indexer
	Groups     port.CustomerGroupService
	Rules      port.CatalogRuleService
	TierPrices port.TierPriceRepository
	Attributes port.AttributeReader
}

// NewOps creates Ops from its collaborators.
func NewOps(p OpsParams) *Ops {
	return &Ops{
		products:   p.Products,
		indexer:    p.Indexer,
		groups:     p.Groups,
		rules:      p.Rules,
		tierPrices: p.TierPrices,
		attributes: p.Attributes,
	}
}

// SetBasePrice sets the price of sku and of its children.
// With reindex set, the primary product is reindexed once all saves succeeded.
func (o *Ops) SetBasePrice(ctx context.Context, sku string, price float64, reindex bool) error {
	return o.applyPrice(ctx, sku, reindex, func(p *model.Product) {
		p.Price = price
	})
}

// SetSpecialPrice sets the special price of sku and of its children.
// A nil bound leaves the stored bound unchanged.
func (o *Ops) SetSpecialPrice(ctx context.Context, sku string, price float64, from, to *time.Time, reindex bool) error {
	return o.applyPrice(ctx, sku, reindex, func(p *model.Product) {
		p.SpecialPrice = model.Float64Ptr(price)
		if from != nil {
			p.SpecialFromDate = model.TimePtr(*from)
		}
		if to != nil {
			p.SpecialToDate = model.TimePtr(*to)
		}
	})
}

func (o *Ops) applyPrice(ctx context.Context, sku string, reindex bool, mutate func(*model.Product)) error {
	primary, err := o.products.Get(ctx, sku)
	if err != nil {
		return asUploadError(err, exception.KindPersistence, fmt.Sprintf("failed to load product '%s'", sku))
	}
	if primary == nil {
		return exception.NewUploadErrorf(moduleName, exception.KindNotFound, "product '%s' not found", sku)
	}

	mutate(primary)
	if err := o.products.Save(ctx, primary); err != nil {
		return asUploadError(err, exception.KindPersistence, fmt.Sprintf("failed to save product '%s'", sku))
	}

	if primary.IsComposite() {
		if err := o.cascade(ctx, primary, mutate); err != nil {
			return err
		}
	}

	if reindex {
		if err := o.indexer.Reindex(ctx, primary.ID); err != nil {
			return exception.NewUploadErrorf(moduleName, exception.KindPersistence,
				"product '%s' saved but reindex of id %d failed", sku, primary.ID, err)
		}
	}
	return nil
}

func (o *Ops) cascade(ctx context.Context, parent *model.Product, mutate func(*model.Product)) error {
	children, err := o.products.GetChildren(ctx, parent)
	if err != nil {
		return asUploadError(err, exception.KindPersistence, fmt.Sprintf("failed to load children of '%s'", parent.SKU))
	}
	for _, child := range children {
		if child == nil || !child.HasID() {
			continue
		}
		mutate(child)
		if err := o.products.Save(ctx, child); err != nil {
			return asUploadError(err, exception.KindPersistence,
				fmt.Sprintf("failed to save child '%s' of '%s'", child.SKU, parent.SKU))
		}
	}
	logger.Debugf("Cascaded mutation of '%s' to %d child product(s).", parent.SKU, len(children))
	return nil
}

// ApplyCustomerGroupRule resolves or creates the group groupCode, moves the
// customer into it and creates or replaces the named rule for that group.
// An empty rule condition is treated as rule.AlwaysTrue.
func (o *Ops) ApplyCustomerGroupRule(ctx context.Context, groupCode, customerCode string, r model.PriceRule) (*model.CustomerGroup, error) {
	if groupCode == "" {
		return nil, exception.NewUploadError(moduleName, exception.KindInvalidValue, "customer group code is empty", nil)
	}
	if r.Name == "" {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindInvalidValue, "rule for group '%s' has no name", groupCode)
	}
	if r.Condition == "" {
		r.Condition = rule.AlwaysTrue
	}

	group, err := o.groups.GetOrCreate(ctx, groupCode)
	if err != nil {
		return nil, asUploadError(err, exception.KindPersistence, fmt.Sprintf("failed to resolve customer group '%s'", groupCode))
	}
	if err := o.groups.AssignCustomer(ctx, group.ID, customerCode); err != nil {
		return nil, asUploadError(err, exception.KindPersistence,
			fmt.Sprintf("failed to assign customer '%s' to group '%s'", customerCode, groupCode))
	}
	if err := o.rules.CreateOrReplace(ctx, group, r); err != nil {
		return nil, asUploadError(err, exception.KindPersistence, fmt.Sprintf("failed to store rule '%s'", r.Name))
	}
	return group, nil
}

// DeleteRule removes the rule with the given name.
func (o *Ops) DeleteRule(ctx context.Context, name string) error {
	if name == "" {
		return exception.NewUploadError(moduleName, exception.KindInvalidValue, "rule name is empty", nil)
	}
	if err := o.rules.DeleteByName(ctx, name); err != nil {
		return asUploadError(err, exception.KindPersistence, fmt.Sprintf("failed to delete rule '%s'", name))
	}
	return nil
}

// DeleteTierPrices removes every tier price of sku and returns how many were removed.
func (o *Ops) DeleteTierPrices(ctx context.Context, sku string) (int64, error) {
	n, err := o.tierPrices.DeleteBySku(ctx, sku)
	if err != nil {
		return 0, asUploadError(err, exception.KindPersistence, fmt.Sprintf("failed to delete tier prices of '%s'", sku))
	}
	return n, nil
}

// GetProductAttributeValueBySku reads one catalog attribute of sku.
// ok is false when the product has no value for the attribute.
func (o *Ops) GetProductAttributeValueBySku(ctx context.Context, sku, attributeCode string) (string, bool, error) {
	v, ok, err := o.attributes.GetAttributeValueBySku(ctx, sku, attributeCode)
	if err != nil {
		return "", false, asUploadError(err, exception.KindPersistence,
			fmt.Sprintf("failed to read attribute '%s' of '%s'", attributeCode, sku))
	}
	return v, ok, nil
}

// asUploadError passes UploadErrors through and wraps anything else in kind.
func asUploadError(err error, kind exception.Kind, message string) error {
	if _, ok := exception.KindOf(err); ok {
		return err
	}
	return exception.NewUploadError(moduleName, kind, message, err)
}
