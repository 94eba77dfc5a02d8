package uploader

import (
	"context"
	"fmt"

	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/engine/upload"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

const (
	KindBasePrice    = "base_price"
	KindSpecialPrice = "special_price"
)

// BasePriceOptions configures the base price uploader.
type BasePriceOptions struct {
	// Field is the dot path of the price, e.g. "product.price".
	Field string `yaml:"field" required:"true"`
}

// BasePriceUploader sets the base price of the product named by the group identifier.
type BasePriceUploader struct {
	name    string
	opts    BasePriceOptions
	fields  fieldReader
	ops     Mutations
	reindex bool
}

// NewBasePriceUploader is the Factory for KindBasePrice.
func NewBasePriceUploader(name string, properties map[string]interface{}, deps Dependencies) (upload.GroupHandler, error) {
	var opts BasePriceOptions
	if err := configbinder.BindProperties(properties, &opts); err != nil {
		return nil, err
	}
	return &BasePriceUploader{
		name:    name,
		opts:    opts,
		fields:  newFieldReader(deps, ""),
		ops:     deps.Mutations,
		reindex: deps.ReindexAfterWrite,
	}, nil
}

func (u *BasePriceUploader) Type() string { return u.name }

// Handle applies the price. An absent price is an error: base prices are never deleted.
func (u *BasePriceUploader) Handle(ctx context.Context, entry model.GroupEntry) (upload.Result, error) {
	price, present, err := u.fields.price(entry.Entities, u.opts.Field)
	if err != nil {
		return upload.Result{}, err
	}
	if !present {
		return upload.Result{}, exception.NewUploadErrorf(moduleName, exception.KindPathNotFound,
			"base price field '%s' has no value", u.opts.Field)
	}
	if err := u.ops.SetBasePrice(ctx, entry.Identifier, price, u.reindex); err != nil {
		return upload.Result{}, err
	}
	return upload.Result{Action: "set_base_price", Detail: fmt.Sprintf("new price value:%g", price)}, nil
}

// SpecialPriceOptions configures the special price uploader.
type SpecialPriceOptions struct {
	Field      string `yaml:"field" required:"true"`
	FromDate   string `yaml:"from_date"`
	ToDate     string `yaml:"to_date"`
	DateFormat string `yaml:"date_format"`
}

// SpecialPriceUploader sets special prices, or deletes the tier prices of the
// SKU when the price is absent.
type SpecialPriceUploader struct {
	name    string
	opts    SpecialPriceOptions
	fields  fieldReader
	ops     Mutations
	reindex bool
}

// NewSpecialPriceUploader is the Factory for KindSpecialPrice.
func NewSpecialPriceUploader(name string, properties map[string]interface{}, deps Dependencies) (upload.GroupHandler, error) {
	var opts SpecialPriceOptions
	if err := configbinder.BindProperties(properties, &opts); err != nil {
		return nil, err
	}
	return &SpecialPriceUploader{
		name:    name,
		opts:    opts,
		fields:  newFieldReader(deps, opts.DateFormat),
		ops:     deps.Mutations,
		reindex: deps.ReindexAfterWrite,
	}, nil
}

func (u *SpecialPriceUploader) Type() string { return u.name }

func (u *SpecialPriceUploader) Handle(ctx context.Context, entry model.GroupEntry) (upload.Result, error) {
	sku := entry.Identifier
	price, present, err := u.fields.price(entry.Entities, u.opts.Field)
	if err != nil {
		return upload.Result{}, err
	}
	if !present {
		n, err := u.ops.DeleteTierPrices(ctx, sku)
		if err != nil {
			return upload.Result{}, err
		}
		return upload.Result{Action: "delete_tier_prices", Detail: fmt.Sprintf("product sku -> %s (%d removed)", sku, n)}, nil
	}

	from, err := u.fields.date(entry.Entities, u.opts.FromDate)
	if err != nil {
		return upload.Result{}, err
	}
	to, err := u.fields.date(entry.Entities, u.opts.ToDate)
	if err != nil {
		return upload.Result{}, err
	}
	if err := u.ops.SetSpecialPrice(ctx, sku, price, from, to, u.reindex); err != nil {
		return upload.Result{}, err
	}
	return upload.Result{
		Action: "set_special_price",
		Detail: fmt.Sprintf("new price value:%g ~ from date:%s ~ to date:%s", price, formatBound(from), formatBound(to)),
	}, nil
}
