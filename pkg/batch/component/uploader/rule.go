package uploader

import (
	"context"
	"fmt"

	"github.com/tigerroll/surfin-transporter/pkg/batch/component/rule"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/engine/upload"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/configbinder"
)

const (
	KindGroupPrice    = "group_price"
	KindCustomerPrice = "customer_price"
)

// GroupPriceOptions configures the group price uploader. All fields are dot
// paths. A rule always carries both validity bounds.
type GroupPriceOptions struct {
	CustomerCode string `yaml:"customer_code" required:"true"`
	// Field holds the customer group code.
	Field      string `yaml:"field" required:"true"`
	RuleName   string `yaml:"rule_name" required:"true"`
	FromDate   string `yaml:"from_date" required:"true"`
	ToDate     string `yaml:"to_date" required:"true"`
	DateFormat string `yaml:"date_format"`
}

// GroupPriceUploader moves a customer into a named group and scopes a
// group-wide rule to it.
type GroupPriceUploader struct {
	name   string
	opts   GroupPriceOptions
	fields fieldReader
	ops    Mutations
}

// NewGroupPriceUploader is the Factory for KindGroupPrice.
func NewGroupPriceUploader(name string, properties map[string]interface{}, deps Dependencies) (upload.GroupHandler, error) {
	var opts GroupPriceOptions
	if err := configbinder.BindProperties(properties, &opts); err != nil {
		return nil, err
	}
	return &GroupPriceUploader{name: name, opts: opts, fields: newFieldReader(deps, opts.DateFormat), ops: deps.Mutations}, nil
}

func (u *GroupPriceUploader) Type() string { return u.name }

func (u *GroupPriceUploader) Handle(ctx context.Context, entry model.GroupEntry) (upload.Result, error) {
	customer, err := u.fields.requiredString(entry.Entities, u.opts.CustomerCode)
	if err != nil {
		return upload.Result{}, err
	}
	groupCode, err := u.fields.requiredString(entry.Entities, u.opts.Field)
	if err != nil {
		return upload.Result{}, err
	}
	ruleName, err := u.fields.requiredString(entry.Entities, u.opts.RuleName)
	if err != nil {
		return upload.Result{}, err
	}
	from, err := u.fields.requiredDate(entry.Entities, u.opts.FromDate)
	if err != nil {
		return upload.Result{}, err
	}
	to, err := u.fields.requiredDate(entry.Entities, u.opts.ToDate)
	if err != nil {
		return upload.Result{}, err
	}

	r := model.PriceRule{Name: ruleName, From: from, To: to, Condition: rule.AlwaysTrue}
	if _, err := u.ops.ApplyCustomerGroupRule(ctx, groupCode, customer, r); err != nil {
		return upload.Result{}, err
	}
	return upload.Result{
		Action: "apply_group_rule",
		Detail: fmt.Sprintf("new customer group value:%s ~ from date:%s ~ to date:%s", ruleName, formatBound(from), formatBound(to)),
	}, nil
}

// CustomerPriceOptions configures the per-customer price uploader. All fields
// except GroupPrefix and DateFormat are dot paths.
type CustomerPriceOptions struct {
	CustomerCode string `yaml:"customer_code" required:"true"`
	// Field holds the price amount.
	Field      string `yaml:"field" required:"true"`
	Sku        string `yaml:"sku" required:"true"`
	RuleName   string `yaml:"rule_name" required:"true"`
	FromDate   string `yaml:"from_date" required:"true"`
	ToDate     string `yaml:"to_date" required:"true"`
	DateFormat string `yaml:"date_format"`
	// GroupPrefix is prepended to the customer code to name the customer's own group.
	GroupPrefix string `yaml:"group_prefix"`
}

// CustomerPriceUploader gives one customer a dedicated group and a rule pricing
// one SKU for it. An absent price deletes the rule instead.
type CustomerPriceUploader struct {
	name   string
	opts   CustomerPriceOptions
	fields fieldReader
	ops    Mutations
}

// NewCustomerPriceUploader is the Factory for KindCustomerPrice.
func NewCustomerPriceUploader(name string, properties map[string]interface{}, deps Dependencies) (upload.GroupHandler, error) {
	opts := CustomerPriceOptions{GroupPrefix: "customer-"}
	if err := configbinder.BindProperties(properties, &opts); err != nil {
		return nil, err
	}
	return &CustomerPriceUploader{name: name, opts: opts, fields: newFieldReader(deps, opts.DateFormat), ops: deps.Mutations}, nil
}

func (u *CustomerPriceUploader) Type() string { return u.name }

func (u *CustomerPriceUploader) Handle(ctx context.Context, entry model.GroupEntry) (upload.Result, error) {
	ruleName, err := u.fields.requiredString(entry.Entities, u.opts.RuleName)
	if err != nil {
		return upload.Result{}, err
	}
	price, present, err := u.fields.price(entry.Entities, u.opts.Field)
	if err != nil {
		return upload.Result{}, err
	}
	if !present {
		if err := u.ops.DeleteRule(ctx, ruleName); err != nil {
			return upload.Result{}, err
		}
		return upload.Result{Action: "delete_rule", Detail: fmt.Sprintf("rule name -> %s", ruleName)}, nil
	}

	customer, err := u.fields.requiredString(entry.Entities, u.opts.CustomerCode)
	if err != nil {
		return upload.Result{}, err
	}
	sku, err := u.fields.requiredString(entry.Entities, u.opts.Sku)
	if err != nil {
		return upload.Result{}, err
	}
	from, err := u.fields.requiredDate(entry.Entities, u.opts.FromDate)
	if err != nil {
		return upload.Result{}, err
	}
	to, err := u.fields.requiredDate(entry.Entities, u.opts.ToDate)
	if err != nil {
		return upload.Result{}, err
	}

	r := model.PriceRule{
		Name:      ruleName,
		SKU:       sku,
		From:      from,
		To:        to,
		Amount:    model.Float64Ptr(price),
		Condition: rule.SkuCondition(sku),
	}
	if _, err := u.ops.ApplyCustomerGroupRule(ctx, u.opts.GroupPrefix+customer, customer, r); err != nil {
		return upload.Result{}, err
	}
	return upload.Result{
		Action: "apply_customer_rule",
		Detail: fmt.Sprintf("new customer price rule:%s ~ from date:%s ~ to date:%s ~ amount:%g", ruleName, formatBound(from), formatBound(to), price),
	}, nil
}
