package model

import "time"

// ProductTypeConfigurable marks a composite product whose children receive the same price mutations.
const ProductTypeConfigurable = "configurable"

// Product is the catalog view the mutation operations work on.
// ID is zero when the item could not be resolved to a stored record.
type Product struct {
	ID              int64
	SKU             string
	TypeID          string
	Name            string
	URLKey          string
	Price           float64
	SpecialPrice    *float64
	SpecialFromDate *time.Time
	SpecialToDate   *time.Time
}

// IsComposite reports whether mutations cascade to the product's children.
func (p *Product) IsComposite() bool {
	return p.TypeID == ProductTypeConfigurable
}

// HasID reports whether the product resolved to a stored record.
func (p *Product) HasID() bool {
	return p.ID != 0
}

// UrlRewrite is one entry of the persisted URL key registry.
type UrlRewrite struct {
	ID          int64
	RequestPath string
	EntityType  string
	EntityID    int64
}

// CustomerGroup is a pricing audience created on demand from a code.
type CustomerGroup struct {
	ID   int64
	Code string
}

// PriceRule is a named, optionally time-bounded catalog rule.
// Amount is nil for rules that only scope a customer group.
// Condition is a CEL expression evaluated against the product (see package rule).
// SKU is the product the rule is scoped to; it is empty for group-wide rules.
type PriceRule struct {
	Name      string
	SKU       string
	From      *time.Time
	To        *time.Time
	Amount    *float64
	Condition string
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 { return &f }

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time { return &t }
