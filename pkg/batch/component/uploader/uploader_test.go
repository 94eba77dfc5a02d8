package uploader_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/surfin-transporter/pkg/batch/component/rule"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/uploader"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/engine/upload"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	testutil "github.com/tigerroll/surfin-transporter/pkg/batch/test"
)

// MockMutations is a mock implementation of uploader.Mutations.
type MockMutations struct {
	mock.Mock
}

func (m *MockMutations) SetBasePrice(ctx context.Context, sku string, price float64, reindex bool) error {
	return m.Called(ctx, sku, price, reindex).Error(0)
}

func (m *MockMutations) SetSpecialPrice(ctx context.Context, sku string, price float64, from, to *time.Time, reindex bool) error {
	return m.Called(ctx, sku, price, from, to, reindex).Error(0)
}

func (m *MockMutations) DeleteTierPrices(ctx context.Context, sku string) (int64, error) {
	args := m.Called(ctx, sku)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMutations) ApplyCustomerGroupRule(ctx context.Context, groupCode, customerCode string, r model.PriceRule) (*model.CustomerGroup, error) {
	args := m.Called(ctx, groupCode, customerCode, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerGroup), args.Error(1)
}

func (m *MockMutations) DeleteRule(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockMutations) GetProductAttributeValueBySku(ctx context.Context, sku, attributeCode string) (string, bool, error) {
	args := m.Called(ctx, sku, attributeCode)
	return args.String(0), args.Bool(1), args.Error(2)
}

func build(t *testing.T, kind string, props map[string]interface{}, ops uploader.Mutations, reindex bool) upload.GroupHandler {
	t.Helper()
	reg := uploader.NewRegistry(uploader.RegistryParams{})
	h, err := reg.Build("my_"+kind, config.UploaderConfig{Kind: kind, Properties: props}, uploader.Dependencies{
		Mutations:         ops,
		ReindexAfterWrite: reindex,
	})
	require.NoError(t, err)
	return h
}

func productGroup(sku string, data map[string]interface{}) model.GroupEntry {
	return testutil.NewTestGroup(sku, testutil.NewTestEntity(1, sku, "product", data))
}

func TestRegistry_UnknownKindAndMissingProperty(t *testing.T) {
	reg := uploader.NewRegistry(uploader.RegistryParams{})
	assert.Equal(t, []string{"base_price", "customer_price", "group_price", "special_price"}, reg.Kinds())

	_, err := reg.Build("x", config.UploaderConfig{Kind: "nope"}, uploader.Dependencies{})
	assert.ErrorIs(t, err, exception.ErrConfiguration)

	_, err = reg.Build("x", config.UploaderConfig{Kind: uploader.KindBasePrice}, uploader.Dependencies{})
	assert.ErrorIs(t, err, exception.ErrConfiguration)
	assert.Contains(t, err.Error(), "field")
}

func TestRegistry_ContributedKind(t *testing.T) {
	called := false
	reg := uploader.NewRegistry(uploader.RegistryParams{Registrations: []uploader.Registration{{
		Kind: "custom",
		Factory: func(name string, props map[string]interface{}, deps uploader.Dependencies) (upload.GroupHandler, error) {
			called = true
			return uploader.NewBasePriceUploader(name, map[string]interface{}{"field": "product.price"}, deps)
		},
	}}})

	h, err := reg.Build("custom_prices", config.UploaderConfig{Kind: "custom"}, uploader.Dependencies{})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "custom_prices", h.Type())
}

func TestBasePriceUploader(t *testing.T) {
	ops := new(MockMutations)
	ops.On("SetBasePrice", mock.Anything, "SKU-1", 12.5, true).Return(nil).Once()
	h := build(t, uploader.KindBasePrice, map[string]interface{}{"field": "product.price"}, ops, true)

	res, err := h.Handle(context.Background(), productGroup("SKU-1", map[string]interface{}{"price": "12,5"}))
	require.NoError(t, err)
	assert.Equal(t, "set_base_price", res.Action)
	ops.AssertExpectations(t)

	_, err = h.Handle(context.Background(), productGroup("SKU-2", map[string]interface{}{"price": nil}))
	assert.ErrorIs(t, err, exception.ErrPathNotFound)

	_, err = h.Handle(context.Background(), productGroup("SKU-3", map[string]interface{}{"price": "cheap"}))
	assert.ErrorIs(t, err, exception.ErrInvalidValue)

	_, err = h.Handle(context.Background(), testutil.NewTestGroup("SKU-4", testutil.NewTestEntity(1, "SKU-4", "stock", nil)))
	assert.ErrorIs(t, err, exception.ErrPathNotFound, "missing group key")
	ops.AssertNumberOfCalls(t, "SetBasePrice", 1)
}

func TestSpecialPriceUploader_PresentPriceNeverDeletes(t *testing.T) {
	ops := new(MockMutations)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ops.On("SetSpecialPrice", mock.Anything, "SKU-1", 8.0, &from, (*time.Time)(nil), false).Return(nil)

	h := build(t, uploader.KindSpecialPrice, map[string]interface{}{
		"field":       "product.special.price",
		"from_date":   "product.special.from",
		"to_date":     "product.special.to",
		"date_format": "2006-01-02",
	}, ops, false)

	_, err := h.Handle(context.Background(), productGroup("SKU-1", map[string]interface{}{
		"special": map[string]interface{}{"price": 8, "from": "2025-03-01"},
	}))
	require.NoError(t, err)
	ops.AssertExpectations(t)
	ops.AssertNotCalled(t, "DeleteTierPrices", mock.Anything, mock.Anything)
}

func TestSpecialPriceUploader_AbsentPriceOnlyDeletes(t *testing.T) {
	ops := new(MockMutations)
	ops.On("DeleteTierPrices", mock.Anything, "SKU-1").Return(int64(3), nil)

	h := build(t, uploader.KindSpecialPrice, map[string]interface{}{"field": "product.special.price"}, ops, true)

	res, err := h.Handle(context.Background(), productGroup("SKU-1", map[string]interface{}{"special": map[string]interface{}{}}))
	require.NoError(t, err)
	assert.Equal(t, "delete_tier_prices", res.Action)
	ops.AssertNotCalled(t, "SetSpecialPrice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSpecialPriceUploader_InvalidDate(t *testing.T) {
	ops := new(MockMutations)
	h := build(t, uploader.KindSpecialPrice, map[string]interface{}{"field": "product.price", "from_date": "product.from"}, ops, false)

	_, err := h.Handle(context.Background(), productGroup("SKU-1", map[string]interface{}{"price": 3, "from": "31/12/2025"}))
	assert.ErrorIs(t, err, exception.ErrInvalidDate)
	ops.AssertNotCalled(t, "SetSpecialPrice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGroupPriceUploader(t *testing.T) {
	ops := new(MockMutations)
	ops.On("ApplyCustomerGroupRule", mock.Anything, "GOLD", "C-1", mock.MatchedBy(func(r model.PriceRule) bool {
		return r.Name == "gold-2025" && r.Condition == rule.AlwaysTrue && r.Amount == nil && r.From != nil && r.To != nil && r.To.After(*r.From)
	})).Return(&model.CustomerGroup{ID: 4, Code: "GOLD"}, nil)

	h := build(t, uploader.KindGroupPrice, map[string]interface{}{
		"customer_code": "customer.code",
		"field":         "customer.group",
		"rule_name":     "customer.rule",
		"from_date":     "customer.from",
		"to_date":       "customer.to",
	}, ops, false)

	group := testutil.NewTestGroup("C-1", testutil.NewTestEntity(1, "C-1", "customer", map[string]interface{}{
		"code": "C-1", "group": "GOLD", "rule": "gold-2025", "from": "2025-01-01 00:00:00", "to": "2025-12-31 23:59:59",
	}))
	res, err := h.Handle(context.Background(), group)
	require.NoError(t, err)
	assert.Equal(t, "apply_group_rule", res.Action)
	ops.AssertExpectations(t)
}

func TestCustomerPriceUploader(t *testing.T) {
	props := map[string]interface{}{
		"customer_code": "price.customer",
		"field":         "price.amount",
		"sku":           "price.sku",
		"rule_name":     "price.rule",
		"from_date":     "price.from",
		"to_date":       "price.to",
	}

	t.Run("present price creates sku-scoped rule", func(t *testing.T) {
		ops := new(MockMutations)
		ops.On("ApplyCustomerGroupRule", mock.Anything, "customer-C-9", "C-9", mock.MatchedBy(func(r model.PriceRule) bool {
			return r.Name == "C-9-ART" && r.SKU == "ART" && r.Condition == rule.SkuCondition("ART") &&
				r.Amount != nil && *r.Amount == 4.2
		})).Return(&model.CustomerGroup{ID: 1}, nil)
		h := build(t, uploader.KindCustomerPrice, props, ops, false)

		group := testutil.NewTestGroup("C-9-ART", testutil.NewTestEntity(1, "C-9-ART", "price", map[string]interface{}{
			"customer": "C-9", "amount": 4.2, "sku": "ART", "rule": "C-9-ART",
			"from": "2025-01-01 00:00:00", "to": "2025-06-30 00:00:00",
		}))
		_, err := h.Handle(context.Background(), group)
		require.NoError(t, err)
		ops.AssertExpectations(t)
		ops.AssertNotCalled(t, "DeleteRule", mock.Anything, mock.Anything)
	})

	t.Run("absent price deletes the rule only", func(t *testing.T) {
		ops := new(MockMutations)
		ops.On("DeleteRule", mock.Anything, "C-9-ART").Return(nil)
		h := build(t, uploader.KindCustomerPrice, props, ops, false)

		group := testutil.NewTestGroup("C-9-ART", testutil.NewTestEntity(1, "C-9-ART", "price", map[string]interface{}{
			"customer": "C-9", "amount": nil, "sku": "ART", "rule": "C-9-ART",
		}))
		res, err := h.Handle(context.Background(), group)
		require.NoError(t, err)
		assert.Equal(t, "delete_rule", res.Action)
		ops.AssertNotCalled(t, "ApplyCustomerGroupRule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRuleUploaders_RequireBothDates(t *testing.T) {
	t.Run("date paths are required properties", func(t *testing.T) {
		reg := uploader.NewRegistry(uploader.RegistryParams{})
		_, err := reg.Build("gold", config.UploaderConfig{Kind: uploader.KindGroupPrice, Properties: map[string]interface{}{
			"customer_code": "customer.code",
			"field":         "customer.group",
			"rule_name":     "customer.rule",
			"from_date":     "customer.from",
		}}, uploader.Dependencies{Mutations: new(MockMutations)})
		assert.ErrorIs(t, err, exception.ErrConfiguration)
	})

	t.Run("absent bound fails the group", func(t *testing.T) {
		ops := new(MockMutations)
		h := build(t, uploader.KindCustomerPrice, map[string]interface{}{
			"customer_code": "price.customer",
			"field":         "price.amount",
			"sku":           "price.sku",
			"rule_name":     "price.rule",
			"from_date":     "price.from",
			"to_date":       "price.to",
		}, ops, false)

		group := testutil.NewTestGroup("C-9-ART", testutil.NewTestEntity(1, "C-9-ART", "price", map[string]interface{}{
			"customer": "C-9", "amount": 4.2, "sku": "ART", "rule": "C-9-ART", "from": "2025-01-01 00:00:00",
		}))
		_, err := h.Handle(context.Background(), group)
		assert.ErrorIs(t, err, exception.ErrInvalidDate)
		ops.AssertNotCalled(t, "ApplyCustomerGroupRule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
