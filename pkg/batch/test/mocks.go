package test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tigerroll/surfin-transporter/pkg/batch/core/application/port"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
)

// MockEntityRepository is a mock implementation of port.EntityRepository.
type MockEntityRepository struct {
	mock.Mock
}

// GetAllByActivityGroupedByIdentifier records the call and returns the predefined batch.
func (m *MockEntityRepository) GetAllByActivityGroupedByIdentifier(ctx context.Context, activityID int64) (model.ActivityBatch, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.ActivityBatch), args.Error(1)
}

// UpdateManipulated records the call and returns the predefined error.
func (m *MockEntityRepository) UpdateManipulated(ctx context.Context, entity *model.Entity) error {
	return m.Called(ctx, entity).Error(0)
}

// MockProductRepository is a mock implementation of port.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

// Get records the call and returns the predefined product.
func (m *MockProductRepository) Get(ctx context.Context, sku string) (*model.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// Save records the call and returns the predefined error.
func (m *MockProductRepository) Save(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

// GetChildren records the call and returns the predefined children.
func (m *MockProductRepository) GetChildren(ctx context.Context, parent *model.Product) ([]*model.Product, error) {
	args := m.Called(ctx, parent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Product), args.Error(1)
}

// MockIndexer is a mock implementation of port.Indexer.
type MockIndexer struct {
	mock.Mock
}

// Reindex records the call and returns the predefined error.
func (m *MockIndexer) Reindex(ctx context.Context, productID int64) error {
	return m.Called(ctx, productID).Error(0)
}

// MockURLRewriteRepository is a mock implementation of port.URLRewriteRepository.
type MockURLRewriteRepository struct {
	mock.Mock
}

// FindByRequestPath records the call and returns the predefined rewrites.
func (m *MockURLRewriteRepository) FindByRequestPath(ctx context.Context, requestPath string) ([]model.UrlRewrite, error) {
	args := m.Called(ctx, requestPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UrlRewrite), args.Error(1)
}

// Delete records the call and returns the predefined error.
func (m *MockURLRewriteRepository) Delete(ctx context.Context, rewrite model.UrlRewrite) error {
	return m.Called(ctx, rewrite).Error(0)
}

// MockCustomerGroupService is a mock implementation of port.CustomerGroupService.
type MockCustomerGroupService struct {
	mock.Mock
}

// GetOrCreate records the call and returns the predefined group.
func (m *MockCustomerGroupService) GetOrCreate(ctx context.Context, code string) (*model.CustomerGroup, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerGroup), args.Error(1)
}

// AssignCustomer records the call and returns the predefined error.
func (m *MockCustomerGroupService) AssignCustomer(ctx context.Context, groupID int64, customerCode string) error {
	return m.Called(ctx, groupID, customerCode).Error(0)
}

// MockCatalogRuleService is a mock implementation of port.CatalogRuleService.
type MockCatalogRuleService struct {
	mock.Mock
}

// CreateOrReplace records the call and returns the predefined error.
func (m *MockCatalogRuleService) CreateOrReplace(ctx context.Context, group *model.CustomerGroup, rule model.PriceRule) error {
	return m.Called(ctx, group, rule).Error(0)
}

// DeleteByName records the call and returns the predefined error.
func (m *MockCatalogRuleService) DeleteByName(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// MockTierPriceRepository is a mock implementation of port.TierPriceRepository.
type MockTierPriceRepository struct {
	mock.Mock
}

// DeleteBySku records the call and returns the predefined count.
func (m *MockTierPriceRepository) DeleteBySku(ctx context.Context, sku string) (int64, error) {
	args := m.Called(ctx, sku)
	return args.Get(0).(int64), args.Error(1)
}

// MockAttributeReader is a mock implementation of port.AttributeReader.
type MockAttributeReader struct {
	mock.Mock
}

// GetAttributeValueBySku records the call and returns the predefined value.
func (m *MockAttributeReader) GetAttributeValueBySku(ctx context.Context, sku, attributeCode string) (string, bool, error) {
	args := m.Called(ctx, sku, attributeCode)
	return args.String(0), args.Bool(1), args.Error(2)
}

// MockRunListener is a mock implementation of port.RunListener.
type MockRunListener struct {
	mock.Mock
}

// BeforeRun records the call.
func (m *MockRunListener) BeforeRun(ctx context.Context, summary *model.RunSummary) {
	m.Called(ctx, summary)
}

// AfterRun records the call.
func (m *MockRunListener) AfterRun(ctx context.Context, summary *model.RunSummary) {
	m.Called(ctx, summary)
}

var (
	_ port.EntityRepository     = (*MockEntityRepository)(nil)
	_ port.ProductRepository    = (*MockProductRepository)(nil)
	_ port.Indexer              = (*MockIndexer)(nil)
	_ port.URLRewriteRepository = (*MockURLRewriteRepository)(nil)
	_ port.CustomerGroupService = (*MockCustomerGroupService)(nil)
	_ port.CatalogRuleService   = (*MockCatalogRuleService)(nil)
	_ port.TierPriceRepository  = (*MockTierPriceRepository)(nil)
	_ port.AttributeReader      = (*MockAttributeReader)(nil)
	_ port.RunListener          = (*MockRunListener)(nil)
)
