package gorm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/rule"
	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	repo "github.com/tigerroll/surfin-transporter/pkg/batch/infrastructure/repository/gorm"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	testutil "github.com/tigerroll/surfin-transporter/pkg/batch/test"
)

func setupSQLite(t *testing.T) (database.DBConnectionResolver, *gorm.DB) {
	conn := testutil.NewMigratedSQLiteConnection(t)
	return testutil.NewStaticConnectionResolver(conn), conn.GormDB()
}

func mustValue(t *testing.T, data map[string]interface{}) *model.Value {
	v, err := model.FromInterface(data)
	require.NoError(t, err)
	return v
}

func TestEntityRepository(t *testing.T) {
	resolver, db := setupSQLite(t)
	ctx := context.Background()
	r := repo.NewEntityRepository(resolver, testutil.TestDBName)

	records := []repo.EntityRecord{
		{ActivityID: 7, Identifier: "SKU-B", Type: "product", DataOriginal: mustValue(t, map[string]interface{}{"name": "B"})},
		{ActivityID: 7, Identifier: "SKU-A", Type: "product", DataOriginal: mustValue(t, map[string]interface{}{"name": "A"})},
		{ActivityID: 7, Identifier: "SKU-B", Type: "price", DataOriginal: mustValue(t, map[string]interface{}{"amount": 10})},
		{ActivityID: 8, Identifier: "SKU-C", Type: "product", DataOriginal: mustValue(t, map[string]interface{}{"name": "C"})},
	}
	require.NoError(t, db.Create(&records).Error)

	batch, err := r.GetAllByActivityGroupedByIdentifier(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU-B", "SKU-A"}, batch.Identifiers())
	assert.Equal(t, []string{"price", "product"}, batch[0].Entities.Types())

	product := batch[0].Entities["product"]
	name, ok := product.DataManipulated.Get("name")
	require.True(t, ok, "manipulated payload starts from the original")
	assert.Equal(t, "B", name.String())

	product.DataManipulated.Set("url_key", model.Scalar("b"))
	require.NoError(t, r.UpdateManipulated(ctx, product))
	require.NoError(t, r.UpdateManipulated(ctx, product), "rewriting the same payload succeeds")

	batch, err = r.GetAllByActivityGroupedByIdentifier(ctx, 7)
	require.NoError(t, err)
	key, ok := batch[0].Entities["product"].DataManipulated.Get("url_key")
	require.True(t, ok)
	assert.Equal(t, "b", key.String())
	_, ok = batch[0].Entities["product"].DataOriginal.Get("url_key")
	assert.False(t, ok)

	err = r.UpdateManipulated(ctx, &model.Entity{ID: 999, DataManipulated: model.NewMap()})
	assert.True(t, exception.IsKind(err, exception.KindNotFound))

	empty, err := r.GetAllByActivityGroupedByIdentifier(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProductRepository(t *testing.T) {
	resolver, db := setupSQLite(t)
	ctx := context.Background()
	r := repo.NewProductRepository(resolver, testutil.TestDBName)

	products := []repo.ProductRecord{
		{SKU: "PARENT", TypeID: model.ProductTypeConfigurable, Name: "Parent", Price: 10},
		{SKU: "CHILD-1", TypeID: "simple", Name: "Child", Price: 10},
	}
	require.NoError(t, db.Create(&products).Error)
	links := []repo.ProductLinkRecord{
		{ParentSKU: "PARENT", ChildSKU: "CHILD-1", Position: 1},
		{ParentSKU: "PARENT", ChildSKU: "CHILD-GONE", Position: 2},
	}
	require.NoError(t, db.Create(&links).Error)

	parent, err := r.Get(ctx, "PARENT")
	require.NoError(t, err)
	assert.True(t, parent.IsComposite())

	children, err := r.GetChildren(ctx, parent)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "CHILD-1", children[0].SKU)
	assert.True(t, children[0].HasID())
	assert.Equal(t, "CHILD-GONE", children[1].SKU)
	assert.False(t, children[1].HasID())

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	parent.Price = 12.5
	parent.SpecialPrice = model.Float64Ptr(9.99)
	parent.SpecialFromDate = &from
	require.NoError(t, r.Save(ctx, parent))

	reloaded, err := r.Get(ctx, "PARENT")
	require.NoError(t, err)
	assert.Equal(t, 12.5, reloaded.Price)
	require.NotNil(t, reloaded.SpecialPrice)
	assert.InDelta(t, 9.99, *reloaded.SpecialPrice, 1e-9)
	require.NotNil(t, reloaded.SpecialFromDate)
	assert.True(t, from.Equal(*reloaded.SpecialFromDate))
	assert.Nil(t, reloaded.SpecialToDate)

	// Saving a product built without bounds keeps the stored ones.
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, r.Save(ctx, &model.Product{ID: parent.ID, SKU: "PARENT", Price: 12.5, SpecialPrice: model.Float64Ptr(8), SpecialToDate: &to}))
	require.NoError(t, r.Save(ctx, &model.Product{ID: parent.ID, SKU: "PARENT", Price: 12.5, SpecialPrice: model.Float64Ptr(8)}))
	reloaded, err = r.Get(ctx, "PARENT")
	require.NoError(t, err)
	require.NotNil(t, reloaded.SpecialFromDate)
	assert.True(t, from.Equal(*reloaded.SpecialFromDate))
	require.NotNil(t, reloaded.SpecialToDate)
	assert.True(t, to.Equal(*reloaded.SpecialToDate))
	assert.InDelta(t, 8, *reloaded.SpecialPrice, 1e-9)

	_, err = r.Get(ctx, "MISSING")
	assert.True(t, exception.IsKind(err, exception.KindNotFound))

	err = r.Save(ctx, &model.Product{ID: 999, SKU: "MISSING"})
	assert.True(t, exception.IsKind(err, exception.KindNotFound))
}

func TestProductRepositoryAttributes(t *testing.T) {
	resolver, db := setupSQLite(t)
	ctx := context.Background()
	r := repo.NewProductRepository(resolver, testutil.TestDBName)

	require.NoError(t, db.Create(&repo.ProductRecord{SKU: "SKU-1", TypeID: "simple", Name: "Red Shoes"}).Error)
	color := "red"
	require.NoError(t, db.Create(&repo.ProductAttributeRecord{SKU: "SKU-1", AttributeCode: "color", Value: &color}).Error)

	value, ok, err := r.GetAttributeValueBySku(ctx, "SKU-1", "color")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "red", value)

	value, ok, err = r.GetAttributeValueBySku(ctx, "SKU-1", "name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Red Shoes", value)

	_, ok, err = r.GetAttributeValueBySku(ctx, "SKU-1", "url_key")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = r.GetAttributeValueBySku(ctx, "SKU-1", "size")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueueIndexer(t *testing.T) {
	resolver, db := setupSQLite(t)
	indexer := repo.NewQueueIndexer(resolver, testutil.TestDBName)

	require.NoError(t, indexer.Reindex(context.Background(), 42))

	var queued []repo.ReindexRequestRecord
	require.NoError(t, db.Find(&queued).Error)
	require.Len(t, queued, 1)
	assert.Equal(t, int64(42), queued[0].ProductID)
}

func TestUrlRewriteRepository(t *testing.T) {
	resolver, db := setupSQLite(t)
	ctx := context.Background()
	r := repo.NewUrlRewriteRepository(resolver, testutil.TestDBName)

	rewrites := []repo.UrlRewriteRecord{
		{RequestPath: "red-shoes.html", EntityType: "product", EntityID: 1},
		{RequestPath: "red-shoes.html", EntityType: "category", EntityID: 3},
		{RequestPath: "blue-shoes.html", EntityType: "product", EntityID: 2},
	}
	require.NoError(t, db.Create(&rewrites).Error)

	found, err := r.FindByRequestPath(ctx, "red-shoes.html")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "product", found[0].EntityType)

	require.NoError(t, r.Delete(ctx, found[0]))
	require.NoError(t, r.Delete(ctx, found[0]))

	found, err = r.FindByRequestPath(ctx, "red-shoes.html")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = r.FindByRequestPath(ctx, "green-shoes.html")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCustomerGroupService(t *testing.T) {
	resolver, db := setupSQLite(t)
	ctx := context.Background()
	s := repo.NewCustomerGroupService(resolver, testutil.TestDBName)

	first, err := s.GetOrCreate(ctx, "customer-C1")
	require.NoError(t, err)
	second, err := s.GetOrCreate(ctx, "customer-C1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "customer-C1", second.Code)

	err = s.AssignCustomer(ctx, first.ID, "C1")
	assert.True(t, exception.IsKind(err, exception.KindNotFound))

	require.NoError(t, db.Create(&repo.CustomerRecord{Code: "C1"}).Error)
	require.NoError(t, s.AssignCustomer(ctx, first.ID, "C1"))
	require.NoError(t, s.AssignCustomer(ctx, first.ID, "C1"), "re-assigning to the same group succeeds")

	var customer repo.CustomerRecord
	require.NoError(t, db.Where("code = ?", "C1").Take(&customer).Error)
	require.NotNil(t, customer.GroupID)
	assert.Equal(t, first.ID, *customer.GroupID)
}

func TestCatalogRuleService(t *testing.T) {
	resolver, db := setupSQLite(t)
	ctx := context.Background()
	evaluator, err := rule.NewEvaluator()
	require.NoError(t, err)
	s := repo.NewCatalogRuleService(resolver, testutil.TestDBName, evaluator)
	group := &model.CustomerGroup{ID: 5, Code: "customer-C1"}

	priceRule := model.PriceRule{
		Name:      "rule-C1-SKU-1",
		SKU:       "SKU-1",
		Amount:    model.Float64Ptr(10),
		Condition: rule.SkuCondition("SKU-1"),
	}
	require.NoError(t, s.CreateOrReplace(ctx, group, priceRule))
	priceRule.Amount = model.Float64Ptr(8)
	require.NoError(t, s.CreateOrReplace(ctx, group, priceRule))

	var stored []repo.CatalogRuleRecord
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1, "create-or-replace keeps one rule per name")
	require.NotNil(t, stored[0].Amount)
	assert.Equal(t, 8.0, *stored[0].Amount)
	assert.Equal(t, int64(5), stored[0].CustomerGroupID)
	require.NotNil(t, stored[0].SKU)
	assert.Equal(t, "SKU-1", *stored[0].SKU)

	mismatched := priceRule
	mismatched.Name = "rule-mismatch"
	mismatched.Condition = rule.SkuCondition("SKU-2")
	err = s.CreateOrReplace(ctx, group, mismatched)
	assert.True(t, exception.IsKind(err, exception.KindConfiguration))

	broken := priceRule
	broken.Name = "rule-broken"
	broken.Condition = "product.sku =="
	err = s.CreateOrReplace(ctx, group, broken)
	assert.True(t, exception.IsKind(err, exception.KindConfiguration))

	groupWide := model.PriceRule{Name: "group-rule", Condition: rule.AlwaysTrue}
	require.NoError(t, s.CreateOrReplace(ctx, group, groupWide))

	require.NoError(t, s.DeleteByName(ctx, "rule-C1-SKU-1"))
	require.NoError(t, s.DeleteByName(ctx, "rule-C1-SKU-1"))

	stored = nil
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, "group-rule", stored[0].Name)
	assert.Nil(t, stored[0].SKU)
}

func TestTierPriceRepository(t *testing.T) {
	resolver, db := setupSQLite(t)
	ctx := context.Background()
	r := repo.NewTierPriceRepository(resolver, testutil.TestDBName)

	tiers := []repo.TierPriceRecord{
		{SKU: "SKU-1", Qty: 1, Value: 9},
		{SKU: "SKU-1", Qty: 10, Value: 8},
		{SKU: "SKU-2", Qty: 1, Value: 5},
	}
	require.NoError(t, db.Create(&tiers).Error)

	removed, err := r.DeleteBySku(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = r.DeleteBySku(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}
