package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	"github.com/tigerroll/surfin-transporter/pkg/batch/component/rule"
	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

// CatalogRuleService implements port.CatalogRuleService over catalog_rule.
// Conditions are validated against the rule's own SKU before they are stored.
type CatalogRuleService struct {
	connectionSource
	evaluator *rule.Evaluator
}

// NewCatalogRuleService creates a CatalogRuleService on the named connection.
func NewCatalogRuleService(dbResolver database.DBConnectionResolver, dbName string, evaluator *rule.Evaluator) *CatalogRuleService {
	return &CatalogRuleService{
		connectionSource: newConnectionSource(dbResolver, dbName),
		evaluator:        evaluator,
	}
}

func (s *CatalogRuleService) CreateOrReplace(ctx context.Context, group *model.CustomerGroup, priceRule model.PriceRule) error {
	if group == nil {
		return exception.NewUploadErrorf(moduleName, exception.KindInvalidValue, "rule '%s' has no customer group", priceRule.Name)
	}
	if err := s.evaluator.Validate(priceRule.Condition, priceRule.SKU); err != nil {
		return err
	}

	db, err := s.db(ctx)
	if err != nil {
		return err
	}

	record := fromDomainRule(group.ID, priceRule)
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", priceRule.Name).Delete(&CatalogRuleRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return persistenceError("failed to store rule '%s'", priceRule.Name, err)
	}
	return nil
}

func (s *CatalogRuleService) DeleteByName(ctx context.Context, name string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	if err := db.Where("name = ?", name).Delete(&CatalogRuleRecord{}).Error; err != nil {
		return persistenceError("failed to delete rule '%s'", name, err)
	}
	return nil
}
