package gorm

import (
	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
)

func toDomainEntity(r *EntityRecord) *model.Entity {
	original := r.DataOriginal
	if original == nil {
		original = model.NewMap()
	}
	manipulated := r.DataManipulated
	if manipulated == nil || (manipulated.Kind() == model.KindMap && manipulated.Len() == 0) {
		// Nothing manipulated yet: start from a copy of the original payload.
		manipulated = original.Clone()
	}
	return &model.Entity{
		ID:              r.ID,
		ActivityID:      r.ActivityID,
		Identifier:      r.Identifier,
		Type:            r.Type,
		DataOriginal:    original,
		DataManipulated: manipulated,
	}
}

func toDomainProduct(r *ProductRecord) *model.Product {
	return &model.Product{
		ID:              r.ID,
		SKU:             r.SKU,
		TypeID:          r.TypeID,
		Name:            r.Name,
		URLKey:          r.URLKey,
		Price:           r.Price,
		SpecialPrice:    r.SpecialPrice,
		SpecialFromDate: r.SpecialFromDate,
		SpecialToDate:   r.SpecialToDate,
	}
}

func toDomainUrlRewrite(r *UrlRewriteRecord) model.UrlRewrite {
	return model.UrlRewrite{
		ID:          r.ID,
		RequestPath: r.RequestPath,
		EntityType:  r.EntityType,
		EntityID:    r.EntityID,
	}
}

func fromDomainRule(groupID int64, rule model.PriceRule) *CatalogRuleRecord {
	record := &CatalogRuleRecord{
		Name:            rule.Name,
		CustomerGroupID: groupID,
		FromDate:        rule.From,
		ToDate:          rule.To,
		Amount:          rule.Amount,
		ConditionExpr:   rule.Condition,
	}
	if rule.SKU != "" {
		sku := rule.SKU
		record.SKU = &sku
	}
	return record
}
