package test

import (
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
)

// NewTestEntity creates a staged entity whose manipulated payload is built from data.
// It panics on payloads FromInterface cannot represent, which only happens with
// malformed test input.
func NewTestEntity(activityID int64, identifier, entityType string, data map[string]interface{}) *model.Entity {
	v, err := model.FromInterface(data)
	if err != nil {
		panic(err)
	}
	return &model.Entity{
		ActivityID:      activityID,
		Identifier:      identifier,
		Type:            entityType,
		DataOriginal:    v.Clone(),
		DataManipulated: v,
	}
}

// NewTestGroup creates a GroupEntry holding the given entities keyed by their type.
func NewTestGroup(identifier string, entities ...*model.Entity) model.GroupEntry {
	group := model.EntityGroup{}
	for _, e := range entities {
		group[e.Type] = e
	}
	return model.GroupEntry{Identifier: identifier, Entities: group}
}

// NewTestPriceBatch creates a batch with one "product" entity per identifier,
// each carrying {"price": price}. A nil price leaves the field null.
func NewTestPriceBatch(activityID int64, prices map[string]interface{}, order ...string) model.ActivityBatch {
	entities := make([]*model.Entity, 0, len(order))
	for _, id := range order {
		entities = append(entities, NewTestEntity(activityID, id, "product", map[string]interface{}{
			"sku":   id,
			"price": prices[id],
		}))
	}
	return model.NewActivityBatch(entities)
}
