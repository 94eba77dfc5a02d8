package model

import "sort"

// Entity is one staged, transformed import record belonging to an activity.
// Type is the group key used as the first segment of dot paths.
type Entity struct {
	ID              int64
	ActivityID      int64
	Identifier      string
	Type            string
	DataOriginal    *Value
	DataManipulated *Value
}

// EntityGroup holds the correlated entities sharing one identifier, keyed by Type.
type EntityGroup map[string]*Entity

// Types returns the sorted entity types present in the group.
func (g EntityGroup) Types() []string {
	types := make([]string, 0, len(g))
	for t := range g {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// GroupEntry is one identifier and its entity group.
type GroupEntry struct {
	Identifier string
	Entities   EntityGroup
}

// ActivityBatch is the ordered list of groups of one activity, in the order the
// staging store returned the first entity of each identifier.
type ActivityBatch []GroupEntry

// NewActivityBatch groups entities by identifier, keeping first-seen order.
// A later entity with the same identifier and type replaces the earlier one.
func NewActivityBatch(entities []*Entity) ActivityBatch {
	index := make(map[string]int)
	batch := make(ActivityBatch, 0)
	for _, e := range entities {
		pos, ok := index[e.Identifier]
		if !ok {
			pos = len(batch)
			index[e.Identifier] = pos
			batch = append(batch, GroupEntry{Identifier: e.Identifier, Entities: EntityGroup{}})
		}
		batch[pos].Entities[e.Type] = e
	}
	return batch
}

// Identifiers returns the identifiers in batch order.
func (b ActivityBatch) Identifiers() []string {
	ids := make([]string, len(b))
	for i, entry := range b {
		ids[i] = entry.Identifier
	}
	return ids
}
