package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	// KindNull is an explicit null (or a nil *Value).
	KindNull ValueKind = iota
	// KindScalar holds a string, number (json.Number) or bool.
	KindScalar
	// KindMap holds named children.
	KindMap
	// KindList holds positional children.
	KindList
)

// String returns the string representation of the ValueKind.
func (k ValueKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "null"
	}
}

// Value is a node of the tagged value tree that holds staged record payloads.
// A nil *Value behaves as Null.
type Value struct {
	kind   ValueKind
	scalar interface{}
	fields map[string]*Value
	items  []*Value
}

// Null returns an explicit null node.
func Null() *Value { return &Value{kind: KindNull} }

// Scalar wraps a string, bool or numeric value. Other types are stored via fmt.Sprint.
func Scalar(v interface{}) *Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case string, bool, json.Number:
		return &Value{kind: KindScalar, scalar: t}
	case int:
		return &Value{kind: KindScalar, scalar: json.Number(strconv.Itoa(t))}
	case int64:
		return &Value{kind: KindScalar, scalar: json.Number(strconv.FormatInt(t, 10))}
	case float64:
		return &Value{kind: KindScalar, scalar: json.Number(strconv.FormatFloat(t, 'f', -1, 64))}
	case float32:
		return &Value{kind: KindScalar, scalar: json.Number(strconv.FormatFloat(float64(t), 'f', -1, 32))}
	default:
		return &Value{kind: KindScalar, scalar: fmt.Sprint(t)}
	}
}

// NewMap returns an empty map node.
func NewMap() *Value { return &Value{kind: KindMap, fields: map[string]*Value{}} }

// NewList returns a list node holding items.
func NewList(items ...*Value) *Value {
	return &Value{kind: KindList, items: append([]*Value(nil), items...)}
}

// FromInterface converts decoded JSON/YAML data (maps, slices, scalars) into a Value tree.
func FromInterface(v interface{}) (*Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case *Value:
		return t.Clone(), nil
	case map[string]interface{}:
		m := NewMap()
		for k, child := range t {
			cv, err := FromInterface(child)
			if err != nil {
				return nil, fmt.Errorf("key '%s': %w", k, err)
			}
			m.fields[k] = cv
		}
		return m, nil
	case []interface{}:
		l := NewList()
		for i, child := range t {
			cv, err := FromInterface(child)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			l.items = append(l.items, cv)
		}
		return l, nil
	case string, bool, json.Number, int, int64, float64, float32:
		return Scalar(t), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// Kind returns the variant tag.
func (v *Value) Kind() ValueKind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is nil or an explicit null.
func (v *Value) IsNull() bool { return v.Kind() == KindNull }

// IsContainer reports whether v can hold children.
func (v *Value) IsContainer() bool {
	k := v.Kind()
	return k == KindMap || k == KindList
}

// Get returns the named child of a map node.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != KindMap {
		return nil, false
	}
	child, ok := v.fields[key]
	return child, ok
}

// Set stores child under key. It panics if v is not a map node.
func (v *Value) Set(key string, child *Value) {
	if v.Kind() != KindMap {
		panic(fmt.Sprintf("model: Set on %s value", v.Kind()))
	}
	if child == nil {
		child = Null()
	}
	v.fields[key] = child
}

// Delete removes key from a map node; it is a no-op for other kinds.
func (v *Value) Delete(key string) {
	if v.Kind() == KindMap {
		delete(v.fields, key)
	}
}

// Keys returns the sorted keys of a map node.
func (v *Value) Keys() []string {
	if v.Kind() != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Index returns the i-th child of a list node.
func (v *Value) Index(i int) (*Value, bool) {
	if v.Kind() != KindList || i < 0 || i >= len(v.items) {
		return nil, false
	}
	return v.items[i], true
}

// SetIndex replaces the i-th child of a list node. Appending at i == Len() is allowed.
func (v *Value) SetIndex(i int, child *Value) bool {
	if v.Kind() != KindList || i < 0 || i > len(v.items) {
		return false
	}
	if child == nil {
		child = Null()
	}
	if i == len(v.items) {
		v.items = append(v.items, child)
	} else {
		v.items[i] = child
	}
	return true
}

// Len returns the number of children of a container, 0 otherwise.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindMap:
		return len(v.fields)
	case KindList:
		return len(v.items)
	default:
		return 0
	}
}

// String renders a scalar as text. Non-scalars render as compact JSON; null renders as "".
func (v *Value) String() string {
	switch v.Kind() {
	case KindNull:
		return ""
	case KindScalar:
		switch s := v.scalar.(type) {
		case string:
			return s
		case json.Number:
			return s.String()
		default:
			return fmt.Sprint(s)
		}
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Float interprets a scalar as a number. Numeric strings are accepted, with
// either '.' or ',' as decimal separator.
func (v *Value) Float() (float64, bool) {
	if v.Kind() != KindScalar {
		return 0, false
	}
	switch s := v.scalar.(type) {
	case json.Number:
		f, err := s.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Bool interprets a scalar as a boolean.
func (v *Value) Bool() (bool, bool) {
	if v.Kind() != KindScalar {
		return false, false
	}
	switch s := v.scalar.(type) {
	case bool:
		return s, true
	case string:
		b, err := strconv.ParseBool(s)
		return b, err == nil
	default:
		return false, false
	}
}

// Interface converts the tree back into plain maps, slices and scalars.
func (v *Value) Interface() interface{} {
	switch v.Kind() {
	case KindScalar:
		return v.scalar
	case KindMap:
		m := make(map[string]interface{}, len(v.fields))
		for k, child := range v.fields {
			m[k] = child.Interface()
		}
		return m
	case KindList:
		l := make([]interface{}, len(v.items))
		for i, child := range v.items {
			l[i] = child.Interface()
		}
		return l
	default:
		return nil
	}
}

// Clone returns a deep copy of v.
func (v *Value) Clone() *Value {
	switch v.Kind() {
	case KindScalar:
		return &Value{kind: KindScalar, scalar: v.scalar}
	case KindMap:
		m := NewMap()
		for k, child := range v.fields {
			m.fields[k] = child.Clone()
		}
		return m
	case KindList:
		l := NewList()
		for _, child := range v.items {
			l.items = append(l.items, child.Clone())
		}
		return l
	default:
		return Null()
	}
}

// Equal reports whether two trees hold the same data.
func (v *Value) Equal(other *Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindScalar:
		return v.String() == other.String()
	case KindMap:
		if len(v.fields) != len(other.fields) {
			return false
		}
		for k, child := range v.fields {
			oc, ok := other.fields[k]
			if !ok || !child.Equal(oc) {
				return false
			}
		}
		return true
	case KindList:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// MarshalJSON implements json.Marshaler.
func (v *Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler. Numbers keep their textual form.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

// Value implements driver.Valuer so the tree can be stored in a JSON text column.
func (v *Value) Value() (driver.Value, error) {
	if v == nil {
		return "{}", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner. NULL and empty columns scan into an empty map.
func (v *Value) Scan(src interface{}) error {
	var b []byte
	switch t := src.(type) {
	case nil:
		*v = *NewMap()
		return nil
	case []byte:
		b = t
	case string:
		b = []byte(t)
	default:
		return fmt.Errorf("unsupported Scan type for Value: %T", src)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		*v = *NewMap()
		return nil
	}
	if err := v.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("failed to unmarshal record JSON: %w", err)
	}
	return nil
}
