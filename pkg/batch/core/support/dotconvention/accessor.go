// Package dotconvention reads and writes values inside entity groups and records
// addressed by dot-separated paths.
//
// The first segment of a path selects an entity of a group by its type; the
// remaining segments descend into that entity's manipulated payload. Map
// children are addressed by name and list children by a decimal index. There
// are no wildcards.
package dotconvention

import (
	"strconv"
	"strings"

	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

const (
	moduleName = "dotconvention"
	// Separator splits path segments.
	Separator = "."
)

// Field is the result of a read. A missing or null leaf yields an absent Field,
// which callers treat as "no value supplied" rather than as an error.
type Field struct {
	value *model.Value
}

// Absent returns a Field with no value.
func Absent() Field { return Field{} }

// Present wraps v; a null v is still absent.
func Present(v *model.Value) Field {
	if v.IsNull() {
		return Field{}
	}
	return Field{value: v}
}

// IsPresent reports whether the field carries a non-null value.
func (f Field) IsPresent() bool { return f.value != nil }

// Value returns the underlying node, or nil when absent.
func (f Field) Value() *model.Value { return f.value }

// String returns the scalar text, or "" when absent.
func (f Field) String() string { return f.value.String() }

// Float returns the numeric interpretation of the field.
func (f Field) Float() (float64, bool) {
	if f.value == nil {
		return 0, false
	}
	return f.value.Float()
}

// PathAccessor implements the dot-path convention. It is stateless.
type PathAccessor struct{}

// NewPathAccessor creates a new PathAccessor.
func NewPathAccessor() *PathAccessor { return &PathAccessor{} }

// Split breaks path into its segments. Empty segments are rejected.
func Split(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, exception.NewUploadError(moduleName, exception.KindPathNotFound, "empty path", nil)
	}
	segments := strings.Split(path, Separator)
	for _, s := range segments {
		if s == "" {
			return nil, exception.NewUploadErrorf(moduleName, exception.KindPathNotFound, "path '%s' has an empty segment", path)
		}
	}
	return segments, nil
}

// GetFirst returns the first segment of path (the group key).
func (a *PathAccessor) GetFirst(path string) (string, error) {
	segments, err := Split(path)
	if err != nil {
		return "", err
	}
	return segments[0], nil
}

// GetFromSecondInDotConvention returns path without its first segment, in dot form.
// A single-segment path has no remainder and fails with PathNotFound.
func (a *PathAccessor) GetFromSecondInDotConvention(path string) (string, error) {
	segments, err := Split(path)
	if err != nil {
		return "", err
	}
	if len(segments) < 2 {
		return "", exception.NewUploadErrorf(moduleName, exception.KindPathNotFound, "path '%s' has no segment after the group key", path)
	}
	return strings.Join(segments[1:], Separator), nil
}

// GetValue resolves path against group: the first segment selects the entity by
// type and the rest resolves inside its manipulated payload.
func (a *PathAccessor) GetValue(group model.EntityGroup, path string) (Field, error) {
	segments, err := Split(path)
	if err != nil {
		return Absent(), err
	}
	entity, ok := group[segments[0]]
	if !ok || entity == nil {
		return Absent(), exception.NewUploadErrorf(moduleName, exception.KindPathNotFound,
			"group has no entity of type '%s' (path '%s')", segments[0], path)
	}
	if len(segments) == 1 {
		return Present(entity.DataManipulated), nil
	}
	return resolve(entity.DataManipulated, segments[1:], path)
}

// GetValueFromSecond resolves path against a single record, ignoring the first segment.
func (a *PathAccessor) GetValueFromSecond(record *model.Value, path string) (Field, error) {
	segments, err := Split(path)
	if err != nil {
		return Absent(), err
	}
	if len(segments) < 2 {
		return Absent(), exception.NewUploadErrorf(moduleName, exception.KindPathNotFound, "path '%s' has no segment after the group key", path)
	}
	return resolve(record, segments[1:], path)
}

// SetValue writes value at path inside record, creating intermediate maps.
// Writing through an existing scalar fails with PathNotFound.
func (a *PathAccessor) SetValue(record *model.Value, path string, value *model.Value) error {
	segments, err := Split(path)
	if err != nil {
		return err
	}
	if !record.IsContainer() {
		return exception.NewUploadErrorf(moduleName, exception.KindPathNotFound, "cannot write '%s' into a %s record", path, record.Kind())
	}

	node := record
	for i, seg := range segments {
		last := i == len(segments)-1
		switch node.Kind() {
		case model.KindMap:
			if last {
				node.Set(seg, value)
				return nil
			}
			child, ok := node.Get(seg)
			if !ok || child.IsNull() {
				child = model.NewMap()
				node.Set(seg, child)
			}
			node = child
		case model.KindList:
			idx, convErr := strconv.Atoi(seg)
			if convErr != nil || idx < 0 || idx > node.Len() {
				return exception.NewUploadErrorf(moduleName, exception.KindPathNotFound,
					"segment '%s' of '%s' is not a valid list index", seg, path)
			}
			if last {
				node.SetIndex(idx, value)
				return nil
			}
			child, ok := node.Index(idx)
			if !ok || child.IsNull() {
				child = model.NewMap()
				node.SetIndex(idx, child)
			}
			node = child
		default:
			return exception.NewUploadErrorf(moduleName, exception.KindPathNotFound,
				"segment '%s' of '%s' descends into a %s value", seg, path, node.Kind())
		}
	}
	return nil
}

// resolve walks segments from node. Missing intermediate segments are errors;
// a missing or null leaf is absent.
func resolve(node *model.Value, segments []string, path string) (Field, error) {
	current := node
	for i, seg := range segments {
		last := i == len(segments)-1
		child, found, err := step(current, seg, path)
		if err != nil {
			return Absent(), err
		}
		if !found {
			if last {
				return Absent(), nil
			}
			return Absent(), exception.NewUploadErrorf(moduleName, exception.KindPathNotFound,
				"segment '%s' of '%s' not found", seg, path)
		}
		if !last && child.IsNull() {
			return Absent(), exception.NewUploadErrorf(moduleName, exception.KindPathNotFound,
				"segment '%s' of '%s' is null", seg, path)
		}
		current = child
	}
	return Present(current), nil
}

func step(node *model.Value, seg, path string) (*model.Value, bool, error) {
	switch node.Kind() {
	case model.KindMap:
		child, ok := node.Get(seg)
		return child, ok, nil
	case model.KindList:
		idx, err := strconv.Atoi(seg)
		if err != nil {
			return nil, false, exception.NewUploadErrorf(moduleName, exception.KindPathNotFound,
				"segment '%s' of '%s' is not a list index", seg, path)
		}
		child, ok := node.Index(idx)
		return child, ok, nil
	default:
		return nil, false, exception.NewUploadErrorf(moduleName, exception.KindPathNotFound,
			"segment '%s' of '%s' descends into a %s value", seg, path, node.Kind())
	}
}
