package uploader

import (
	"strings"
	"time"

	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/support/dotconvention"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

// fieldReader extracts typed fields from a group through dot paths.
type fieldReader struct {
	accessor   *dotconvention.PathAccessor
	dateLayout string
	location   *time.Location
}

// price reads a numeric field. present is false when the field is absent or null.
func (r fieldReader) price(group model.EntityGroup, path string) (price float64, present bool, err error) {
	f, err := r.accessor.GetValue(group, path)
	if err != nil {
		return 0, false, err
	}
	if !f.IsPresent() {
		return 0, false, nil
	}
	v, ok := f.Float()
	if !ok {
		return 0, true, exception.NewUploadErrorf(moduleName, exception.KindInvalidValue,
			"field '%s' is not a number: '%s'", path, f.String())
	}
	return v, true, nil
}

// requiredString reads a non-empty text field.
func (r fieldReader) requiredString(group model.EntityGroup, path string) (string, error) {
	f, err := r.accessor.GetValue(group, path)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(f.String())
	if !f.IsPresent() || s == "" {
		return "", exception.NewUploadErrorf(moduleName, exception.KindPathNotFound, "required field '%s' has no value", path)
	}
	return s, nil
}

// date reads an optional date bound. An unset path or an absent value yields nil.
func (r fieldReader) date(group model.EntityGroup, path string) (*time.Time, error) {
	if path == "" {
		return nil, nil
	}
	f, err := r.accessor.GetValue(group, path)
	if err != nil {
		return nil, err
	}
	raw := strings.TrimSpace(f.String())
	if !f.IsPresent() || raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(r.dateLayout, raw, r.location)
	if err != nil {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindInvalidDate,
			"field '%s' value '%s' does not match layout '%s'", path, raw, r.dateLayout, err)
	}
	return &t, nil
}

// requiredDate reads a date bound that must be present.
func (r fieldReader) requiredDate(group model.EntityGroup, path string) (*time.Time, error) {
	t, err := r.date(group, path)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindInvalidDate, "field '%s' has no date", path)
	}
	return t, nil
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
