// Package configbinder binds loosely typed property maps (as found under
// `surfin.upload.uploaders.<name>.properties`) onto typed option structs.
package configbinder

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

const moduleName = "configbinder"

// BindProperties binds a map of properties to a target struct using mapstructure.
// It uses the "yaml" tag for binding and allows weakly typed input
// (e.g. "true" to bool, "3" to int). Fields tagged `required:"true"` must end up
// non-zero, otherwise a ConfigurationError naming the missing key is returned.
//
// Parameters:
//
//	properties: The map of properties to bind.
//	target: A pointer to the struct to bind the properties to.
func BindProperties(properties map[string]interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return exception.NewUploadError(moduleName, exception.KindConfiguration, "failed to create mapstructure decoder", err)
	}

	if err := decoder.Decode(properties); err != nil {
		return exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
			"failed to bind properties to %s", typeName(target), err)
	}

	return checkRequired(reflect.ValueOf(target))
}

func checkRequired(v reflect.Value) error {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get("required") != "true" {
			continue
		}
		if v.Field(i).IsZero() {
			key := strings.Split(f.Tag.Get("yaml"), ",")[0]
			if key == "" {
				key = f.Name
			}
			return exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
				"required property '%s' is missing for %s", key, t.Name())
		}
	}
	return nil
}

func typeName(target interface{}) string {
	t := reflect.TypeOf(target)
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
