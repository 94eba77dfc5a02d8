// Package serialization renders uploader properties for logs and reports,
// masking sensitive values.
package serialization

import (
	"encoding/json"
	"strings"

	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

const (
	moduleName = "serialization"
	maskValue  = "********"
)

// MaskProperties returns a copy of properties where every value whose key
// matches one of maskedKeys (case-insensitively) is replaced. Nested maps are
// masked recursively; the input is never modified.
func MaskProperties(properties map[string]interface{}, maskedKeys []string) map[string]interface{} {
	if len(properties) == 0 {
		return map[string]interface{}{}
	}

	masked := make(map[string]bool, len(maskedKeys))
	for _, k := range maskedKeys {
		masked[strings.ToLower(k)] = true
	}
	return maskMap(properties, masked)
}

func maskMap(properties map[string]interface{}, masked map[string]bool) map[string]interface{} {
	out := make(map[string]interface{}, len(properties))
	for k, v := range properties {
		if masked[strings.ToLower(k)] {
			out[k] = maskValue
			continue
		}
		switch nested := v.(type) {
		case map[string]interface{}:
			out[k] = maskMap(nested, masked)
		case map[interface{}]interface{}:
			converted := make(map[string]interface{}, len(nested))
			for nk, nv := range nested {
				if s, ok := nk.(string); ok {
					converted[s] = nv
				}
			}
			out[k] = maskMap(converted, masked)
		default:
			out[k] = v
		}
	}
	return out
}

// MarshalMaskedProperties masks properties and serializes them as JSON.
func MarshalMaskedProperties(properties map[string]interface{}, maskedKeys []string) ([]byte, error) {
	data, err := json.Marshal(MaskProperties(properties, maskedKeys))
	if err != nil {
		logger.Errorf("Failed to serialize properties: %v", err)
		return nil, exception.NewUploadError(moduleName, exception.KindInvalidValue, "failed to serialize properties", err)
	}
	return data, nil
}
