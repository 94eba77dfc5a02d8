package configbinder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

type sampleOptions struct {
	Field   string        `yaml:"field" required:"true"`
	Reindex bool          `yaml:"reindex"`
	Limit   int           `yaml:"limit"`
	Timeout time.Duration `yaml:"timeout"`
	Tags    []string      `yaml:"tags"`
}

func TestBindPropertiesWeaklyTyped(t *testing.T) {
	var opts sampleOptions
	err := configbinder.BindProperties(map[string]interface{}{
		"field":   "price.value",
		"reindex": "true",
		"limit":   "12",
		"timeout": "1500ms",
		"tags":    "a,b",
	}, &opts)

	require.NoError(t, err)
	assert.Equal(t, "price.value", opts.Field)
	assert.True(t, opts.Reindex)
	assert.Equal(t, 12, opts.Limit)
	assert.Equal(t, 1500*time.Millisecond, opts.Timeout)
	assert.Equal(t, []string{"a", "b"}, opts.Tags)
}

func TestBindPropertiesMissingRequired(t *testing.T) {
	var opts sampleOptions
	err := configbinder.BindProperties(map[string]interface{}{"limit": 3}, &opts)

	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfiguration))
	assert.Contains(t, err.Error(), "'field'")
}

func TestBindPropertiesTypeMismatch(t *testing.T) {
	var opts sampleOptions
	err := configbinder.BindProperties(map[string]interface{}{
		"field": "x",
		"limit": "not-a-number",
	}, &opts)

	require.Error(t, err)
	assert.True(t, exception.IsKind(err, exception.KindConfiguration))
}
