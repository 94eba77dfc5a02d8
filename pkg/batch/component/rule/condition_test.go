package rule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/surfin-transporter/pkg/batch/component/rule"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

func TestSkuCondition(t *testing.T) {
	assert.Equal(t, `product.sku == "ABC-1"`, rule.SkuCondition("ABC-1"))
	assert.Equal(t, `product.sku == "say \"hi\""`, rule.SkuCondition(`say "hi"`))
}

func TestEvaluator_Matches(t *testing.T) {
	ev, err := rule.NewEvaluator()
	require.NoError(t, err)

	cond := rule.SkuCondition("ABC-1")
	ok, err := ev.Matches(cond, map[string]interface{}{"sku": "ABC-1"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ev.Matches(cond, map[string]interface{}{"sku": "ABC-2"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = ev.Matches(rule.AlwaysTrue, map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluator_Validate(t *testing.T) {
	ev, err := rule.NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		condition string
		sku       string
		wantErr   bool
	}{
		{"sku condition selects its own sku", rule.SkuCondition(`we"ird`), `we"ird`, false},
		{"group-wide rule", rule.AlwaysTrue, "", false},
		{"condition for another sku", rule.SkuCondition("A"), "B", true},
		{"syntax error", "product.sku ==", "A", true},
		{"non boolean", "product.sku", "A", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ev.Validate(tt.condition, tt.sku)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, exception.ErrConfiguration)
		})
	}
}
