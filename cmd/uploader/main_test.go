package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
)

func TestEmbeddedConfig(t *testing.T) {
	t.Setenv("ACTIVITY_ID", "3")
	t.Setenv("CATALOG_DB_TYPE", "postgres")
	t.Setenv("TZ", "")

	cfg, err := config.LoadConfig("testdata/missing.env", embeddedConfig)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, int64(3), cfg.Surfin.Upload.ActivityID)
	assert.Equal(t, "base_price", cfg.Surfin.Upload.Uploader)
	assert.Len(t, cfg.Surfin.Upload.Uploaders, 5)
	assert.Equal(t, "postgres", cfg.Surfin.AdapterConfigs["catalog"].(map[string]interface{})["type"])
	assert.Equal(t, "none", cfg.Surfin.Observability.Metrics)
	assert.False(t, cfg.Surfin.Report.Enabled)
	assert.Equal(t, "UTC", cfg.Surfin.System.Timezone)
}
