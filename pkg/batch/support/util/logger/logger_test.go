package logger_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

func captureJSON(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	logger.SetOutput(buf, true)
	t.Cleanup(func() {
		logger.SetLogLevel("INFO")
	})
	return buf
}

func TestLevelFiltering(t *testing.T) {
	buf := captureJSON(t)
	logger.SetLogLevel("WARN")

	logger.Infof("hidden %d", 1)
	logger.Warnf("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden 1")
	assert.Contains(t, out, "shown 2")
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	captureJSON(t)
	logger.SetLogLevel("verbose")
	assert.Equal(t, logger.LevelInfo, logger.GetLogLevel())
}

func TestWithFieldsAttachesStructuredContext(t *testing.T) {
	buf := captureJSON(t)
	logger.SetLogLevel("DEBUG")

	entry := logger.WithFields(logger.Fields{"activityId": 42}).WithField("uploaderType", "base_price")
	entry.Errorf("failed %s", "SKU-1")

	line := strings.TrimSpace(buf.String())
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, "error", decoded["level"])
	assert.Equal(t, "failed SKU-1", decoded["message"])
	assert.EqualValues(t, 42, decoded["activityId"])
	assert.Equal(t, "base_price", decoded["uploaderType"])
}
