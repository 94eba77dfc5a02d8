package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	logger "github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

func TestLoggingRunListener(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, true)
	logger.SetLogLevel("INFO")
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr, false)
	})

	summary := model.NewRunSummary(42, "prices", "base_price")
	failed := model.NewGroupOutcome("sku-9")
	_ = failed.MarkAsProcessing()
	_ = failed.MarkAsFailed(errors.New("price missing"))
	summary.Outcomes = []*model.GroupOutcome{failed}
	summary.Aborted = true
	summary.EndTime = summary.StartTime.Add(time.Second)

	l := NewLoggingRunListener()
	l.BeforeRun(context.Background(), summary)
	l.AfterRun(context.Background(), summary)

	out := buf.String()
	assert.Contains(t, out, "BeforeRun - Uploader: prices")
	assert.Contains(t, out, `"entityIdentifier":"sku-9"`)
	assert.Contains(t, out, "price missing")
	assert.Contains(t, out, "(aborted)")
	assert.Contains(t, out, `"activityId":42`)
}
