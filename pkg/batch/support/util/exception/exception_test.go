package exception_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

func TestNewUploadErrorfExtractsTrailingCause(t *testing.T) {
	err := exception.NewUploadErrorf("mutation", exception.KindPersistence, "failed to save %s", "SKU-1", sql.ErrConnDone)

	assert.Equal(t, "failed to save SKU-1", err.Message)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.ErrorIs(t, err, exception.ErrPersistence)
	assert.NotErrorIs(t, err, exception.ErrNotFound)
	assert.Equal(t, "[mutation] PersistenceError: failed to save SKU-1: sql: connection is already closed", err.Error())
}

func TestKindOfThroughWrapping(t *testing.T) {
	inner := exception.NewUploadError("dotconvention", exception.KindPathNotFound, "segment 'price' missing", nil)
	wrapped := fmt.Errorf("group SKU-9: %w", inner)

	kind, ok := exception.KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, exception.KindPathNotFound, kind)
	assert.True(t, exception.IsKind(wrapped, exception.KindPathNotFound))

	_, ok = exception.KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestExtractErrorMessage(t *testing.T) {
	assert.Equal(t, "", exception.ExtractErrorMessage(nil))
	assert.Equal(t, "plain", exception.ExtractErrorMessage(errors.New("plain")))
	assert.Equal(t, "FROM DATE INVALID", exception.ExtractErrorMessage(
		exception.NewUploadError("uploader", exception.KindInvalidDate, "FROM DATE INVALID", nil)))
}

func TestAppendAndCount(t *testing.T) {
	var agg error
	agg = exception.Append(agg, nil)
	assert.NoError(t, agg)
	assert.Equal(t, 0, exception.Count(agg))

	agg = exception.Append(agg, errors.New("a"), nil, errors.New("b"))
	agg = exception.Append(agg, errors.New("c"))
	assert.Equal(t, 3, exception.Count(agg))
	assert.Equal(t, 1, exception.Count(errors.New("single")))
}
