package gorm_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	repo "github.com/tigerroll/surfin-transporter/pkg/batch/infrastructure/repository/gorm"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	testutil "github.com/tigerroll/surfin-transporter/pkg/batch/test"
)

func TestTierPriceRepositoryDeleteSQL(t *testing.T) {
	conn, mock := testutil.NewSQLMockConnection(t)
	r := repo.NewTierPriceRepository(testutil.NewStaticConnectionResolver(conn), testutil.TestDBName)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `catalog_tier_price` WHERE sku = ?")).
		WithArgs("SKU-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	removed, err := r.DeleteBySku(context.Background(), "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTierPriceRepositoryDeleteFailureIsPersistence(t *testing.T) {
	conn, mock := testutil.NewSQLMockConnection(t)
	r := repo.NewTierPriceRepository(testutil.NewStaticConnectionResolver(conn), testutil.TestDBName)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `catalog_tier_price`")).
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := r.DeleteBySku(context.Background(), "SKU-1")
	assert.True(t, exception.IsKind(err, exception.KindPersistence))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerGroupAssignUnchangedRowSucceeds(t *testing.T) {
	conn, mock := testutil.NewSQLMockConnection(t)
	s := repo.NewCustomerGroupService(testutil.NewStaticConnectionResolver(conn), testutil.TestDBName)

	// MySQL reports 0 affected rows when the customer is already in the group.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `customer` SET `group_id`=? WHERE code = ?")).
		WithArgs(int64(4), "C9").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `customer` WHERE code = ?")).
		WithArgs("C9").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	require.NoError(t, s.AssignCustomer(context.Background(), 4, "C9"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerGroupAssignUnknownCustomerIsNotFound(t *testing.T) {
	conn, mock := testutil.NewSQLMockConnection(t)
	s := repo.NewCustomerGroupService(testutil.NewStaticConnectionResolver(conn), testutil.TestDBName)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `customer` SET `group_id`=? WHERE code = ?")).
		WithArgs(int64(4), "C404").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `customer` WHERE code = ?")).
		WithArgs("C404").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	err := s.AssignCustomer(context.Background(), 4, "C404")
	assert.True(t, exception.IsKind(err, exception.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityUpdateManipulatedUnchangedPayloadSucceeds(t *testing.T) {
	conn, mock := testutil.NewSQLMockConnection(t)
	r := repo.NewEntityRepository(testutil.NewStaticConnectionResolver(conn), testutil.TestDBName)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `transporter_entity` SET `data_manipulated`=? WHERE id = ?")).
		WithArgs(sqlmock.AnyArg(), int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `transporter_entity` WHERE id = ?")).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	entity := &model.Entity{ID: 12, DataManipulated: model.NewMap()}
	require.NoError(t, r.UpdateManipulated(context.Background(), entity))
	assert.NoError(t, mock.ExpectationsWereMet())
}
