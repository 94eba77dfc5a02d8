package gorm

import (
	"context"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	model "github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

// CustomerGroupService implements port.CustomerGroupService.
type CustomerGroupService struct {
	connectionSource
}

// NewCustomerGroupService creates a CustomerGroupService on the named connection.
func NewCustomerGroupService(dbResolver database.DBConnectionResolver, dbName string) *CustomerGroupService {
	return &CustomerGroupService{connectionSource: newConnectionSource(dbResolver, dbName)}
}

func (s *CustomerGroupService) GetOrCreate(ctx context.Context, code string) (*model.CustomerGroup, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	var record CustomerGroupRecord
	if err := db.Where(CustomerGroupRecord{Code: code}).FirstOrCreate(&record).Error; err != nil {
		return nil, persistenceError("failed to get or create customer group '%s'", code, err)
	}
	return &model.CustomerGroup{ID: record.ID, Code: record.Code}, nil
}

// AssignCustomer moves an existing customer into the group. Assigning a
// customer to the group it already belongs to succeeds.
func (s *CustomerGroupService) AssignCustomer(ctx context.Context, groupID int64, customerCode string) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&CustomerRecord{}).Where("code = ?", customerCode).Update("group_id", groupID)
	if result.Error != nil {
		return persistenceError("failed to assign customer '%s' to group %d", customerCode, groupID, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}
	found, err := exists(db, &CustomerRecord{}, "code = ?", customerCode)
	if err != nil {
		return persistenceError("failed to look up customer '%s'", customerCode, err)
	}
	if !found {
		return exception.NewUploadErrorf(moduleName, exception.KindNotFound, "customer '%s' not found", customerCode)
	}
	return nil
}
