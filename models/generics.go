package models

import (
	"context"
	"errors"

	"github.com/mmdatafocus/inout_backend/utils"
	"gorm.io/gorm"
)

// fetchModel loads one row by id; a missing row becomes a NotFound error
// carrying notFound as its message.
func fetchModel[T any](ctx context.Context, db *gorm.DB, id int, notFound string) (*T, error) {
	var result T
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError(notFound)
		}
		return nil, err
	}
	return &result, nil
}

func countWhere[T any](ctx context.Context, db *gorm.DB, condition string, values ...interface{}) (int64, error) {
	var model T
	var count int64
	if err := db.WithContext(ctx).Model(&model).Where(condition, values...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// validateUnique fails with a DuplicateKey error when another row (not
// exceptId) already holds value in column.
func validateUnique[T any](ctx context.Context, db *gorm.DB, column string, value interface{}, exceptId int, message string) error {
	var count int64
	var err error
	if exceptId == 0 {
		count, err = countWhere[T](ctx, db, column+" = ?", value)
	} else {
		count, err = countWhere[T](ctx, db, column+" = ? AND NOT id = ?", value, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return utils.NewDuplicateError(message)
	}
	return nil
}
