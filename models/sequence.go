package models

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const transactionSerialSequence = "transactions.sr_no"

// Sequence is a named counter advanced atomically inside the caller's
// DB transaction.
type Sequence struct {
	Name    string `gorm:"primaryKey;size:50" json:"name"`
	Counter int64  `gorm:"not null;default:0" json:"counter"`
}

// nextSerial increments the counter and returns the new value. The row
// stays locked by the update until tx ends.
func nextSerial(tx *gorm.DB, name string) (int, error) {
	result := tx.Model(&Sequence{}).Where("name = ?", name).
		UpdateColumn("counter", gorm.Expr("counter + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("sequence %q is not initialised", name)
	}
	var seq Sequence
	if err := tx.Where("name = ?", name).Take(&seq).Error; err != nil {
		return 0, err
	}
	return int(seq.Counter), nil
}

func maxSerialNo(tx *gorm.DB) (int64, error) {
	var highest int64
	if err := tx.Model(&Transaction{}).Select("COALESCE(MAX(sr_no), 0)").Scan(&highest).Error; err != nil {
		return 0, err
	}
	return highest, nil
}

// ensureSerialSequence creates the srNo counter, starting after the
// highest serial already stored.
func ensureSerialSequence(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		highest, err := maxSerialNo(tx)
		if err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&Sequence{Name: transactionSerialSequence, Counter: highest}).Error
	})
}

// resyncSerialSequence moves the counter forward to the stored maximum.
func resyncSerialSequence(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		highest, err := maxSerialNo(tx)
		if err != nil {
			return err
		}
		return tx.Model(&Sequence{}).
			Where("name = ? AND counter < ?", transactionSerialSequence, highest).
			UpdateColumn("counter", highest).Error
	})
}
