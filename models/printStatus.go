package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/inout_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PrintStatus records that one page of a vendor's statement was printed.
type PrintStatus struct {
	ID         int       `gorm:"primary_key" json:"id"`
	VendorName string    `gorm:"size:100;not null;uniqueIndex:idx_vendor_page" json:"vendorName"`
	PageNumber int       `gorm:"not null;uniqueIndex:idx_vendor_page" json:"pageNumber"`
	IsPrinted  bool      `gorm:"not null;default:true" json:"isPrinted"`
	PrintedAt  time.Time `json:"printedAt"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type PrintedPage struct {
	VendorName string `json:"vendorName"`
	PageNumber *int   `json:"pageNumber"`
}

type BatchPrintResult struct {
	ModifiedCount int `json:"modifiedCount"`
	UpsertedCount int `json:"upsertedCount"`
}

func (p *PrintedPage) validate() error {
	p.VendorName = strings.TrimSpace(p.VendorName)
	if p.VendorName == "" || p.PageNumber == nil {
		return utils.NewValidationError("", "vendorName and pageNumber are required")
	}
	return nil
}

func (s *Store) ListPrintStatuses(ctx context.Context) ([]*PrintStatus, error) {
	var results []*PrintStatus
	if err := s.db.WithContext(ctx).Order("vendor_name, page_number").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) ListVendorPrintStatuses(ctx context.Context, vendorName string) ([]*PrintStatus, error) {
	var results []*PrintStatus
	err := s.db.WithContext(ctx).Where("vendor_name = ?", vendorName).Order("page_number").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// markPrinted upserts one page and reports whether the row already existed.
func markPrinted(tx *gorm.DB, page PrintedPage, now time.Time) (*PrintStatus, bool, error) {
	var existing int64
	err := tx.Model(&PrintStatus{}).
		Where("vendor_name = ? AND page_number = ?", page.VendorName, *page.PageNumber).
		Count(&existing).Error
	if err != nil {
		return nil, false, err
	}

	status := PrintStatus{VendorName: page.VendorName, PageNumber: *page.PageNumber, IsPrinted: true, PrintedAt: now}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vendor_name"}, {Name: "page_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_printed", "printed_at", "updated_at"}),
	}).Create(&status).Error
	if err != nil {
		return nil, false, err
	}

	var saved PrintStatus
	err = tx.Where("vendor_name = ? AND page_number = ?", page.VendorName, *page.PageNumber).Take(&saved).Error
	if err != nil {
		return nil, false, err
	}
	return &saved, existing > 0, nil
}

func (s *Store) MarkPagePrinted(ctx context.Context, page PrintedPage) (*PrintStatus, error) {
	if err := page.validate(); err != nil {
		return nil, err
	}
	var result *PrintStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		status, _, err := markPrinted(tx, page, time.Now())
		result = status
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkPagesPrinted upserts every page in one transaction.
func (s *Store) MarkPagesPrinted(ctx context.Context, pages []PrintedPage) (*BatchPrintResult, error) {
	if len(pages) == 0 {
		return nil, utils.NewValidationError("pages", "pages array is required")
	}
	for i := range pages {
		if err := pages[i].validate(); err != nil {
			return nil, err
		}
	}

	result := &BatchPrintResult{}
	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, page := range pages {
			_, existed, err := markPrinted(tx, page, now)
			if err != nil {
				return err
			}
			if existed {
				result.ModifiedCount++
			} else {
				result.UpsertedCount++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) UnmarkPagePrinted(ctx context.Context, vendorName string, pageNumber int) error {
	result := s.db.WithContext(ctx).
		Where("vendor_name = ? AND page_number = ?", vendorName, pageNumber).
		Delete(&PrintStatus{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.NewNotFoundError("Print status not found")
	}
	return nil
}

func (s *Store) ClearPrintStatuses(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("1 = 1").Delete(&PrintStatus{})
	return result.RowsAffected, result.Error
}

func (s *Store) ClearVendorPrintStatuses(ctx context.Context, vendorName string) (int64, error) {
	result := s.db.WithContext(ctx).Where("vendor_name = ?", vendorName).Delete(&PrintStatus{})
	return result.RowsAffected, result.Error
}
