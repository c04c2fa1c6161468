package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is money paid to a vendor against a (wire, payal type) balance.
type Payment struct {
	ID        int             `gorm:"primary_key" json:"id"`
	VendorId  int             `gorm:"not null;index:idx_payment_vendor_wire,priority:1" json:"vendorId"`
	Wire      string          `gorm:"size:50;not null;index:idx_payment_vendor_wire,priority:2" json:"wire"`
	PayalType string          `gorm:"size:50;not null;index:idx_payment_vendor_wire,priority:3" json:"payalType"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Date      time.Time       `gorm:"not null;index" json:"date"`
	Notes     string          `gorm:"type:text" json:"notes"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

type PaymentView struct {
	Payment
	VendorName string `json:"vendor"`
}

type NewPayment struct {
	Vendor    string           `json:"vendor"`
	Wire      string           `json:"wire"`
	PayalType string           `json:"payalType"`
	Amount    *decimal.Decimal `json:"amount"`
	Date      *DateInput       `json:"date"`
	Notes     string           `json:"notes"`
}

// PaymentPatch updates only the fields that are set.
type PaymentPatch struct {
	Vendor    *string          `json:"vendor"`
	Wire      *string          `json:"wire"`
	PayalType *string          `json:"payalType"`
	Amount    *decimal.Decimal `json:"amount"`
	Date      *DateInput       `json:"date"`
	Notes     *string          `json:"notes"`
}

type PaymentFilter struct {
	VendorName string
	Wire       string
}

type VendorPaymentStat struct {
	Vendor       string          `json:"vendor"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	PaymentCount int64           `json:"paymentCount"`
}

type PaymentStats struct {
	TotalPayments int64                `json:"totalPayments"`
	TotalAmount   decimal.Decimal      `json:"totalAmount"`
	VendorStats   []*VendorPaymentStat `json:"vendorStats"`
}

func (input *NewPayment) validate() error {
	input.Vendor = strings.TrimSpace(input.Vendor)
	input.Wire = strings.TrimSpace(input.Wire)
	input.PayalType = strings.TrimSpace(input.PayalType)
	if input.Vendor == "" || input.Wire == "" || input.PayalType == "" || input.Amount == nil || input.Date.Ptr() == nil {
		return utils.NewValidationError("", "Vendor, wire, payalType, amount, and date are required")
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("amount", "Amount must be greater than 0")
	}
	return nil
}

func (s *Store) paymentViewQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&Payment{}).
		Select("payments.*, vendors.name AS vendor_name").
		Joins("JOIN vendors ON vendors.id = payments.vendor_id")
}

func (s *Store) CreatePayment(ctx context.Context, input *NewPayment) (*PaymentView, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	vendorId, err := s.vendorIdByName(ctx, input.Vendor)
	if err != nil {
		return nil, err
	}
	payment := Payment{
		VendorId:  vendorId,
		Wire:      input.Wire,
		PayalType: input.PayalType,
		Amount:    *input.Amount,
		Date:      input.Date.Time,
		Notes:     strings.TrimSpace(input.Notes),
	}
	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}
	return s.GetPayment(ctx, payment.ID)
}

func (s *Store) GetPayment(ctx context.Context, id int) (*PaymentView, error) {
	var result PaymentView
	if err := s.paymentViewQuery(ctx).Where("payments.id = ?", id).Take(&result).Error; err != nil {
		return nil, utils.NormalizeStoreError(err, "", "Payment not found")
	}
	return &result, nil
}

// ListPayments returns payments newest first, optionally narrowed to a
// vendor (by name) and wire.
func (s *Store) ListPayments(ctx context.Context, filter PaymentFilter) ([]*PaymentView, error) {
	query := s.paymentViewQuery(ctx)
	if filter.VendorName != "" {
		vendorId, err := s.vendorIdByName(ctx, filter.VendorName)
		if err != nil {
			return nil, err
		}
		query = query.Where("payments.vendor_id = ?", vendorId)
	}
	if filter.Wire != "" {
		query = query.Where("payments.wire = ?", filter.Wire)
	}
	var results []*PaymentView
	if err := query.Order("payments.date DESC, payments.id DESC").Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) UpdatePayment(ctx context.Context, id int, patch *PaymentPatch) (*PaymentView, error) {
	if _, err := fetchModel[Payment](ctx, s.db, id, "Payment not found"); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Vendor != nil {
		vendorId, err := s.vendorIdByName(ctx, *patch.Vendor)
		if err != nil {
			return nil, err
		}
		updates["vendor_id"] = vendorId
	}
	if patch.Wire != nil {
		wire, err := utils.RequireText("wire", *patch.Wire)
		if err != nil {
			return nil, err
		}
		updates["wire"] = wire
	}
	if patch.PayalType != nil {
		payalType, err := utils.RequireText("payalType", *patch.PayalType)
		if err != nil {
			return nil, err
		}
		updates["payal_type"] = payalType
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, utils.NewValidationError("amount", "Amount must be greater than 0")
		}
		updates["amount"] = *patch.Amount
	}
	if patch.Date != nil && patch.Date.Ptr() != nil {
		updates["date"] = patch.Date.Time
	}
	if patch.Notes != nil {
		updates["notes"] = strings.TrimSpace(*patch.Notes)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&Payment{ID: id}).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetPayment(ctx, id)
}

func (s *Store) DeletePayment(ctx context.Context, id int) (*PaymentView, error) {
	existing, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&Payment{}, id).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// PaymentStats totals all payments and ranks vendors by amount paid.
func (s *Store) PaymentStats(ctx context.Context) (*PaymentStats, error) {
	stats := &PaymentStats{TotalAmount: decimal.Zero, VendorStats: []*VendorPaymentStat{}}

	var totals struct {
		Entries int64
		Total   decimal.Decimal
	}
	err := s.db.WithContext(ctx).Model(&Payment{}).
		Select("COUNT(*) AS entries, COALESCE(SUM(amount), 0) AS total").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	stats.TotalPayments = totals.Entries
	stats.TotalAmount = totals.Total

	err = s.db.WithContext(ctx).Model(&Payment{}).
		Select("vendors.name AS vendor, COALESCE(SUM(payments.amount), 0) AS total_amount, COUNT(*) AS payment_count").
		Joins("JOIN vendors ON vendors.id = payments.vendor_id").
		Group("vendors.name").
		Order("total_amount DESC").
		Scan(&stats.VendorStats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
