package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is one entry of the append-only IN/OUT log.
type Transaction struct {
	ID           int             `gorm:"primary_key" json:"id"`
	SrNo         int             `gorm:"not null;uniqueIndex" json:"srNo"`
	Type         TransactionType `gorm:"size:3;not null;index" json:"type"`
	VendorId     int             `gorm:"not null;index:idx_transaction_pair,priority:1" json:"vendorId"`
	ItemId       int             `gorm:"not null;index:idx_transaction_pair,priority:2" json:"itemId"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	PayalType    *string         `gorm:"size:50" json:"payalType"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"price"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total"`
	InDate       *time.Time      `json:"inDate"`
	OutDate      *time.Time      `json:"outDate"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

// TransactionView is a Transaction with its vendor and item names.
type TransactionView struct {
	Transaction
	VendorName string `json:"vendor"`
	ItemName   string `json:"item"`
}

// NewTransaction is the loose request body. Parse turns it into an
// InRequest or an OutRequest.
type NewTransaction struct {
	Type      string           `json:"type"`
	Vendor    string           `json:"vendor"`
	Item      string           `json:"item"`
	Qty       *decimal.Decimal `json:"qty"`
	Price     *decimal.Decimal `json:"price"`
	PayalType string           `json:"payalType"`
	InDate    *DateInput       `json:"inDate"`
	OutDate   *DateInput       `json:"outDate"`
	// Total is accepted and ignored; it is always recomputed.
	Total *decimal.Decimal `json:"total"`
}

// TransactionRequest is either an InRequest or an OutRequest.
type TransactionRequest interface {
	Type() TransactionType
	Pair() (vendorId int, itemId int)
	Qty() decimal.Decimal
	validate() error
	build() Transaction
}

// InRequest returns goods from a vendor; payal type and date are mandatory.
type InRequest struct {
	VendorId     int
	ItemId       int
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
	PayalType    string
	InDate       time.Time
}

// OutRequest sends goods to a vendor.
type OutRequest struct {
	VendorId     int
	ItemId       int
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
	OutDate      time.Time
}

func (r InRequest) Type() TransactionType { return TransactionTypeIn }
func (r InRequest) Pair() (int, int) { return r.VendorId, r.ItemId }
func (r InRequest) Qty() decimal.Decimal { return r.Quantity }
func (r OutRequest) Type() TransactionType { return TransactionTypeOut }
func (r OutRequest) Pair() (int, int) { return r.VendorId, r.ItemId }
func (r OutRequest) Qty() decimal.Decimal { return r.Quantity }

func (r InRequest) build() Transaction {
	inDate := r.InDate
	return Transaction{
		Type:         TransactionTypeIn,
		VendorId:     r.VendorId,
		ItemId:       r.ItemId,
		Quantity:     r.Quantity,
		PayalType:    utils.NilIfEmpty(r.PayalType),
		PricePerUnit: r.PricePerUnit,
		TotalAmount:  r.Quantity.Mul(r.PricePerUnit),
		InDate:       &inDate,
	}
}

func (r OutRequest) build() Transaction {
	outDate := r.OutDate
	return Transaction{
		Type:         TransactionTypeOut,
		VendorId:     r.VendorId,
		ItemId:       r.ItemId,
		Quantity:     r.Quantity,
		PricePerUnit: r.PricePerUnit,
		TotalAmount:  r.Quantity.Mul(r.PricePerUnit),
		OutDate:      &outDate,
	}
}

func (r InRequest) validate() error {
	if r.VendorId <= 0 || r.ItemId <= 0 {
		return utils.NewValidationError("", "Vendor and item are required")
	}
	if !r.Quantity.IsPositive() {
		return utils.NewValidationError("qty", "Quantity must be greater than 0")
	}
	if strings.TrimSpace(r.PayalType) == "" {
		return utils.NewValidationError("payalType", "Payal type is required for IN transactions")
	}
	if r.InDate.IsZero() {
		return utils.NewValidationError("inDate", "In date is required for IN transactions")
	}
	if r.PricePerUnit.IsNegative() {
		return utils.NewValidationError("price", "Price cannot be negative")
	}
	return nil
}

func (r OutRequest) validate() error {
	if r.VendorId <= 0 || r.ItemId <= 0 {
		return utils.NewValidationError("", "Vendor and item are required")
	}
	if !r.Quantity.IsPositive() {
		return utils.NewValidationError("qty", "Quantity must be greater than 0")
	}
	if r.OutDate.IsZero() {
		return utils.NewValidationError("outDate", "Out date is required for OUT transactions")
	}
	if r.PricePerUnit.IsNegative() {
		return utils.NewValidationError("price", "Price cannot be negative")
	}
	return nil
}

// Parse checks the body and resolves vendor and item names. Missing dates
// default to now; a missing OUT price is 0.
func (input *NewTransaction) Parse(ctx context.Context, s *Store) (TransactionRequest, error) {
	input.Vendor = strings.TrimSpace(input.Vendor)
	input.Item = strings.TrimSpace(input.Item)
	if input.Type == "" || input.Vendor == "" || input.Item == "" || input.Qty == nil {
		return nil, utils.NewValidationError("", "Type, vendor, item, and quantity are required")
	}
	txType, err := ParseTransactionType(input.Type)
	if err != nil {
		return nil, err
	}
	if !input.Qty.IsPositive() {
		return nil, utils.NewValidationError("qty", "Quantity must be greater than 0")
	}
	if txType == TransactionTypeIn {
		if strings.TrimSpace(input.PayalType) == "" {
			return nil, utils.NewValidationError("payalType", "Payal type is required for IN transactions")
		}
		if input.Price == nil || input.Price.IsZero() {
			return nil, utils.NewValidationError("price", "Price is required for IN transactions")
		}
	}
	price := utils.DereferencePtr(input.Price, decimal.Zero)
	if price.IsNegative() {
		return nil, utils.NewValidationError("price", "Price cannot be negative")
	}

	vendorId, err := s.vendorIdByName(ctx, input.Vendor)
	if err != nil {
		return nil, err
	}
	item, err := s.GetItemByName(ctx, input.Item)
	if err != nil {
		return nil, err
	}

	if txType == TransactionTypeIn {
		return InRequest{
			VendorId:     vendorId,
			ItemId:       item.ID,
			Quantity:     *input.Qty,
			PricePerUnit: price,
			PayalType:    strings.TrimSpace(input.PayalType),
			InDate:       utils.TimeOrNow(input.InDate.Ptr()),
		}, nil
	}
	return OutRequest{
		VendorId:     vendorId,
		ItemId:       item.ID,
		Quantity:     *input.Qty,
		PricePerUnit: price,
		OutDate:      utils.TimeOrNow(input.OutDate.Ptr()),
	}, nil
}

// CreateTransaction parses the body and records it in the ledger.
func (s *Store) CreateTransaction(ctx context.Context, input *NewTransaction) (*TransactionView, error) {
	req, err := input.Parse(ctx, s)
	if err != nil {
		return nil, err
	}
	var created *Transaction
	switch r := req.(type) {
	case InRequest:
		created, err = s.RecordIn(ctx, r)
	case OutRequest:
		created, err = s.RecordOut(ctx, r)
	}
	if err != nil {
		return nil, err
	}
	return s.GetTransaction(ctx, created.ID)
}

type TransactionFilter struct {
	Type     TransactionType
	VendorId int
}

func (s *Store) transactionViewQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&Transaction{}).
		Select("transactions.*, vendors.name AS vendor_name, items.name AS item_name").
		Joins("JOIN vendors ON vendors.id = transactions.vendor_id").
		Joins("JOIN items ON items.id = transactions.item_id")
}

// ListTransactions returns the newest transactions first.
func (s *Store) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*TransactionView, error) {
	query := s.transactionViewQuery(ctx)
	if filter.Type != "" {
		query = query.Where("transactions.type = ?", filter.Type)
	}
	if filter.VendorId > 0 {
		query = query.Where("transactions.vendor_id = ?", filter.VendorId)
	}
	var results []*TransactionView
	if err := query.Order("transactions.sr_no DESC").Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) ListVendorTransactions(ctx context.Context, vendorName string) ([]*TransactionView, error) {
	vendorId, err := s.vendorIdByName(ctx, vendorName)
	if err != nil {
		return nil, err
	}
	return s.ListTransactions(ctx, TransactionFilter{VendorId: vendorId})
}

func (s *Store) GetTransaction(ctx context.Context, id int) (*TransactionView, error) {
	var result TransactionView
	err := s.transactionViewQuery(ctx).Where("transactions.id = ?", id).Take(&result).Error
	if err != nil {
		return nil, utils.NormalizeStoreError(err, "", "Transaction not found")
	}
	return &result, nil
}
