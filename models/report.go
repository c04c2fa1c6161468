package models

import (
	"context"
	"errors"
	"sort"

	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
)

type VendorSummary struct {
	Vendor    string          `json:"vendor"`
	InTotal   decimal.Decimal `json:"in_total"`
	OutTotal  decimal.Decimal `json:"out_total"`
	InCount   int64           `json:"in_count"`
	OutCount  int64           `json:"out_count"`
	NetAmount decimal.Decimal `json:"net_amount"`
}

// VendorSummary totals the vendor's transaction amounts by type.
func (s *Store) VendorSummary(ctx context.Context, vendorName string) (*VendorSummary, error) {
	vendor, err := s.GetVendorByName(ctx, vendorName)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Type    TransactionType
		Entries int64
		Total   decimal.Decimal
	}
	err = s.db.WithContext(ctx).Model(&Transaction{}).
		Select("type, COUNT(*) AS entries, COALESCE(SUM(total_amount), 0) AS total").
		Where("vendor_id = ?", vendor.ID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &VendorSummary{Vendor: vendor.Name, InTotal: decimal.Zero, OutTotal: decimal.Zero}
	for _, r := range rows {
		switch r.Type {
		case TransactionTypeIn:
			summary.InTotal = r.Total
			summary.InCount = r.Entries
		case TransactionTypeOut:
			summary.OutTotal = r.Total
			summary.OutCount = r.Entries
		}
	}
	summary.NetAmount = summary.InTotal.Sub(summary.OutTotal)
	return summary, nil
}

// PayableLine is what a vendor is owed for one (wire, payal type).
type PayableLine struct {
	Wire         string          `json:"wire"`
	PayalType    string          `json:"payalType"`
	QtyIn        decimal.Decimal `json:"qtyIn"`
	Price        decimal.Decimal `json:"price"`
	PriceSource  PriceSource     `json:"priceSource,omitempty"`
	PriceMissing bool            `json:"priceMissing"`
	Payable      decimal.Decimal `json:"payable"`
	Paid         decimal.Decimal `json:"paid"`
	Balance      decimal.Decimal `json:"balance"`
}

type VendorPayables struct {
	Vendor       string          `json:"vendor"`
	Lines        []*PayableLine  `json:"lines"`
	TotalPayable decimal.Decimal `json:"totalPayable"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	Balance      decimal.Decimal `json:"balance"`
}

// VendorPayables prices the vendor's returned (IN) quantity per item and
// payal type, then subtracts the payments recorded against each pair.
func (s *Store) VendorPayables(ctx context.Context, vendorName string) (*VendorPayables, error) {
	vendor, err := s.GetVendorByName(ctx, vendorName)
	if err != nil {
		return nil, err
	}
	chart, err := s.PriceChart(ctx)
	if err != nil {
		return nil, err
	}

	var received []struct {
		Wire      string
		PayalType string
		Qty       decimal.Decimal
	}
	err = s.db.WithContext(ctx).Model(&Transaction{}).
		Select("items.name AS wire, transactions.payal_type, COALESCE(SUM(transactions.quantity), 0) AS qty").
		Joins("JOIN items ON items.id = transactions.item_id").
		Where("transactions.vendor_id = ? AND transactions.type = ?", vendor.ID, TransactionTypeIn).
		Group("items.name, transactions.payal_type").
		Scan(&received).Error
	if err != nil {
		return nil, err
	}

	var paid []struct {
		Wire      string
		PayalType string
		Amount    decimal.Decimal
	}
	err = s.db.WithContext(ctx).Model(&Payment{}).
		Select("wire, payal_type, COALESCE(SUM(amount), 0) AS amount").
		Where("vendor_id = ?", vendor.ID).
		Group("wire, payal_type").
		Scan(&paid).Error
	if err != nil {
		return nil, err
	}

	lines := make(map[[2]string]*PayableLine)
	line := func(wire string, payalType string) *PayableLine {
		key := [2]string{wire, payalType}
		if l, ok := lines[key]; ok {
			return l
		}
		l := &PayableLine{Wire: wire, PayalType: payalType, QtyIn: decimal.Zero, Price: decimal.Zero,
			Payable: decimal.Zero, Paid: decimal.Zero, Balance: decimal.Zero}
		lines[key] = l
		return l
	}
	for _, r := range received {
		l := line(r.Wire, r.PayalType)
		l.QtyIn = r.Qty
	}
	for _, p := range paid {
		l := line(p.Wire, p.PayalType)
		l.Paid = p.Amount
	}

	result := &VendorPayables{Vendor: vendor.Name, Lines: make([]*PayableLine, 0, len(lines)), TotalPayable: decimal.Zero, TotalPaid: decimal.Zero, Balance: decimal.Zero}
	for _, l := range lines {
		quote, err := resolvePrice(vendor, chart, l.Wire, l.PayalType)
		switch {
		case err == nil:
			l.Price = quote.Price
			l.PriceSource = quote.Source
			l.Payable = l.QtyIn.Mul(quote.Price)
		case errors.Is(err, utils.ErrPriceNotFound):
			l.PriceMissing = true
		default:
			return nil, err
		}
		l.Balance = l.Payable.Sub(l.Paid)
		result.TotalPayable = result.TotalPayable.Add(l.Payable)
		result.TotalPaid = result.TotalPaid.Add(l.Paid)
		result.Lines = append(result.Lines, l)
	}
	result.Balance = result.TotalPayable.Sub(result.TotalPaid)
	sort.Slice(result.Lines, func(i, j int) bool {
		if result.Lines[i].Wire != result.Lines[j].Wire {
			return result.Lines[i].Wire < result.Lines[j].Wire
		}
		return result.Lines[i].PayalType < result.Lines[j].PayalType
	})
	return result, nil
}
