package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type seedWire struct {
	wire      string
	payalType string
	price     int64
}

type seedVendor struct {
	name    string
	phone   string
	address string
	wires   []seedWire
}

type seedMovement struct {
	vendor    string
	txType    TransactionType
	wire      string
	payalType string
	qty       int64
	date      string
}

type seedPayment struct {
	vendor    string
	wire      string
	payalType string
	amount    int64
	date      string
	notes     string
}

var sampleVendors = []seedVendor{
	{"Anuj Kumar", "9876543210", "Delhi", []seedWire{{"22mm", "Golden", 380}, {"28mm", "Silver", 260}}},
	{"Rajesh Singh", "9876543211", "Mumbai", []seedWire{{"22mm", "Moorni", 110}, {"30mm", "Diamond", 720}}},
	{"Priya Sharma", "9876543212", "Bangalore", []seedWire{{"28mm", "Golden", 420}}},
}

var sampleItems = []string{"22mm", "28mm", "30mm"}

var sampleMovements = []seedMovement{
	{"Rajesh Singh", TransactionTypeOut, "22mm", "Moorni", 50, "2024-01-10"},
	{"Priya Sharma", TransactionTypeOut, "28mm", "Golden", 15, "2024-01-12"},
	{"Anuj Kumar", TransactionTypeOut, "22mm", "Golden", 25, "2024-01-15"},
	{"Rajesh Singh", TransactionTypeIn, "22mm", "Moorni", 30, "2024-01-18"},
	{"Anuj Kumar", TransactionTypeIn, "22mm", "Golden", 10, "2024-01-20"},
	{"Priya Sharma", TransactionTypeIn, "28mm", "Golden", 8, "2024-01-22"},
	{"Anuj Kumar", TransactionTypeIn, "22mm", "Golden", 5, "2024-01-25"},
}

var samplePayments = []seedPayment{
	{"Anuj Kumar", "22mm", "Golden", 2000, "2024-01-30", "Partial payment"},
	{"Rajesh Singh", "22mm", "Moorni", 2400, "2024-01-25", "Full payment"},
}

type SeedReport struct {
	Vendors      int `json:"vendors"`
	Items        int `json:"items"`
	Transactions int `json:"transactions"`
	Payments     int `json:"payments"`
}

func mustSeedDate(raw string) time.Time {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedSampleData loads the demo vendors, items, movements and payments.
// Vendors and items that already exist are reused; movements and payments
// are only added for vendors that have none yet, so reruns are harmless.
func (s *Store) SeedSampleData(ctx context.Context) (*SeedReport, error) {
	report := &SeedReport{}
	vendorIds := map[string]int{}
	fresh := map[string]bool{}

	for _, sv := range sampleVendors {
		vendor, err := s.CreateVendor(ctx, &NewVendor{Name: sv.name, Phone: sv.phone, Address: sv.address})
		switch {
		case err == nil:
			report.Vendors++
		case errors.Is(err, utils.ErrDuplicateKey):
			if vendor, err = s.GetVendorByName(ctx, sv.name); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
		vendorIds[sv.name] = vendor.ID

		for _, w := range sv.wires {
			price := decimal.NewFromInt(w.price)
			_, err := s.AddVendorWire(ctx, vendor.ID, &NewWireAssignment{WireName: w.wire, PayalType: w.payalType, PricePerKg: &price})
			if err != nil && !errors.Is(err, utils.ErrDuplicateKey) {
				return nil, err
			}
		}

		txCount, err := countWhere[Transaction](ctx, s.db, "vendor_id = ?", vendor.ID)
		if err != nil {
			return nil, err
		}
		paymentCount, err := countWhere[Payment](ctx, s.db, "vendor_id = ?", vendor.ID)
		if err != nil {
			return nil, err
		}
		fresh[sv.name] = txCount == 0 && paymentCount == 0
	}

	itemIds := map[string]int{}
	for _, name := range sampleItems {
		item, err := s.CreateItem(ctx, &NewItem{Name: name})
		switch {
		case err == nil:
			report.Items++
		case errors.Is(err, utils.ErrDuplicateKey):
			if item, err = s.GetItemByName(ctx, name); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
		itemIds[name] = item.ID
	}

	for _, m := range sampleMovements {
		if !fresh[m.vendor] {
			continue
		}
		date := mustSeedDate(m.date)
		var err error
		if m.txType == TransactionTypeOut {
			_, err = s.RecordOut(ctx, OutRequest{
				VendorId: vendorIds[m.vendor],
				ItemId:   itemIds[m.wire],
				Quantity: decimal.NewFromInt(m.qty),
				OutDate:  date,
			})
		} else {
			var quote *PriceQuote
			if quote, err = s.ResolvePrice(ctx, m.vendor, m.wire, m.payalType); err != nil {
				return nil, err
			}
			_, err = s.RecordIn(ctx, InRequest{
				VendorId:     vendorIds[m.vendor],
				ItemId:       itemIds[m.wire],
				Quantity:     decimal.NewFromInt(m.qty),
				PricePerUnit: quote.Price,
				PayalType:    m.payalType,
				InDate:       date,
			})
		}
		if err != nil {
			return nil, err
		}
		report.Transactions++
	}

	for _, p := range samplePayments {
		if !fresh[p.vendor] {
			continue
		}
		amount := decimal.NewFromInt(p.amount)
		_, err := s.CreatePayment(ctx, &NewPayment{
			Vendor:    p.vendor,
			Wire:      p.wire,
			PayalType: p.payalType,
			Amount:    &amount,
			Date:      &DateInput{Time: mustSeedDate(p.date)},
			Notes:     p.notes,
		})
		if err != nil {
			return nil, err
		}
		report.Payments++
	}

	s.logger.WithFields(logrus.Fields{
		"vendors":      report.Vendors,
		"items":        report.Items,
		"transactions": report.Transactions,
		"payments":     report.Payments,
	}).Info("[seed.sample]")
	return report, nil
}
