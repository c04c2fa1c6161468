package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
)

// PriceQuote is a resolved price per kg and where it came from.
type PriceQuote struct {
	Vendor    string          `json:"vendor"`
	Wire      string          `json:"wire"`
	PayalType string          `json:"payalType"`
	Price     decimal.Decimal `json:"price"`
	Source    PriceSource     `json:"source"`
}

// resolvePrice prefers the vendor's own assignment over the general chart.
func resolvePrice(vendor *Vendor, chart PriceChartMap, wire string, payalType string) (*PriceQuote, error) {
	quote := &PriceQuote{Vendor: vendor.Name, Wire: wire, PayalType: payalType}
	if a, ok := vendor.findAssignment(wire, payalType); ok {
		quote.Price = a.PricePerKg
		quote.Source = PriceSourceVendor
		return quote, nil
	}
	if price, ok := chart.lookup(wire, payalType); ok {
		quote.Price = price
		quote.Source = PriceSourceChart
		return quote, nil
	}
	return nil, utils.NewPriceNotFoundError(fmt.Sprintf("No price found for %s %s", wire, payalType))
}

// ResolvePrice returns the unit price for a vendor, wire and payal type.
func (s *Store) ResolvePrice(ctx context.Context, vendorName string, wire string, payalType string) (*PriceQuote, error) {
	wire = strings.TrimSpace(wire)
	payalType = strings.TrimSpace(payalType)
	if wire == "" || payalType == "" {
		return nil, utils.NewValidationError("", "Wire and payal type are required")
	}
	vendor, err := s.GetVendorByName(ctx, vendorName)
	if err != nil {
		return nil, err
	}
	chart, err := s.PriceChart(ctx)
	if err != nil {
		return nil, err
	}
	return resolvePrice(vendor, chart, wire, payalType)
}
