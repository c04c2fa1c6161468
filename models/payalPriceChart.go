package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/inout_backend/config"
	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const priceChartCacheKey = "PayalPriceChartMap"

// PayalPriceChart is the general price per kg for (wire thickness, payal type).
type PayalPriceChart struct {
	ID            int             `gorm:"primary_key" json:"id"`
	WireThickness WireThickness   `gorm:"size:10;not null;uniqueIndex:idx_wire_payal" json:"wireThickness"`
	PayalType     string          `gorm:"size:50;not null;uniqueIndex:idx_wire_payal" json:"payalType"`
	PricePerKg    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"pricePerKg"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewPayalPrice struct {
	WireThickness string           `json:"wireThickness" binding:"required"`
	PayalType     string           `json:"payalType" binding:"required"`
	PricePerKg    *decimal.Decimal `json:"pricePerKg" binding:"required"`
}

// PriceChartMap is wire thickness -> payal type -> price per kg.
type PriceChartMap map[string]map[string]decimal.Decimal

func (m PriceChartMap) lookup(wire string, payalType string) (decimal.Decimal, bool) {
	byType, ok := m[wire]
	if !ok {
		return decimal.Zero, false
	}
	price, ok := byType[payalType]
	return price, ok
}

func (input *NewPayalPrice) validate() (WireThickness, error) {
	wire, err := ParseWireThickness(strings.TrimSpace(input.WireThickness))
	if err != nil {
		return "", err
	}
	input.PayalType = strings.TrimSpace(input.PayalType)
	if input.PayalType == "" || input.PricePerKg == nil {
		return "", utils.NewValidationError("", "Wire thickness, payal type, and price per kg are required")
	}
	if input.PricePerKg.IsNegative() {
		return "", utils.NewValidationError("pricePerKg", "Price per kg cannot be negative")
	}
	return wire, nil
}

func (s *Store) invalidatePriceChart(ctx context.Context) {
	if err := s.cache.Remove(ctx, priceChartCacheKey); err != nil {
		config.LogError(s.logger, "PayalPriceChart", "invalidatePriceChart", "remove cache", nil, err)
	}
}

func (s *Store) ListPriceChart(ctx context.Context) ([]*PayalPriceChart, error) {
	var entries []*PayalPriceChart
	if err := s.db.WithContext(ctx).Order("wire_thickness, payal_type").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// PriceChart returns the nested chart, served from cache when possible.
func (s *Store) PriceChart(ctx context.Context) (PriceChartMap, error) {
	var cached PriceChartMap
	if ok, err := s.cache.GetObject(ctx, priceChartCacheKey, &cached); err != nil {
		config.LogError(s.logger, "PayalPriceChart", "PriceChart", "read cache", nil, err)
	} else if ok {
		return cached, nil
	}

	entries, err := s.ListPriceChart(ctx)
	if err != nil {
		return nil, err
	}
	chart := make(PriceChartMap)
	for _, e := range entries {
		wire := string(e.WireThickness)
		if chart[wire] == nil {
			chart[wire] = make(map[string]decimal.Decimal)
		}
		chart[wire][e.PayalType] = e.PricePerKg
	}
	if err := s.cache.SetObject(ctx, priceChartCacheKey, chart, time.Hour); err != nil {
		config.LogError(s.logger, "PayalPriceChart", "PriceChart", "write cache", nil, err)
	}
	return chart, nil
}

func (s *Store) GetPriceChartEntry(ctx context.Context, wireThickness string, payalType string) (*PayalPriceChart, error) {
	var entry PayalPriceChart
	err := s.db.WithContext(ctx).
		Where("wire_thickness = ? AND payal_type = ?", wireThickness, payalType).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewPriceNotFoundError("Price not found for this combination")
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpsertPriceChartEntry creates the entry or replaces its price.
func (s *Store) UpsertPriceChartEntry(ctx context.Context, input *NewPayalPrice) (*PayalPriceChart, error) {
	wire, err := input.validate()
	if err != nil {
		return nil, err
	}
	entry := PayalPriceChart{WireThickness: wire, PayalType: input.PayalType, PricePerKg: *input.PricePerKg}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wire_thickness"}, {Name: "payal_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"price_per_kg", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return nil, err
	}
	s.invalidatePriceChart(ctx)
	return s.GetPriceChartEntry(ctx, string(wire), input.PayalType)
}

func (s *Store) UpdatePriceChartEntry(ctx context.Context, wireThickness string, payalType string, price decimal.Decimal) (*PayalPriceChart, error) {
	if price.IsNegative() {
		return nil, utils.NewValidationError("pricePerKg", "Price per kg cannot be negative")
	}
	result := s.db.WithContext(ctx).Model(&PayalPriceChart{}).
		Where("wire_thickness = ? AND payal_type = ?", wireThickness, payalType).
		Updates(map[string]interface{}{"price_per_kg": price, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewPriceNotFoundError("Price not found for this combination")
	}
	s.invalidatePriceChart(ctx)
	return s.GetPriceChartEntry(ctx, wireThickness, payalType)
}

func (s *Store) DeletePriceChartEntry(ctx context.Context, wireThickness string, payalType string) error {
	result := s.db.WithContext(ctx).
		Where("wire_thickness = ? AND payal_type = ?", wireThickness, payalType).
		Delete(&PayalPriceChart{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.NewPriceNotFoundError("Price not found for this combination")
	}
	s.invalidatePriceChart(ctx)
	return nil
}

// DeletePriceChartByThickness removes every payal type of one thickness.
func (s *Store) DeletePriceChartByThickness(ctx context.Context, wireThickness string) (int64, error) {
	result := s.db.WithContext(ctx).Where("wire_thickness = ?", wireThickness).Delete(&PayalPriceChart{})
	if result.Error != nil {
		return 0, result.Error
	}
	s.invalidatePriceChart(ctx)
	return result.RowsAffected, nil
}

func DefaultPriceChart() []PayalPriceChart {
	rows := []struct {
		wire   WireThickness
		prices [4]int64
	}{
		{WireThickness22mm, [4]int64{120, 200, 350, 700}},
		{WireThickness28mm, [4]int64{150, 250, 400, 800}},
		{WireThickness30mm, [4]int64{180, 280, 450, 850}},
		{WireThickness32mm, [4]int64{200, 300, 500, 900}},
	}
	types := [4]string{"Moorni", "Silver", "Golden", "Diamond"}

	var chart []PayalPriceChart
	for _, r := range rows {
		for i, t := range types {
			chart = append(chart, PayalPriceChart{
				WireThickness: r.wire,
				PayalType:     t,
				PricePerKg:    decimal.NewFromInt(r.prices[i]),
			})
		}
	}
	return chart
}

// SeedPriceChart replaces the chart with the default entries.
func (s *Store) SeedPriceChart(ctx context.Context) ([]*PayalPriceChart, error) {
	defaults := DefaultPriceChart()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&PayalPriceChart{}).Error; err != nil {
			return err
		}
		return tx.Create(&defaults).Error
	})
	if err != nil {
		return nil, err
	}
	s.invalidatePriceChart(ctx)
	return s.ListPriceChart(ctx)
}
