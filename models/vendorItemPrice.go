package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// VendorItemPrice is the agreed price of an item for one vendor.
type VendorItemPrice struct {
	ID        int             `gorm:"primary_key" json:"id"`
	VendorId  int             `gorm:"not null;uniqueIndex:idx_vendor_item_price" json:"vendorId"`
	ItemId    int             `gorm:"not null;uniqueIndex:idx_vendor_item_price" json:"itemId"`
	Price     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"price"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewVendorItemPrice struct {
	Vendor string           `json:"vendor" binding:"required"`
	Item   string           `json:"item" binding:"required"`
	Price  *decimal.Decimal `json:"price" binding:"required"`
}

// VendorItemPriceMap is vendor name -> item name -> price.
type VendorItemPriceMap map[string]map[string]decimal.Decimal

// UpsertVendorItemPrice creates or replaces the price for (vendor, item).
func (s *Store) UpsertVendorItemPrice(ctx context.Context, input *NewVendorItemPrice) (*VendorItemPrice, error) {
	if input.Price == nil {
		return nil, utils.NewValidationError("price", "Price is required")
	}
	if input.Price.IsNegative() {
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

	price := VendorItemPrice{VendorId: vendorId, ItemId: item.ID, Price: *input.Price}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vendor_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Create(&price).Error
	if err != nil {
		return nil, err
	}

	var stored VendorItemPrice
	if err := s.db.WithContext(ctx).Where("vendor_id = ? AND item_id = ?", vendorId, item.ID).Take(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *Store) ListVendorItemPrices(ctx context.Context) (VendorItemPriceMap, error) {
	var rows []struct {
		VendorName string
		ItemName   string
		Price      decimal.Decimal
	}
	err := s.db.WithContext(ctx).Model(&VendorItemPrice{}).
		Select("vendors.name AS vendor_name, items.name AS item_name, vendor_item_prices.price").
		Joins("JOIN vendors ON vendors.id = vendor_item_prices.vendor_id").
		Joins("JOIN items ON items.id = vendor_item_prices.item_id").
		Order("vendors.name, items.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(VendorItemPriceMap)
	for _, r := range rows {
		if result[r.VendorName] == nil {
			result[r.VendorName] = make(map[string]decimal.Decimal)
		}
		result[r.VendorName][r.ItemName] = r.Price
	}
	return result, nil
}

func (s *Store) GetVendorItemPrice(ctx context.Context, vendorName string, itemName string) (*VendorItemPrice, error) {
	vendorId, err := s.vendorIdByName(ctx, vendorName)
	if err != nil {
		return nil, err
	}
	item, err := s.GetItemByName(ctx, itemName)
	if err != nil {
		return nil, err
	}
	var price VendorItemPrice
	err = s.db.WithContext(ctx).Where("vendor_id = ? AND item_id = ?", vendorId, item.ID).Take(&price).Error
	if err != nil {
		return nil, utils.NormalizeStoreError(err, "", "Price not found")
	}
	return &price, nil
}
