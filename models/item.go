package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/inout_backend/utils"
	"gorm.io/gorm"
)

type Item struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewItem struct {
	Name string `json:"name" binding:"required"`
}

func (input *NewItem) validate(ctx context.Context, db *gorm.DB) error {
	name, err := utils.RequireText("name", input.Name)
	if err != nil {
		return utils.NewValidationError("name", "Item name is required")
	}
	input.Name = name
	return validateUnique[Item](ctx, db, "name", input.Name, 0, "Item already exists")
}

func (s *Store) CreateItem(ctx context.Context, input *NewItem) (*Item, error) {
	if err := input.validate(ctx, s.db); err != nil {
		return nil, err
	}
	item := Item{Name: input.Name}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, utils.NormalizeStoreError(err, "Item already exists", "")
	}
	return &item, nil
}

func (s *Store) ListItems(ctx context.Context) ([]*Item, error) {
	var items []*Item
	if err := s.db.WithContext(ctx).Order("name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetItemByName(ctx context.Context, name string) (*Item, error) {
	var item Item
	err := s.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).Take(&item).Error
	if err != nil {
		return nil, utils.NormalizeStoreError(err, "", "Item not found")
	}
	return &item, nil
}

// DeleteItemByName removes an item and its vendor prices. Items still
// referenced by transactions stay.
func (s *Store) DeleteItemByName(ctx context.Context, name string) (*Item, error) {
	item, err := s.GetItemByName(ctx, name)
	if err != nil {
		return nil, err
	}
	count, err := countWhere[Transaction](ctx, s.db, "item_id = ?", item.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewInUseError(fmt.Sprintf(
			"Cannot delete item %q because it has %d transaction(s). Please delete all transactions first.", item.Name, count))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", item.ID).Delete(&VendorItemPrice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", item.ID).Delete(&InventoryBalance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Item{}, item.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}
