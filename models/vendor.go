package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Vendor struct {
	ID            int                    `gorm:"primary_key" json:"id"`
	Name          string                 `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Phone         string                 `gorm:"size:20" json:"phone"`
	Address       string                 `gorm:"size:255" json:"address"`
	AssignedWires []VendorWireAssignment `gorm:"foreignKey:VendorId" json:"assignedWires"`
	CreatedAt     time.Time              `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time              `gorm:"autoUpdateTime" json:"updatedAt"`
}

// VendorWireAssignment is a vendor specific price for (wire, payal type).
type VendorWireAssignment struct {
	ID         int             `gorm:"primary_key" json:"id"`
	VendorId   int             `gorm:"index;not null" json:"vendorId"`
	WireName   string          `gorm:"size:50;not null" json:"wireName"`
	PayalType  string          `gorm:"size:50;not null" json:"payalType"`
	PricePerKg decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"pricePerKg"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

type NewVendor struct {
	Name          string              `json:"name" binding:"required"`
	Phone         string              `json:"phone"`
	Address       string              `json:"address"`
	AssignedWires []NewWireAssignment `json:"assignedWires"`
}

type NewWireAssignment struct {
	WireName   string           `json:"wireName" binding:"required"`
	PayalType  string           `json:"payalType" binding:"required"`
	PricePerKg *decimal.Decimal `json:"pricePerKg" binding:"required"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewVendor) validate(ctx context.Context, db *gorm.DB, id int) error {
	name, err := utils.RequireText("name", input.Name)
	if err != nil {
		return utils.NewValidationError("name", "Vendor name is required")
	}
	input.Name = name
	input.Phone = strings.TrimSpace(input.Phone)
	input.Address = strings.TrimSpace(input.Address)

	message := "Vendor already exists"
	if id > 0 {
		message = "A vendor with this name already exists"
	}
	return validateUnique[Vendor](ctx, db, "name", input.Name, id, message)
}

// validateWires checks the assignments sent with a new vendor; a
// (wire, payal type) pair may appear once.
func (input *NewVendor) validateWires() error {
	seen := make(map[[2]string]bool, len(input.AssignedWires))
	for i := range input.AssignedWires {
		wire := &input.AssignedWires[i]
		if err := wire.validate(); err != nil {
			return err
		}
		key := [2]string{wire.WireName, wire.PayalType}
		if seen[key] {
			return utils.NewValidationError("assignedWires",
				fmt.Sprintf("Duplicate wire assignment for %s / %s", wire.WireName, wire.PayalType))
		}
		seen[key] = true
	}
	return nil
}

func (input *NewWireAssignment) validate() error {
	input.WireName = strings.TrimSpace(input.WireName)
	input.PayalType = strings.TrimSpace(input.PayalType)
	if input.WireName == "" || input.PayalType == "" || input.PricePerKg == nil {
		return utils.NewValidationError("", "Wire name, payal type, and price per kg are required")
	}
	if input.PricePerKg.IsNegative() {
		return utils.NewValidationError("pricePerKg", "Price per kg cannot be negative")
	}
	return nil
}

func (s *Store) CreateVendor(ctx context.Context, input *NewVendor) (*Vendor, error) {
	if err := input.validate(ctx, s.db, 0); err != nil {
		return nil, err
	}
	if err := input.validateWires(); err != nil {
		return nil, err
	}
	vendor := Vendor{
		Name:          input.Name,
		Phone:         input.Phone,
		Address:       input.Address,
		AssignedWires: []VendorWireAssignment{},
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("AssignedWires").Create(&vendor).Error; err != nil {
			return utils.NormalizeStoreError(err, "Vendor already exists", "")
		}
		for _, wire := range input.AssignedWires {
			assignment := VendorWireAssignment{
				VendorId:   vendor.ID,
				WireName:   wire.WireName,
				PayalType:  wire.PayalType,
				PricePerKg: *wire.PricePerKg,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
			vendor.AssignedWires = append(vendor.AssignedWires, assignment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// ListVendors returns every vendor sorted by name, wires included.
func (s *Store) ListVendors(ctx context.Context) ([]*Vendor, error) {
	var vendors []*Vendor
	err := s.db.WithContext(ctx).
		Preload("AssignedWires", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("name").Find(&vendors).Error
	if err != nil {
		return nil, err
	}
	return vendors, nil
}

func (s *Store) GetVendor(ctx context.Context, id int) (*Vendor, error) {
	var vendor Vendor
	err := s.db.WithContext(ctx).
		Preload("AssignedWires", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).Take(&vendor).Error
	if err != nil {
		return nil, utils.NormalizeStoreError(err, "", "Vendor not found")
	}
	return &vendor, nil
}

func (s *Store) GetVendorByName(ctx context.Context, name string) (*Vendor, error) {
	var vendor Vendor
	err := s.db.WithContext(ctx).
		Preload("AssignedWires", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("name = ?", strings.TrimSpace(name)).Take(&vendor).Error
	if err != nil {
		return nil, utils.NormalizeStoreError(err, "", "Vendor not found")
	}
	return &vendor, nil
}

func (s *Store) UpdateVendor(ctx context.Context, id int, input *NewVendor) (*Vendor, error) {
	if _, err := fetchModel[Vendor](ctx, s.db, id, "Vendor not found"); err != nil {
		return nil, err
	}
	if err := input.validate(ctx, s.db, id); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Model(&Vendor{ID: id}).
		Updates(map[string]interface{}{
			"Name":    input.Name,
			"Phone":   input.Phone,
			"Address": input.Address,
		}).Error
	if err != nil {
		return nil, utils.NormalizeStoreError(err, "A vendor with this name already exists", "")
	}
	return s.GetVendor(ctx, id)
}

// DeleteVendor refuses while transactions still point at the vendor. The
// vendor's payments, wire assignments, item prices and balances go with it.
func (s *Store) DeleteVendor(ctx context.Context, id int) (*Vendor, error) {
	vendor, err := s.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := countWhere[Transaction](ctx, s.db, "vendor_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewInUseError(fmt.Sprintf(
			"Cannot delete vendor %q because they have %d transaction(s). Please delete all transactions first.", vendor.Name, count))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vendor_id = ?", id).Delete(&VendorWireAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("vendor_id = ?", id).Delete(&VendorItemPrice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("vendor_id = ?", id).Delete(&InventoryBalance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("vendor_id = ?", id).Delete(&Payment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Vendor{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return vendor, nil
}

// AddVendorWire appends a price assignment; one per (wire, payal type).
func (s *Store) AddVendorWire(ctx context.Context, vendorId int, input *NewWireAssignment) (*Vendor, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if _, err := fetchModel[Vendor](ctx, s.db, vendorId, "Vendor not found"); err != nil {
		return nil, err
	}
	count, err := countWhere[VendorWireAssignment](ctx, s.db,
		"vendor_id = ? AND wire_name = ? AND payal_type = ?", vendorId, input.WireName, input.PayalType)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewDuplicateError("This wire-payal combination already exists for this vendor")
	}

	assignment := VendorWireAssignment{
		VendorId:   vendorId,
		WireName:   input.WireName,
		PayalType:  input.PayalType,
		PricePerKg: *input.PricePerKg,
	}
	if err := s.db.WithContext(ctx).Create(&assignment).Error; err != nil {
		return nil, err
	}
	return s.GetVendor(ctx, vendorId)
}

func (s *Store) RemoveVendorWire(ctx context.Context, vendorId int, assignmentId int) (*Vendor, error) {
	if _, err := fetchModel[Vendor](ctx, s.db, vendorId, "Vendor not found"); err != nil {
		return nil, err
	}
	result := s.db.WithContext(ctx).
		Where("id = ? AND vendor_id = ?", assignmentId, vendorId).
		Delete(&VendorWireAssignment{})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewNotFoundError("Wire assignment not found")
	}
	return s.GetVendor(ctx, vendorId)
}

func (v *Vendor) findAssignment(wireName string, payalType string) (*VendorWireAssignment, bool) {
	for i := range v.AssignedWires {
		a := &v.AssignedWires[i]
		if a.WireName == wireName && a.PayalType == payalType {
			return a, true
		}
	}
	return nil, false
}

// vendorIdByName is the lookup used by name-addressed operations.
func (s *Store) vendorIdByName(ctx context.Context, name string) (int, error) {
	var vendor Vendor
	err := s.db.WithContext(ctx).Select("id").Where("name = ?", strings.TrimSpace(name)).Take(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, utils.NewNotFoundError("Vendor not found")
	}
	if err != nil {
		return 0, err
	}
	return vendor.ID, nil
}
