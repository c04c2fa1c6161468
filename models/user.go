package models

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmdatafocus/inout_backend/utils"
	"gorm.io/gorm"
)

const userPhoneRegion = "IN"

// User is a vendor contact. Creating one also registers its vendor and item.
type User struct {
	ID         int       `gorm:"primary_key" json:"id"`
	VendorName string    `gorm:"size:50;not null;index" json:"vendorName"`
	ItemName   string    `gorm:"size:50;not null;index" json:"itemName"`
	Phone      string    `gorm:"size:20;not null;index" json:"phone"`
	Address    string    `gorm:"size:200;not null" json:"address"`
	IsActive   *bool     `gorm:"not null;default:true" json:"isActive"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewUser struct {
	VendorName string `json:"vendorName" binding:"required"`
	ItemName   string `json:"itemName" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Address    string `json:"address" binding:"required"`
}

type UserPatch struct {
	VendorName *string `json:"vendorName"`
	ItemName   *string `json:"itemName"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	IsActive   *bool   `json:"isActive"`
}

func checkLength(fields map[string]string, field string, label string, value string, minLen int, maxLen int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0:
		fields[field] = label + " is required"
	case n < minLen:
		fields[field] = label + " must be at least " + strconv.Itoa(minLen) + " characters long"
	case n > maxLen:
		fields[field] = label + " cannot exceed " + strconv.Itoa(maxLen) + " characters"
	}
}

func checkPhone(fields map[string]string, phone string) {
	valid := len(phone) == 10
	for _, r := range phone {
		if r < '0' || r > '9' {
			valid = false
		}
	}
	if valid {
		valid = utils.ValidatePhoneNumber(phone, userPhoneRegion) == nil
	}
	if !valid {
		fields["phone"] = "Please enter a valid 10-digit phone number (digits only)"
	}
}

func userValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &utils.ValidationError{Message: "Validation failed", Fields: fields}
}

func (input *NewUser) validate() error {
	input.VendorName = strings.TrimSpace(input.VendorName)
	input.ItemName = strings.TrimSpace(input.ItemName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Address = strings.TrimSpace(input.Address)

	fields := map[string]string{}
	checkLength(fields, "vendorName", "Vendor name", input.VendorName, 2, 50)
	checkLength(fields, "itemName", "Item name", input.ItemName, 2, 50)
	if input.Phone == "" {
		fields["phone"] = "Phone number is required"
	} else {
		checkPhone(fields, input.Phone)
	}
	checkLength(fields, "address", "Address", input.Address, 5, 200)
	return userValidationError(fields)
}

// registerVendorAndItem makes sure the named vendor and item exist.
func registerVendorAndItem(tx *gorm.DB, vendorName string, itemName string) error {
	if vendorName != "" {
		if err := tx.Where(Vendor{Name: vendorName}).FirstOrCreate(&Vendor{}).Error; err != nil {
			return err
		}
	}
	if itemName != "" {
		if err := tx.Where(Item{Name: itemName}).FirstOrCreate(&Item{}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	active := true
	user := User{
		VendorName: input.VendorName,
		ItemName:   input.ItemName,
		Phone:      input.Phone,
		Address:    input.Address,
		IsActive:   &active,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return registerVendorAndItem(tx, user.VendorName, user.ItemName)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListActiveUsers returns active users, newest first.
func (s *Store) ListActiveUsers(ctx context.Context) ([]*User, error) {
	var results []*User
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at DESC, id DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) GetUser(ctx context.Context, id int) (*User, error) {
	return fetchModel[User](ctx, s.db, id, "User not found")
}

func (s *Store) UpdateUser(ctx context.Context, id int, patch *UserPatch) (*User, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]string{}
	updates := map[string]interface{}{}
	var vendorName, itemName string
	if patch.VendorName != nil && strings.TrimSpace(*patch.VendorName) != "" {
		vendorName = strings.TrimSpace(*patch.VendorName)
		checkLength(fields, "vendorName", "Vendor name", vendorName, 2, 50)
		updates["vendor_name"] = vendorName
	}
	if patch.ItemName != nil && strings.TrimSpace(*patch.ItemName) != "" {
		itemName = strings.TrimSpace(*patch.ItemName)
		checkLength(fields, "itemName", "Item name", itemName, 2, 50)
		updates["item_name"] = itemName
	}
	if patch.Phone != nil && strings.TrimSpace(*patch.Phone) != "" {
		phone := strings.TrimSpace(*patch.Phone)
		checkPhone(fields, phone)
		updates["phone"] = phone
	}
	if patch.Address != nil && strings.TrimSpace(*patch.Address) != "" {
		address := strings.TrimSpace(*patch.Address)
		checkLength(fields, "address", "Address", address, 5, 200)
		updates["address"] = address
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if err := userValidationError(fields); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&User{ID: id}).Updates(updates).Error; err != nil {
				return err
			}
		}
		return registerVendorAndItem(tx, vendorName, itemName)
	})
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// DeleteUser deactivates the user; the row is kept.
func (s *Store) DeleteUser(ctx context.Context, id int) (*User, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&User{ID: id}).Update("is_active", false).Error; err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}
