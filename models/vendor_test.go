package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/inout_backend/models"
	"github.com/mmdatafocus/inout_backend/utils"
)

func TestCreateVendor_RejectsDuplicateNames(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	mustVendor(t, store, "Anuj Kumar")

	_, err := store.CreateVendor(ctx, &models.NewVendor{Name: "  Anuj Kumar "})
	if !errors.Is(err, utils.ErrDuplicateKey) || err.Error() != "Vendor already exists" {
		t.Fatalf("expected duplicate vendor error, got %v", err)
	}
	if _, err := store.CreateVendor(ctx, &models.NewVendor{Name: "   "}); !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}

	mustItem(t, store, "22mm")
	if _, err := store.CreateItem(ctx, &models.NewItem{Name: "22mm"}); !errors.Is(err, utils.ErrDuplicateKey) {
		t.Fatalf("expected duplicate item error, got %v", err)
	}
}

func TestListVendors_SortedByName(t *testing.T) {
	store := newTestStore(t)
	mustVendor(t, store, "Rajesh Singh")
	mustVendor(t, store, "Anuj Kumar")
	mustVendor(t, store, "Priya Sharma")

	vendors, err := store.ListVendors(context.Background())
	if err != nil {
		t.Fatalf("ListVendors: %v", err)
	}
	got := []string{vendors[0].Name, vendors[1].Name, vendors[2].Name}
	want := []string{"Anuj Kumar", "Priya Sharma", "Rajesh Singh"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestUpdateVendor_RechecksUniqueness(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	anuj := mustVendor(t, store, "Anuj Kumar")
	mustVendor(t, store, "Priya Sharma")

	_, err := store.UpdateVendor(ctx, anuj.ID, &models.NewVendor{Name: "Priya Sharma"})
	if !errors.Is(err, utils.ErrDuplicateKey) || err.Error() != "A vendor with this name already exists" {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	updated, err := store.UpdateVendor(ctx, anuj.ID, &models.NewVendor{Name: "Anuj Kumar", Phone: "9876543210", Address: "Delhi"})
	if err != nil {
		t.Fatalf("UpdateVendor: %v", err)
	}
	if updated.Phone != "9876543210" || updated.Address != "Delhi" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if _, err := store.UpdateVendor(ctx, 999, &models.NewVendor{Name: "Ghost"}); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVendorWires_AddAndRemove(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	vendor := mustVendor(t, store, "Anuj Kumar")

	updated, err := store.AddVendorWire(ctx, vendor.ID, &models.NewWireAssignment{WireName: "22mm", PayalType: "Golden", PricePerKg: decPtr(380)})
	if err != nil {
		t.Fatalf("AddVendorWire: %v", err)
	}
	if len(updated.AssignedWires) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(updated.AssignedWires))
	}

	_, err = store.AddVendorWire(ctx, vendor.ID, &models.NewWireAssignment{WireName: "22mm", PayalType: "Golden", PricePerKg: decPtr(1)})
	if !errors.Is(err, utils.ErrDuplicateKey) {
		t.Fatalf("expected duplicate assignment error, got %v", err)
	}

	_, err = store.AddVendorWire(ctx, vendor.ID, &models.NewWireAssignment{WireName: "28mm", PayalType: "Silver", PricePerKg: decPtr(-1)})
	if !errors.Is(err, utils.ErrValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}

	updated, err = store.RemoveVendorWire(ctx, vendor.ID, updated.AssignedWires[0].ID)
	if err != nil {
		t.Fatalf("RemoveVendorWire: %v", err)
	}
	if len(updated.AssignedWires) != 0 {
		t.Fatalf("expected no assignments, got %d", len(updated.AssignedWires))
	}
	if _, err := store.RemoveVendorWire(ctx, vendor.ID, 12345); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteVendor_BlockedWhileReferenced(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	vendor := mustVendor(t, store, "Anuj Kumar")
	item := mustItem(t, store, "22mm")
	mustOut(t, store, vendor.ID, item.ID, 5)
	mustOut(t, store, vendor.ID, item.ID, 5)

	_, err := store.DeleteVendor(ctx, vendor.ID)
	if !errors.Is(err, utils.ErrInUse) {
		t.Fatalf("expected in-use error, got %v", err)
	}
	want := `Cannot delete vendor "Anuj Kumar" because they have 2 transaction(s). Please delete all transactions first.`
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}

	if _, err := store.DeleteItemByName(ctx, "22mm"); !errors.Is(err, utils.ErrInUse) {
		t.Fatalf("expected item in use, got %v", err)
	}
}

func TestDeleteVendor_RemovesUnreferencedVendor(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	vendor := mustVendor(t, store, "Anuj Kumar")
	if _, err := store.AddVendorWire(ctx, vendor.ID, &models.NewWireAssignment{WireName: "22mm", PayalType: "Golden", PricePerKg: decPtr(380)}); err != nil {
		t.Fatalf("AddVendorWire: %v", err)
	}

	if _, err := store.DeleteVendor(ctx, vendor.ID); err != nil {
		t.Fatalf("DeleteVendor: %v", err)
	}
	if _, err := store.GetVendorByName(ctx, "Anuj Kumar"); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected vendor to be gone, got %v", err)
	}
	var remaining int64
	if err := store.DB().Model(&models.VendorWireAssignment{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count assignments: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected assignments removed, %d left", remaining)
	}
}

func TestVendorItemPrices_Upsert(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	mustVendor(t, store, "Anuj Kumar")
	mustItem(t, store, "22mm")

	if _, err := store.UpsertVendorItemPrice(ctx, &models.NewVendorItemPrice{Vendor: "Anuj Kumar", Item: "22mm", Price: decPtr(100)}); err != nil {
		t.Fatalf("UpsertVendorItemPrice: %v", err)
	}
	price, err := store.UpsertVendorItemPrice(ctx, &models.NewVendorItemPrice{Vendor: "Anuj Kumar", Item: "22mm", Price: decPtr(120)})
	if err != nil {
		t.Fatalf("UpsertVendorItemPrice: %v", err)
	}
	if !price.Price.Equal(dec(120)) {
		t.Fatalf("expected 120, got %s", price.Price)
	}

	prices, err := store.ListVendorItemPrices(ctx)
	if err != nil {
		t.Fatalf("ListVendorItemPrices: %v", err)
	}
	if len(prices) != 1 || !prices["Anuj Kumar"]["22mm"].Equal(dec(120)) {
		t.Fatalf("unexpected price map %v", prices)
	}
	if _, err := store.GetVendorItemPrice(ctx, "Anuj Kumar", "28mm"); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected item not found, got %v", err)
	}
}

func TestDeleteVendor_AllowedWithPaymentsOnly(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	vendor := mustVendor(t, store, "Anuj Kumar")
	if _, err := store.CreatePayment(ctx, newPayment("Anuj Kumar", "22mm", "Golden", 500, 3)); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	deleted, err := store.DeleteVendor(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("DeleteVendor: %v", err)
	}
	if deleted.Name != "Anuj Kumar" {
		t.Fatalf("expected deleted vendor returned, got %q", deleted.Name)
	}
	var remaining int64
	if err := store.DB().Model(&models.Payment{}).Where("vendor_id = ?", vendor.ID).Count(&remaining).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected vendor payments removed, %d left", remaining)
	}
}

func TestCreateVendor_WithAssignedWires(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	vendor, err := store.CreateVendor(ctx, &models.NewVendor{
		Name: "Anuj Kumar",
		AssignedWires: []models.NewWireAssignment{
			{WireName: " 22mm ", PayalType: "Golden", PricePerKg: decPtr(380)},
			{WireName: "28mm", PayalType: "Silver", PricePerKg: decPtr(240)},
		},
	})
	if err != nil {
		t.Fatalf("CreateVendor: %v", err)
	}
	if len(vendor.AssignedWires) != 2 || vendor.AssignedWires[0].WireName != "22mm" {
		t.Fatalf("unexpected assignments on create: %+v", vendor.AssignedWires)
	}

	quote, err := store.ResolvePrice(ctx, "Anuj Kumar", "22mm", "Golden")
	if err != nil {
		t.Fatalf("ResolvePrice: %v", err)
	}
	if !quote.Price.Equal(dec(380)) || quote.Source != models.PriceSourceVendor {
		t.Fatalf("expected vendor price 380, got %s from %s", quote.Price, quote.Source)
	}
}

func TestCreateVendor_RejectsInvalidAssignedWires(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cases := []struct {
		name  string
		wires []models.NewWireAssignment
	}{
		{"duplicate pair", []models.NewWireAssignment{
			{WireName: "22mm", PayalType: "Golden", PricePerKg: decPtr(380)},
			{WireName: "22mm", PayalType: "Golden", PricePerKg: decPtr(390)},
		}},
		{"missing price", []models.NewWireAssignment{{WireName: "22mm", PayalType: "Golden"}}},
		{"negative price", []models.NewWireAssignment{{WireName: "22mm", PayalType: "Golden", PricePerKg: decPtr(-1)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.CreateVendor(ctx, &models.NewVendor{Name: "Anuj Kumar", AssignedWires: tc.wires})
			if !errors.Is(err, utils.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if _, err := store.GetVendorByName(ctx, "Anuj Kumar"); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected no vendor after rejected creates, got %v", err)
	}
}
