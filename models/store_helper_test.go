package models_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mmdatafocus/inout_backend/config"
	"github.com/mmdatafocus/inout_backend/models"
	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *models.Store {
	t.Helper()
	db, err := config.OpenDatabase("sqlite://"+filepath.Join(t.TempDir(), "inout.db"), 1, 1)
	if err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	blobs, err := utils.NewLocalStorage(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	store := models.NewStore(db, models.WithBlobStorage(blobs))
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustVendor(t *testing.T, store *models.Store, name string) *models.Vendor {
	t.Helper()
	vendor, err := store.CreateVendor(context.Background(), &models.NewVendor{Name: name})
	if err != nil {
		t.Fatalf("CreateVendor(%q): %v", name, err)
	}
	return vendor
}

func mustItem(t *testing.T, store *models.Store, name string) *models.Item {
	t.Helper()
	item, err := store.CreateItem(context.Background(), &models.NewItem{Name: name})
	if err != nil {
		t.Fatalf("CreateItem(%q): %v", name, err)
	}
	return item
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func mustOut(t *testing.T, store *models.Store, vendorId, itemId int, qty int64) *models.Transaction {
	t.Helper()
	tx, err := store.RecordOut(context.Background(), models.OutRequest{VendorId: vendorId, ItemId: itemId, Quantity: dec(qty), OutDate: testDate})
	if err != nil {
		t.Fatalf("RecordOut(%d): %v", qty, err)
	}
	return tx
}

func recordIn(store *models.Store, vendorId, itemId int, qty int64) (*models.Transaction, error) {
	return store.RecordIn(context.Background(), models.InRequest{
		VendorId:     vendorId,
		ItemId:       itemId,
		Quantity:     dec(qty),
		PricePerUnit: dec(10),
		PayalType:    "Golden",
		InDate:       testDate,
	})
}
