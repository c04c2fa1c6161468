package models

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mmdatafocus/inout_backend/config"
	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxSerialAttempts = 3

var errSerialCollision = errors.New("transaction serial number collision")

// InventoryBalance is the running OUT/IN total of one (vendor, item) pair,
// kept in step with the transaction log.
type InventoryBalance struct {
	VendorId  int             `gorm:"primaryKey;autoIncrement:false" json:"vendorId"`
	ItemId    int             `gorm:"primaryKey;autoIncrement:false" json:"itemId"`
	TotalOut  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"totalOut"`
	TotalIn   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"totalIn"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (b InventoryBalance) Available() decimal.Decimal {
	return b.TotalOut.Sub(b.TotalIn)
}

// Availability is the log-derived state of one pair.
type Availability struct {
	VendorId   int             `json:"vendorId"`
	ItemId     int             `json:"itemId"`
	HasHistory bool            `json:"hasHistory"`
	TotalOut   decimal.Decimal `json:"totalOut"`
	TotalIn    decimal.Decimal `json:"totalIn"`
	Available  decimal.Decimal `json:"available"`
}

// AvailableInventory is one row of the "available for import" view.
type AvailableInventory struct {
	Vendor    string          `json:"vendor"`
	Item      string          `json:"item"`
	TotalOut  decimal.Decimal `json:"totalOut"`
	TotalIn   decimal.Decimal `json:"totalIn"`
	Available decimal.Decimal `json:"available"`
}

// BalanceDrift reports a pair whose stored balance disagrees with the log.
type BalanceDrift struct {
	VendorId       int             `json:"vendorId"`
	ItemId         int             `json:"itemId"`
	StoredOut      decimal.Decimal `json:"storedOut"`
	StoredIn       decimal.Decimal `json:"storedIn"`
	ComputedOut    decimal.Decimal `json:"computedOut"`
	ComputedIn     decimal.Decimal `json:"computedIn"`
	MissingBalance bool            `json:"missingBalance"`
}

// CheckAdmission applies the IN rule: the pair needs history, something
// available, and no more requested than available.
func CheckAdmission(hasHistory bool, available decimal.Decimal, requested decimal.Decimal) error {
	if !hasHistory || !available.IsPositive() {
		return &utils.InsufficientInventoryError{Available: decimal.Zero, Requested: requested}
	}
	if requested.GreaterThan(available) {
		return &utils.InsufficientInventoryError{Available: available, Requested: requested}
	}
	return nil
}

func pairLockKey(vendorId int, itemId int) string {
	return fmt.Sprintf("inventory:%d:%d", vendorId, itemId)
}

func (s *Store) RecordIn(ctx context.Context, req InRequest) (*Transaction, error) {
	return s.record(ctx, req)
}

func (s *Store) RecordOut(ctx context.Context, req OutRequest) (*Transaction, error) {
	return s.record(ctx, req)
}

// record holds the pair lock while the balance check, the balance change,
// the serial allocation and the insert commit together.
func (s *Store) record(ctx context.Context, req TransactionRequest) (*Transaction, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	vendorId, itemId := req.Pair()
	ctx, span := tracer.Start(ctx, "ledger.record", trace.WithAttributes(
		attribute.String("type", string(req.Type())),
		attribute.Int("vendor_id", vendorId),
		attribute.Int("item_id", itemId),
	))
	defer span.End()

	release, err := s.locker.Lock(ctx, pairLockKey(vendorId, itemId))
	if err != nil {
		config.LogError(s.logger, "InventoryLedger", "record", "obtain pair lock", pairLockKey(vendorId, itemId), err)
		return nil, err
	}
	defer release()

	for attempt := 1; ; attempt++ {
		created, err := s.insertTransaction(ctx, req)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, errSerialCollision) || attempt >= maxSerialAttempts {
			span.RecordError(err)
			return nil, err
		}
		config.LogError(s.logger, "InventoryLedger", "record", "serial collision, resyncing", attempt, err)
		if err := resyncSerialSequence(ctx, s.db); err != nil {
			return nil, err
		}
	}
}

func (s *Store) insertTransaction(ctx context.Context, req TransactionRequest) (*Transaction, error) {
	row := req.build()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch req.Type() {
		case TransactionTypeIn:
			if err := s.admitIn(tx, row.VendorId, row.ItemId, row.Quantity); err != nil {
				return err
			}
		case TransactionTypeOut:
			if err := addOut(tx, row.VendorId, row.ItemId, row.Quantity); err != nil {
				return err
			}
		}

		srNo, err := nextSerial(tx, transactionSerialSequence)
		if err != nil {
			return err
		}
		row.SrNo = srNo
		if err := tx.Create(&row).Error; err != nil {
			if utils.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: srNo %d", errSerialCollision, srNo)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *Store) admitIn(tx *gorm.DB, vendorId int, itemId int, qty decimal.Decimal) error {
	var balance InventoryBalance
	err := s.forUpdate(tx).Where("vendor_id = ? AND item_id = ?", vendorId, itemId).Take(&balance).Error
	hasHistory := true
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hasHistory = false
	} else if err != nil {
		return err
	}
	if err := CheckAdmission(hasHistory, balance.Available(), qty); err != nil {
		return err
	}
	return tx.Model(&InventoryBalance{}).
		Where("vendor_id = ? AND item_id = ?", vendorId, itemId).
		Updates(map[string]interface{}{
			"total_in":   gorm.Expr("total_in + ?", qty),
			"updated_at": time.Now(),
		}).Error
}

func addOut(tx *gorm.DB, vendorId int, itemId int, qty decimal.Decimal) error {
	balance := InventoryBalance{VendorId: vendorId, ItemId: itemId, TotalOut: qty, TotalIn: decimal.Zero}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vendor_id"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_out":  gorm.Expr("inventory_balances.total_out + ?", qty),
			"updated_at": time.Now(),
		}),
	}).Create(&balance).Error
}

// DeleteTransaction removes a log entry and takes its quantity back out of
// the pair's balance.
func (s *Store) DeleteTransaction(ctx context.Context, id int) (*TransactionView, error) {
	existing, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, pairLockKey(existing.VendorId, existing.ItemId))
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Transaction
		if err := s.forUpdate(tx).Where("id = ?", id).Take(&row).Error; err != nil {
			return utils.NormalizeStoreError(err, "", "Transaction not found")
		}
		if err := tx.Delete(&Transaction{}, row.ID).Error; err != nil {
			return err
		}
		column := "total_out"
		if row.Type == TransactionTypeIn {
			column = "total_in"
		}
		return tx.Model(&InventoryBalance{}).
			Where("vendor_id = ? AND item_id = ?", row.VendorId, row.ItemId).
			Updates(map[string]interface{}{
				column:       gorm.Expr(column+" - ?", row.Quantity),
				"updated_at": time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

type pairTotals struct {
	VendorId int
	ItemId   int
	Entries  int64
	TotalOut decimal.Decimal
	TotalIn  decimal.Decimal
}

func pairTotalsQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&Transaction{}).Select(
		"transactions.vendor_id, transactions.item_id, COUNT(*) AS entries, "+
			"COALESCE(SUM(CASE WHEN transactions.type = ? THEN transactions.quantity ELSE 0 END), 0) AS total_out, "+
			"COALESCE(SUM(CASE WHEN transactions.type = ? THEN transactions.quantity ELSE 0 END), 0) AS total_in",
		TransactionTypeOut, TransactionTypeIn).
		Group("transactions.vendor_id, transactions.item_id")
}

// Availability sums the log for one pair.
func (s *Store) Availability(ctx context.Context, vendorId int, itemId int) (*Availability, error) {
	var rows []pairTotals
	err := pairTotalsQuery(s.db.WithContext(ctx)).
		Where("transactions.vendor_id = ? AND transactions.item_id = ?", vendorId, itemId).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := &Availability{VendorId: vendorId, ItemId: itemId, TotalOut: decimal.Zero, TotalIn: decimal.Zero, Available: decimal.Zero}
	if len(rows) > 0 && rows[0].Entries > 0 {
		result.HasHistory = true
		result.TotalOut = rows[0].TotalOut
		result.TotalIn = rows[0].TotalIn
		result.Available = rows[0].TotalOut.Sub(rows[0].TotalIn)
	}
	return result, nil
}

func (s *Store) AvailabilityByName(ctx context.Context, vendorName string, itemName string) (*Availability, error) {
	vendorId, err := s.vendorIdByName(ctx, vendorName)
	if err != nil {
		return nil, err
	}
	item, err := s.GetItemByName(ctx, itemName)
	if err != nil {
		return nil, err
	}
	return s.Availability(ctx, vendorId, item.ID)
}

// ListAvailableInventory groups the log by vendor and item name and keeps
// the groups with stock still out, sorted by vendor then item.
func (s *Store) ListAvailableInventory(ctx context.Context) ([]*AvailableInventory, error) {
	var rows []struct {
		Vendor   string
		Item     string
		TotalOut decimal.Decimal
		TotalIn  decimal.Decimal
	}
	err := s.db.WithContext(ctx).Model(&Transaction{}).Select(
		"vendors.name AS vendor, items.name AS item, "+
			"COALESCE(SUM(CASE WHEN transactions.type = ? THEN transactions.quantity ELSE 0 END), 0) AS total_out, "+
			"COALESCE(SUM(CASE WHEN transactions.type = ? THEN transactions.quantity ELSE 0 END), 0) AS total_in",
		TransactionTypeOut, TransactionTypeIn).
		Joins("JOIN vendors ON vendors.id = transactions.vendor_id").
		Joins("JOIN items ON items.id = transactions.item_id").
		Group("vendors.name, items.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]*AvailableInventory, 0, len(rows))
	for _, r := range rows {
		available := r.TotalOut.Sub(r.TotalIn)
		if !available.IsPositive() {
			continue
		}
		results = append(results, &AvailableInventory{
			Vendor:    r.Vendor,
			Item:      r.Item,
			TotalOut:  r.TotalOut,
			TotalIn:   r.TotalIn,
			Available: available,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Vendor != results[j].Vendor {
			return results[i].Vendor < results[j].Vendor
		}
		return results[i].Item < results[j].Item
	})
	return results, nil
}

// RebuildBalances recomputes every balance row and the serial counter from
// the log. With dryRun it only reports drift. Run it while nothing else
// writes transactions.
func (s *Store) RebuildBalances(ctx context.Context, dryRun bool) ([]BalanceDrift, error) {
	var drifts []BalanceDrift
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var computed []pairTotals
		if err := pairTotalsQuery(tx).Scan(&computed).Error; err != nil {
			return err
		}
		var stored []InventoryBalance
		if err := tx.Find(&stored).Error; err != nil {
			return err
		}
		storedByPair := make(map[[2]int]InventoryBalance, len(stored))
		for _, b := range stored {
			storedByPair[[2]int{b.VendorId, b.ItemId}] = b
		}

		seen := make(map[[2]int]bool, len(computed))
		for _, c := range computed {
			key := [2]int{c.VendorId, c.ItemId}
			seen[key] = true
			b, ok := storedByPair[key]
			if !ok || !b.TotalOut.Equal(c.TotalOut) || !b.TotalIn.Equal(c.TotalIn) {
				drifts = append(drifts, BalanceDrift{
					VendorId: c.VendorId, ItemId: c.ItemId,
					StoredOut: b.TotalOut, StoredIn: b.TotalIn,
					ComputedOut: c.TotalOut, ComputedIn: c.TotalIn,
					MissingBalance: !ok,
				})
			}
		}
		for key, b := range storedByPair {
			if seen[key] || (b.TotalOut.IsZero() && b.TotalIn.IsZero()) {
				continue
			}
			drifts = append(drifts, BalanceDrift{
				VendorId: b.VendorId, ItemId: b.ItemId,
				StoredOut: b.TotalOut, StoredIn: b.TotalIn,
				ComputedOut: decimal.Zero, ComputedIn: decimal.Zero,
			})
		}
		if dryRun {
			return nil
		}

		if err := tx.Where("1 = 1").Delete(&InventoryBalance{}).Error; err != nil {
			return err
		}
		for _, c := range computed {
			balance := InventoryBalance{VendorId: c.VendorId, ItemId: c.ItemId, TotalOut: c.TotalOut, TotalIn: c.TotalIn}
			if err := tx.Create(&balance).Error; err != nil {
				return err
			}
		}
		highest, err := maxSerialNo(tx)
		if err != nil {
			return err
		}
		// never move the counter backwards; deleted serials are not reissued
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&Sequence{Name: transactionSerialSequence, Counter: highest}).Error; err != nil {
			return err
		}
		return tx.Model(&Sequence{}).
			Where("name = ? AND counter < ?", transactionSerialSequence, highest).
			UpdateColumn("counter", highest).Error
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(drifts, func(i, j int) bool {
		if drifts[i].VendorId != drifts[j].VendorId {
			return drifts[i].VendorId < drifts[j].VendorId
		}
		return drifts[i].ItemId < drifts[j].ItemId
	})
	return drifts, nil
}
