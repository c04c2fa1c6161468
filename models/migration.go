package models

import (
	"context"
	"fmt"
)

// Migrate creates or alters every table and seeds the srNo counter from
// the existing transaction log.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&Vendor{}, &VendorWireAssignment{},
		&Item{}, &VendorItemPrice{},
		&PayalPriceChart{},
		&Transaction{}, &InventoryBalance{}, &Sequence{},
		&Payment{},
		&PrintStatus{},
		&VendorTransactionRecord{},
		&User{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := ensureSerialSequence(ctx, s.db); err != nil {
		return fmt.Errorf("seed serial sequence: %w", err)
	}
	return nil
}
