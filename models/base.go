package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/inout_backend/config"
	"github.com/mmdatafocus/inout_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var tracer = otel.Tracer("github.com/mmdatafocus/inout_backend/models")

// Store is the handle every operation runs through. Build one at startup
// with NewStore and pass it to whatever serves requests.
type Store struct {
	db     *gorm.DB
	locker utils.KeyLocker
	cache  *utils.Cache
	blobs  utils.BlobStorage
	logger *logrus.Logger
}

type StoreOption func(*Store)

func WithLocker(locker utils.KeyLocker) StoreOption {
	return func(s *Store) {
		if locker != nil {
			s.locker = locker
		}
	}
}

func WithCache(cache *utils.Cache) StoreOption {
	return func(s *Store) { s.cache = cache }
}

func WithBlobStorage(blobs utils.BlobStorage) StoreOption {
	return func(s *Store) { s.blobs = blobs }
}

func WithLogger(logger *logrus.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStore(db *gorm.DB, opts ...StoreOption) *Store {
	s := &Store{
		db:     db,
		locker: utils.NewLocalLocker(),
		logger: config.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Blobs() utils.BlobStorage {
	return s.blobs
}

// Close releases the connection pool and the blob storage client.
func (s *Store) Close() error {
	var errs []error
	if s.blobs != nil {
		if err := s.blobs.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, err)
		}
	} else {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// forUpdate adds a row lock where the dialect has one; sqlite already
// serialises writers.
func (s *Store) forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == config.DialectSQLite {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// DateInput accepts RFC3339 timestamps as well as plain dates.
type DateInput struct {
	time.Time
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func (d *DateInput) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", raw)
}

// Ptr returns nil for an absent or empty date.
func (d *DateInput) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
