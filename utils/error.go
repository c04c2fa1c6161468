package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrDuplicateKey          = errors.New("duplicate key")
	ErrNotFound              = errors.New("record not found")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrPriceNotFound         = errors.New("price not found")
	ErrInUse                 = errors.New("record in use")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a single-field validation error. An empty field
// yields a message-only error.
func NewValidationError(field string, message string) error {
	if field == "" {
		return &ValidationError{Message: message}
	}
	return &ValidationError{Message: message, Fields: map[string]string{field: message}}
}

// InsufficientInventoryError is returned when an IN exceeds what was sent out.
type InsufficientInventoryError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientInventoryError) Error() string {
	if !e.Available.IsPositive() {
		return "Item not available for import. Please export it first."
	}
	return fmt.Sprintf("Only %s units available. You requested %s units.", e.Available.String(), e.Requested.String())
}

func (e *InsufficientInventoryError) Unwrap() error { return ErrInsufficientInventory }

// messageError keeps a user-facing message while matching a sentinel.
type messageError struct {
	kind    error
	message string
}

func (e *messageError) Error() string { return e.message }
func (e *messageError) Unwrap() error { return e.kind }

func NewDuplicateError(message string) error {
	return &messageError{kind: ErrDuplicateKey, message: message}
}

func NewNotFoundError(message string) error {
	return &messageError{kind: ErrNotFound, message: message}
}

func NewInUseError(message string) error {
	return &messageError{kind: ErrInUse, message: message}
}

func NewPriceNotFoundError(message string) error {
	return &messageError{kind: ErrPriceNotFound, message: message}
}

// IsDuplicateKeyError recognises unique violations from every supported driver.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicateKey) {
		return true
	}
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) &&
		(liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return true
	}
	return false
}

// NormalizeStoreError maps driver/gorm errors onto the sentinel taxonomy.
func NormalizeStoreError(err error, duplicateMessage string, notFoundMessage string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if notFoundMessage == "" {
			return ErrNotFound
		}
		return NewNotFoundError(notFoundMessage)
	case IsDuplicateKeyError(err):
		if errors.Is(err, ErrDuplicateKey) {
			return err
		}
		if duplicateMessage == "" {
			return ErrDuplicateKey
		}
		return NewDuplicateError(duplicateMessage)
	}
	return err
}
