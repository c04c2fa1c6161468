package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

// NilIfEmpty maps the zero value to a NULL column.
func NilIfEmpty[T comparable](value T) *T {
	var zero T
	if value == zero {
		return nil
	}
	return &value
}

// ParseId parses a positive integer path id.
func ParseId(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, NewValidationError("id", "invalid id")
	}
	return id, nil
}

// TimeOrNow returns *t, or the current time when t is nil or zero.
func TimeOrNow(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return time.Now()
	}
	return *t
}

func DecimalToFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
