package models

import (
	"strings"

	"github.com/mmdatafocus/inout_backend/utils"
)

type TransactionType string

const (
	TransactionTypeIn  TransactionType = "IN"
	TransactionTypeOut TransactionType = "OUT"
)

func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIn || t == TransactionTypeOut
}

// ParseTransactionType accepts "in"/"out" in any case.
func ParseTransactionType(raw string) (TransactionType, error) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", utils.NewValidationError("type", "Type must be either IN or OUT")
	}
	return t, nil
}

type WireThickness string

const (
	WireThickness22mm WireThickness = "22mm"
	WireThickness28mm WireThickness = "28mm"
	WireThickness30mm WireThickness = "30mm"
	WireThickness32mm WireThickness = "32mm"
)

var WireThicknesses = []WireThickness{WireThickness22mm, WireThickness28mm, WireThickness30mm, WireThickness32mm}

func (w WireThickness) IsValid() bool {
	for _, v := range WireThicknesses {
		if v == w {
			return true
		}
	}
	return false
}

func ParseWireThickness(raw string) (WireThickness, error) {
	w := WireThickness(raw)
	if !w.IsValid() {
		return "", utils.NewValidationError("wireThickness", "Wire thickness must be one of 22mm, 28mm, 30mm, 32mm")
	}
	return w, nil
}

type PriceSource string

const (
	PriceSourceVendor PriceSource = "vendor"
	PriceSourceChart  PriceSource = "chart"
)

type AttachmentKind string

const (
	AttachmentPDF   AttachmentKind = "pdf"
	AttachmentImage AttachmentKind = "image"
)
