// Package charges resolves user edits to tax, tip and fees, each of which can be entered
// either as a percentage of the item subtotal or as an absolute total.
package charges

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/rounding"
)

// Kind identifies a charge.
type Kind string

const (
	KindTax  Kind = "tax"
	KindTip  Kind = "tip"
	KindFees Kind = "fees"
)

// Kinds lists every charge kind in display order.
var Kinds = []Kind{KindTax, KindTip, KindFees}

// Field identifies which of a charge's two inputs was edited.
type Field string

const (
	FieldPercentage Field = "percentage"
	FieldTotal      Field = "total"
)

var (
	ErrUnknownKind   = errors.New("unknown charge kind")
	ErrUnknownField  = errors.New("unknown charge field")
	ErrInvalidAmount = errors.New("amount must be a non-negative number")
)

// Override is the last edit made to a charge. Value is a percentage or a total,
// depending on Field; the other figure is always derived from it.
type Override struct {
	Field Field   `json:"field"`
	Value float64 `json:"value"`
}

// Resolver holds at most one pending override per charge kind.
// Its methods return a new Resolver and leave the receiver untouched.
type Resolver struct {
	Overrides map[Kind]Override `json:"overrides"`
}

// NewResolver returns a Resolver with no overrides.
func NewResolver() Resolver {
	return Resolver{Overrides: map[Kind]Override{}}
}

func (r Resolver) with(kind Kind, o Override) Resolver {
	c := NewResolver()
	for k, v := range r.Overrides {
		c.Overrides[k] = v
	}
	c.Overrides[kind] = o
	return c
}

// SetPercentage makes the percentage authoritative for kind.
func (r Resolver) SetPercentage(kind Kind, percentage float64) (Resolver, error) {
	if err := validate(kind, percentage); err != nil {
		return r, err
	}
	return r.with(kind, Override{Field: FieldPercentage, Value: percentage}), nil
}

// SetTotal makes the total authoritative for kind. The total is rounded to cents.
func (r Resolver) SetTotal(kind Kind, total float64) (Resolver, error) {
	if err := validate(kind, total); err != nil {
		return r, err
	}
	return r.with(kind, Override{Field: FieldTotal, Value: rounding.Round2(total)}), nil
}

// SetInput applies a raw text input. An empty input resets the charge to zero rather
// than to its previously derived value.
func (r Resolver) SetInput(kind Kind, field Field, raw string) (Resolver, error) {
	raw = strings.TrimSpace(raw)
	var value float64
	if raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return r, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
		}
		value = v
	}

	switch field {
	case FieldPercentage:
		return r.SetPercentage(kind, value)
	case FieldTotal:
		return r.SetTotal(kind, value)
	default:
		return r, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// Clear drops the override for kind, so both figures derive from the receipt again.
func (r Resolver) Clear(kind Kind) Resolver {
	c := NewResolver()
	for k, v := range r.Overrides {
		if k != kind {
			c.Overrides[k] = v
		}
	}
	return c
}

// Total returns the charge total for kind against the live item subtotal.
func (r Resolver) Total(kind Kind, receipt *models.Receipt, subtotal float64) float64 {
	o, ok := r.Overrides[kind]
	switch {
	case !ok:
		return rounding.Round2(current(kind, receipt))
	case o.Field == FieldPercentage:
		return rounding.Round2(subtotal * o.Value / 100)
	default:
		return rounding.Round2(o.Value)
	}
}

// Percentage returns the charge as a percentage of the live item subtotal.
// It is zero when the subtotal is zero.
func (r Resolver) Percentage(kind Kind, receipt *models.Receipt, subtotal float64) float64 {
	if o, ok := r.Overrides[kind]; ok && o.Field == FieldPercentage {
		return o.Value
	}
	if subtotal <= 0 {
		return 0
	}
	return r.Total(kind, receipt, subtotal) * 100 / subtotal
}

// Apply writes the resolved charges into a copy of receipt.
//
// Existing tax and fee lines are rescaled to the new totals, keeping their relative
// sizes and summing exactly to the total. A receipt with no lines gets a single line
// when the total is nonzero. Subtotal and Total are recomputed from subtotal.
func (r Resolver) Apply(receipt *models.Receipt, subtotal float64) *models.Receipt {
	if receipt == nil {
		return nil
	}
	out := receipt.Clone()

	taxTotal := r.Total(KindTax, receipt, subtotal)
	tipTotal := r.Total(KindTip, receipt, subtotal)
	feeTotal := r.Total(KindFees, receipt, subtotal)

	out.Tax = rescaleTax(out.Tax, taxTotal)
	out.Fees = rescaleFees(out.Fees, feeTotal)
	out.Tip = tipTotal
	out.Subtotal = rounding.Round2(subtotal)
	out.Total = rounding.Sum([]float64{out.Subtotal, taxTotal, tipTotal, feeTotal})
	return out
}

func rescaleTax(lines []models.TaxItem, total float64) []models.TaxItem {
	if len(lines) == 0 {
		if total == 0 {
			return []models.TaxItem{}
		}
		return []models.TaxItem{{Description: "Tax", Amount: total}}
	}
	amounts := make([]float64, len(lines))
	for i, l := range lines {
		amounts[i] = l.Amount
	}
	for i, a := range rounding.Scale(amounts, total) {
		lines[i].Amount = a
	}
	return lines
}

func rescaleFees(lines []models.FeeItem, total float64) []models.FeeItem {
	if len(lines) == 0 {
		if total == 0 {
			return []models.FeeItem{}
		}
		return []models.FeeItem{{Description: "Fees", Amount: total}}
	}
	amounts := make([]float64, len(lines))
	for i, l := range lines {
		amounts[i] = l.Amount
	}
	for i, a := range rounding.Scale(amounts, total) {
		lines[i].Amount = a
	}
	return lines
}

func current(kind Kind, receipt *models.Receipt) float64 {
	if receipt == nil {
		return 0
	}
	switch kind {
	case KindTax:
		return receipt.TaxTotal()
	case KindTip:
		return receipt.Tip
	case KindFees:
		return receipt.FeeTotal()
	}
	return 0
}

func validate(kind Kind, value float64) error {
	switch kind {
	case KindTax, KindTip, KindFees:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidAmount
	}
	return nil
}
