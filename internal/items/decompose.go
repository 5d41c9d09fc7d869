// Package items implements the item editing phase: decomposing multi-quantity items
// into unit items, merging them back, and tracking pending quantity/price/description edits.
package items

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/receiptsplit/internal/models"
)

// splitSuffix separates a decomposed item's base ID from its position.
const splitSuffix = "-split-"

// MaxQuantity is the largest quantity an item may have. Splitting creates one item
// per unit, so the bound also caps how many items a split can produce.
const MaxQuantity = 1000

var (
	ErrNothingToMerge  = errors.New("at least one item is required to merge")
	ErrItemNotFound    = errors.New("item not found")
	ErrMixedBaseIDs    = errors.New("items do not come from the same original item")
	ErrIDConflict      = errors.New("another item already uses the merged id")
	ErrInvalidQuantity = fmt.Errorf("quantity must be between 1 and %d", MaxQuantity)
	ErrInvalidPrice    = errors.New("price cannot be negative")
)

// Split converts an item with quantity N into N items of quantity 1.
//
// The pieces get IDs "<id>-split-<i>", keep the unit price and description, and start
// unassigned since they are new entities. An item with quantity ≤ 1 or above MaxQuantity
// is returned unchanged.
func Split(item models.ReceiptItem) []models.ReceiptItem {
	return split(item, item.ID, 0)
}

// split numbers the pieces base-split-start, base-split-start+1, ...
func split(item models.ReceiptItem, base string, start int) []models.ReceiptItem {
	if item.Quantity <= 1 || item.Quantity > MaxQuantity {
		return []models.ReceiptItem{item.Clone()}
	}

	pieces := make([]models.ReceiptItem, item.Quantity)
	for i := range pieces {
		pieces[i] = models.ReceiptItem{
			ID:          pieceID(base, start+i),
			Description: item.Description,
			Price:       item.Price,
			Quantity:    1,
			AssignedTo:  []string{},
		}
	}
	return pieces
}

func pieceID(base string, n int) string {
	return base + splitSuffix + strconv.Itoa(n)
}

// nextPiece returns the first piece number above every "<base>-split-<n>" in list.
func nextPiece(list []models.ReceiptItem, base string) int {
	next := 0
	prefix := base + splitSuffix
	for _, item := range list {
		rest, ok := strings.CutPrefix(item.ID, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

// BaseID strips a decomposition suffix from id.
func BaseID(id string) string {
	if i := strings.Index(id, splitSuffix); i >= 0 {
		return id[:i]
	}
	return id
}

// Merge recombines the items with the given IDs into a single item and returns the new
// item list along with the merged item.
//
// All IDs must exist and share a base ID. The merged item takes the base ID, the first
// constituent's description and position, the summed quantity, and an unrounded unit
// price that preserves the combined line total. Its assignees are the union of the constituents'
// assignees, so it is unassigned only if every constituent was.
func Merge(list []models.ReceiptItem, ids []string) ([]models.ReceiptItem, models.ReceiptItem, error) {
	if len(ids) == 0 {
		return nil, models.ReceiptItem{}, ErrNothingToMerge
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var (
		parts []models.ReceiptItem
		first = -1
	)
	for i, item := range list {
		if !wanted[item.ID] {
			continue
		}
		if first < 0 {
			first = i
		}
		parts = append(parts, item)
		delete(wanted, item.ID)
	}
	for _, id := range ids {
		if wanted[id] {
			return nil, models.ReceiptItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
	}

	base := BaseID(parts[0].ID)
	merged := models.ReceiptItem{
		ID:          base,
		Description: parts[0].Description,
		AssignedTo:  []string{},
	}
	for _, item := range list {
		if item.ID == base && !containsID(parts, item.ID) {
			return nil, models.ReceiptItem{}, fmt.Errorf("%w: %s", ErrIDConflict, base)
		}
	}

	lineTotal := decimal.Zero
	seen := make(map[string]bool)
	for _, p := range parts {
		if BaseID(p.ID) != base {
			return nil, models.ReceiptItem{}, fmt.Errorf("%w: %s and %s", ErrMixedBaseIDs, parts[0].ID, p.ID)
		}
		merged.Quantity += p.Quantity
		lineTotal = lineTotal.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Quantity))))
		for _, personID := range p.AssignedTo {
			if !seen[personID] {
				seen[personID] = true
				merged.AssignedTo = append(merged.AssignedTo, personID)
			}
		}
	}
	if merged.Quantity > MaxQuantity {
		return nil, models.ReceiptItem{}, fmt.Errorf("%w: merged quantity %d", ErrInvalidQuantity, merged.Quantity)
	}
	merged.Price = lineTotal.Div(decimal.NewFromInt(int64(merged.Quantity))).InexactFloat64()

	out := make([]models.ReceiptItem, 0, len(list)-len(parts)+1)
	for i, item := range list {
		switch {
		case i == first:
			out = append(out, merged)
		case containsID(parts, item.ID):
			continue
		default:
			out = append(out, item)
		}
	}
	return out, merged, nil
}

func containsID(list []models.ReceiptItem, id string) bool {
	for _, item := range list {
		if item.ID == id {
			return true
		}
	}
	return false
}
