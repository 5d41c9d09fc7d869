// Package calculator derives per-person splits from a receipt and its assignments.
package calculator

import (
	"github.com/mmynk/receiptsplit/internal/models"
)

// CalculateSplits computes how much each person owes, including proportional
// tax, tip and fees.
//
// Algorithm:
//   - each assigned item is divided equally among its assignees
//   - unassigned items are skipped and charged to nobody
//   - charges are allocated by share of the total assigned subtotal:
//     person_charge = charge × (person_subtotal / Σ person_subtotal)
//
// The result has one entry per person, in the order of people. Values are kept at full
// precision; rounding is left to the presentation layer.
func CalculateSplits(receipt *models.Receipt, people []models.Person) []models.PersonSplit {
	if receipt == nil || len(people) == 0 {
		return []models.PersonSplit{}
	}

	splits := make([]models.PersonSplit, len(people))
	index := make(map[string]int, len(people))
	for i, p := range people {
		splits[i] = models.PersonSplit{
			PersonID:   p.ID,
			PersonName: p.Name,
			Items:      []models.AssignedItem{},
		}
		index[p.ID] = i
	}

	// Calculate each person's subtotal based on assigned items
	for _, item := range receipt.Items {
		if len(item.AssignedTo) == 0 {
			continue
		}

		itemTotal := item.LineTotal()
		share := itemTotal / float64(len(item.AssignedTo))
		for _, personID := range item.AssignedTo {
			i, ok := index[personID]
			if !ok {
				continue
			}
			splits[i].Items = append(splits[i].Items, models.AssignedItem{
				ItemID:      item.ID,
				Description: item.Description,
				Quantity:    item.Quantity,
				FullPrice:   itemTotal,
				SplitAmount: share,
				SharedWith:  without(item.AssignedTo, personID),
			})
			splits[i].Subtotal += share
		}
	}

	var totalAssigned float64
	for _, s := range splits {
		totalAssigned += s.Subtotal
	}

	totalTax := receipt.TaxTotal()
	totalFees := receipt.FeeTotal()

	// Apply proportional charges and calculate totals
	for i := range splits {
		split := &splits[i]
		if totalAssigned > 0 && split.Subtotal > 0 {
			proportion := split.Subtotal / totalAssigned
			split.TaxAmount = totalTax * proportion
			split.TipAmount = receipt.Tip * proportion
			split.FeeAmount = totalFees * proportion
		}
		split.Total = split.Subtotal + split.TaxAmount + split.TipAmount + split.FeeAmount
	}

	return splits
}

// without returns ids minus id, never nil.
func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}
