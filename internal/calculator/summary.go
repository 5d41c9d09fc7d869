package calculator

import (
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/rounding"
)

// Summary reconciles a set of splits against the receipt they came from.
// It is what the end user sees as the "unassigned items" warning.
type Summary struct {
	// AssignedSubtotal is the sum of line totals of items with at least one assignee.
	AssignedSubtotal float64 `json:"assignedSubtotal"`

	// UnassignedSubtotal is the sum of line totals nobody is paying for.
	UnassignedSubtotal float64 `json:"unassignedSubtotal"`

	// UnassignedItemIDs lists items with no assignees, in receipt order.
	UnassignedItemIDs []string `json:"unassignedItemIds"`

	// SplitTotal is Σ PersonSplit.Total rounded to cents.
	SplitTotal float64 `json:"splitTotal"`

	// ReceiptTotal is the receipt's Total.
	ReceiptTotal float64 `json:"receiptTotal"`

	// Drift is ReceiptTotal − SplitTotal rounded to cents. It is zero when every item is
	// assigned and the receipt total is finalized.
	Drift float64 `json:"drift"`
}

// FullyAssigned reports whether every item has at least one assignee.
func (s Summary) FullyAssigned() bool {
	return len(s.UnassignedItemIDs) == 0
}

// Summarize builds a Summary for splits previously computed from receipt.
func Summarize(receipt *models.Receipt, splits []models.PersonSplit) Summary {
	summary := Summary{UnassignedItemIDs: []string{}}
	if receipt == nil {
		return summary
	}

	var assigned, unassigned []float64
	for _, item := range receipt.Items {
		if len(item.AssignedTo) == 0 {
			unassigned = append(unassigned, item.LineTotal())
			summary.UnassignedItemIDs = append(summary.UnassignedItemIDs, item.ID)
			continue
		}
		assigned = append(assigned, item.LineTotal())
	}

	totals := make([]float64, len(splits))
	for i, s := range splits {
		totals[i] = s.Total
	}

	summary.AssignedSubtotal = rounding.Sum(assigned)
	summary.UnassignedSubtotal = rounding.Sum(unassigned)
	summary.SplitTotal = rounding.Sum(totals)
	summary.ReceiptTotal = receipt.Total
	summary.Drift = rounding.Round2(receipt.Total - summary.SplitTotal)
	return summary
}
