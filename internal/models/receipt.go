package models

import "time"

// Receipt represents a purchase receipt with items and charges to be split among people.
type Receipt struct {
	// ID is the unique identifier for the receipt.
	ID string `json:"id"`

	// MerchantName and Date are optional, as read off the receipt.
	MerchantName string `json:"merchantName,omitempty"`
	Date         string `json:"date,omitempty"`

	// Items are the line items in receipt order.
	Items []ReceiptItem `json:"items"`

	// Subtotal is the sum of price × quantity over Items at capture time.
	Subtotal float64 `json:"subtotal"`

	// Tax lines, e.g. state and city tax.
	Tax []TaxItem `json:"tax"`

	// Tip is a single amount.
	Tip float64 `json:"tip"`

	// Fees are service or delivery fees.
	Fees []FeeItem `json:"fees"`

	// Total should equal Subtotal + ΣTax + Tip + ΣFees once finalized.
	// It may diverge while the receipt is being edited.
	Total float64 `json:"total"`

	// ImageURL points at the uploaded receipt image, if any.
	ImageURL string `json:"imageUrl,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	// ID is unique within the receipt. Decomposed items carry a "-split-<n>" suffix.
	ID string `json:"id"`

	Description string `json:"description"`

	// Price is the per-unit price (≥ 0).
	Price float64 `json:"price"`

	// Quantity is the number of units (≥ 1).
	Quantity int `json:"quantity"`

	// AssignedTo is the set of Person IDs sharing this item.
	// An item with no assignees is not charged to anyone.
	AssignedTo []string `json:"assignedTo"`
}

// TaxItem is one tax line.
type TaxItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// FeeItem is one fee line.
type FeeItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// LineTotal returns price × quantity.
func (i ReceiptItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// IsAssignedTo reports whether personID is among the item's assignees.
func (i ReceiptItem) IsAssignedTo(personID string) bool {
	for _, id := range i.AssignedTo {
		if id == personID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the item.
func (i ReceiptItem) Clone() ReceiptItem {
	i.AssignedTo = cloneStrings(i.AssignedTo)
	return i
}

// TaxTotal returns the sum of all tax lines.
func (r *Receipt) TaxTotal() float64 {
	var total float64
	for _, t := range r.Tax {
		total += t.Amount
	}
	return total
}

// FeeTotal returns the sum of all fee lines.
func (r *Receipt) FeeTotal() float64 {
	var total float64
	for _, f := range r.Fees {
		total += f.Amount
	}
	return total
}

// ItemsSubtotal returns the live sum of item line totals.
// Unlike Subtotal it reflects edits made after capture.
func (r *Receipt) ItemsSubtotal() float64 {
	var total float64
	for _, item := range r.Items {
		total += item.LineTotal()
	}
	return total
}

// ItemByID returns the index of the item with the given ID, or -1.
func (r *Receipt) ItemByID(id string) int {
	for i := range r.Items {
		if r.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the receipt. A nil receipt clones to nil.
func (r *Receipt) Clone() *Receipt {
	if r == nil {
		return nil
	}
	c := *r
	c.Items = make([]ReceiptItem, len(r.Items))
	for i, item := range r.Items {
		c.Items[i] = item.Clone()
	}
	c.Tax = append([]TaxItem(nil), r.Tax...)
	c.Fees = append([]FeeItem(nil), r.Fees...)
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
