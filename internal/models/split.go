package models

// AssignedItem represents one person's share of one item.
type AssignedItem struct {
	ItemID      string `json:"itemId"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`

	// FullPrice is price × quantity of the source item.
	FullPrice float64 `json:"fullPrice"`

	// SplitAmount is this person's share of FullPrice.
	SplitAmount float64 `json:"splitAmount"`

	// SharedWith lists the other Person IDs assigned to the same item.
	SharedWith []string `json:"sharedWith"`
}

// PersonSplit represents one person's calculated share of a receipt.
// This is the output of the split calculation and is never mutated directly.
type PersonSplit struct {
	PersonID   string         `json:"personId"`
	PersonName string         `json:"personName"`
	Items      []AssignedItem `json:"items"`

	// Subtotal is the sum of this person's item shares.
	Subtotal float64 `json:"subtotal"`

	// TaxAmount, TipAmount and FeeAmount are this person's proportional share of
	// the receipt's charges: charge × (Subtotal / total assigned subtotal).
	TaxAmount float64 `json:"taxAmount"`
	TipAmount float64 `json:"tipAmount"`
	FeeAmount float64 `json:"feeAmount"`

	// Total is Subtotal + TaxAmount + TipAmount + FeeAmount.
	Total float64 `json:"total"`
}
