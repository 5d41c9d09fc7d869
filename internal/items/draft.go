package items

import (
	"math"

	"github.com/google/uuid"

	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/rounding"
)

// Edit is a pending override for one item. A nil field means "no override".
type Edit struct {
	Quantity    *int     `json:"quantity,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// Draft is the list of items under review together with their pending edits.
//
// Edits is sparse: only items with overrides have an entry, and a missing entry never
// means zero. Overrides are folded into the items by Materialize.
// Every method returns a new Draft and leaves the receiver untouched.
type Draft struct {
	Items []models.ReceiptItem `json:"items"`
	Edits map[string]Edit      `json:"edits"`
}

// NewDraft starts a draft from a copy of list.
func NewDraft(list []models.ReceiptItem) Draft {
	d := Draft{
		Items: make([]models.ReceiptItem, len(list)),
		Edits: map[string]Edit{},
	}
	for i, item := range list {
		d.Items[i] = item.Clone()
	}
	return d
}

func (d Draft) clone() Draft {
	c := NewDraft(d.Items)
	for id, e := range d.Edits {
		c.Edits[id] = e
	}
	return c
}

func (d Draft) index(id string) int {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Effective returns item with any pending overrides applied.
func (d Draft) Effective(item models.ReceiptItem) models.ReceiptItem {
	item = item.Clone()
	e, ok := d.Edits[item.ID]
	if !ok {
		return item
	}
	if e.Quantity != nil {
		item.Quantity = *e.Quantity
	}
	if e.Price != nil {
		item.Price = *e.Price
	}
	if e.Description != nil {
		item.Description = *e.Description
	}
	return item
}

// ItemTotal returns the effective line total of the item with the given ID, rounded to cents.
func (d Draft) ItemTotal(id string) float64 {
	i := d.index(id)
	if i < 0 {
		return 0
	}
	return rounding.Round2(d.Effective(d.Items[i]).LineTotal())
}

// Subtotal returns the sum of effective line totals, rounded to cents.
func (d Draft) Subtotal() float64 {
	var sum float64
	for _, item := range d.Items {
		sum += d.Effective(item).LineTotal()
	}
	return rounding.Round2(sum)
}

// SetQuantity records a quantity override. Unknown IDs are ignored.
func (d Draft) SetQuantity(id string, quantity int) (Draft, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return d, ErrInvalidQuantity
	}
	return d.edit(id, func(e *Edit) { e.Quantity = &quantity }), nil
}

// SetPrice records a unit price override. Unknown IDs are ignored.
func (d Draft) SetPrice(id string, price float64) (Draft, error) {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return d, ErrInvalidPrice
	}
	return d.edit(id, func(e *Edit) { e.Price = &price }), nil
}

// SetDescription records a description override. Unknown IDs are ignored.
func (d Draft) SetDescription(id, description string) Draft {
	return d.edit(id, func(e *Edit) { e.Description = &description })
}

func (d Draft) edit(id string, apply func(*Edit)) Draft {
	if d.index(id) < 0 {
		return d
	}
	c := d.clone()
	e := c.Edits[id]
	apply(&e)
	c.Edits[id] = e
	return c
}

// AddItem appends a zero-priced, unassigned item of quantity 1.
func (d Draft) AddItem() (Draft, models.ReceiptItem) {
	item := models.ReceiptItem{
		ID:          "item-" + uuid.NewString(),
		Description: "New Item",
		Price:       0,
		Quantity:    1,
		AssignedTo:  []string{},
	}
	c := d.clone()
	c.Items = append(c.Items, item)
	return c, item.Clone()
}

// DeleteItem removes an item and any edit recorded for it.
func (d Draft) DeleteItem(id string) Draft {
	i := d.index(id)
	if i < 0 {
		return d
	}
	c := d.clone()
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	delete(c.Edits, id)
	return c
}

// SplitItem decomposes an item in place using its effective quantity, price and
// description. The item's edit is consumed. Items with effective quantity ≤ 1 are left as is.
// Pieces are named after the item's base ID and numbered past any pieces of the same base
// already in the draft, so IDs stay unique after a partial merge.
func (d Draft) SplitItem(id string) Draft {
	i := d.index(id)
	if i < 0 {
		return d
	}
	effective := d.Effective(d.Items[i])
	if effective.Quantity <= 1 || effective.Quantity > MaxQuantity {
		return d
	}

	c := d.clone()
	base := BaseID(id)
	pieces := split(effective, base, nextPiece(d.Items, base))
	rest := append([]models.ReceiptItem(nil), c.Items[i+1:]...)
	c.Items = append(append(c.Items[:i], pieces...), rest...)
	delete(c.Edits, id)
	return c
}

// MergeItems merges decomposed items back into one. Pending edits on the constituents
// are applied before merging and then dropped.
func (d Draft) MergeItems(ids []string) (Draft, models.ReceiptItem, error) {
	effective := d.Materialize()
	merged, item, err := Merge(effective, ids)
	if err != nil {
		return d, models.ReceiptItem{}, err
	}

	c := d.clone()
	c.Items = merged
	for _, id := range ids {
		delete(c.Edits, id)
	}
	// Effective values of untouched items must survive, so keep their original fields.
	for i := range c.Items {
		if orig := d.index(c.Items[i].ID); orig >= 0 && c.Items[i].ID != item.ID {
			c.Items[i] = d.Items[orig].Clone()
		}
	}
	return c, item, nil
}

// Materialize returns the items with all pending edits folded in.
func (d Draft) Materialize() []models.ReceiptItem {
	out := make([]models.ReceiptItem, len(d.Items))
	for i, item := range d.Items {
		out[i] = d.Effective(item)
	}
	return out
}

// WithoutAssignee removes personID from every item's assignees.
func (d Draft) WithoutAssignee(personID string) Draft {
	c := d.clone()
	for i := range c.Items {
		c.Items[i].AssignedTo = without(c.Items[i].AssignedTo, personID)
	}
	return c
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}
