package session

import (
	"github.com/mmynk/receiptsplit/internal/charges"
	"github.com/mmynk/receiptsplit/internal/items"
)

// Continue ends the editing phase: pending item edits are folded into the receipt,
// the resolved tax/tip/fees are written to it, and the session moves to PhaseSplitting.
func (s State) Continue() State {
	if s.Receipt == nil {
		return s
	}
	c := s.clone()
	list := s.Draft.Materialize()
	c.Receipt.Items = list
	c.Receipt = s.Charges.Apply(c.Receipt, s.Draft.Subtotal())
	c.Draft = items.NewDraft(list)
	c.Charges = charges.NewResolver()
	c.Phase = PhaseSplitting
	return c
}

// BackToEditing reopens the receipt for editing. Assignments are kept on the items.
func (s State) BackToEditing() State {
	if s.Receipt == nil {
		return s
	}
	c := s.clone()
	c.Draft = items.NewDraft(c.Receipt.Items)
	c.Phase = PhaseEditing
	return c
}

// ChargeView is the pair of figures shown for one charge while editing.
type ChargeView struct {
	Kind       charges.Kind `json:"kind"`
	Percentage float64      `json:"percentage"`
	Total      float64      `json:"total"`
}

// ChargeViews resolves every charge against the draft's live subtotal.
func (s State) ChargeViews() []ChargeView {
	subtotal := s.Draft.Subtotal()
	views := make([]ChargeView, 0, len(charges.Kinds))
	for _, kind := range charges.Kinds {
		views = append(views, ChargeView{
			Kind:       kind,
			Percentage: s.Charges.Percentage(kind, s.Receipt, subtotal),
			Total:      s.Charges.Total(kind, s.Receipt, subtotal),
		})
	}
	return views
}
