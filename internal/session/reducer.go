package session

import (
	"fmt"

	"github.com/mmynk/receiptsplit/internal/charges"
	"github.com/mmynk/receiptsplit/internal/items"
)

// ActionType names a state transition.
type ActionType string

const (
	ActionAddPerson     ActionType = "ADD_PERSON"
	ActionRemovePerson  ActionType = "REMOVE_PERSON"
	ActionRenamePerson  ActionType = "RENAME_PERSON"
	ActionSelectPerson  ActionType = "SELECT_PERSON"
	ActionAssignItem    ActionType = "ASSIGN_ITEM"
	ActionUnassignItem  ActionType = "UNASSIGN_ITEM"
	ActionToggleItem    ActionType = "TOGGLE_ITEM"
	ActionAddItem       ActionType = "ADD_ITEM"
	ActionDeleteItem    ActionType = "DELETE_ITEM"
	ActionSetQuantity   ActionType = "SET_QUANTITY"
	ActionSetPrice      ActionType = "SET_PRICE"
	ActionSetDesc       ActionType = "SET_DESCRIPTION"
	ActionSplitItem     ActionType = "SPLIT_ITEM"
	ActionMergeItems    ActionType = "MERGE_ITEMS"
	ActionEditCharge    ActionType = "EDIT_CHARGE"
	ActionContinue      ActionType = "CONTINUE"
	ActionBackToEditing ActionType = "BACK_TO_EDITING"
)

// actionPhase is the phase each receipt action is allowed in.
// Person actions are allowed in any phase and are not listed.
var actionPhase = map[ActionType]Phase{
	ActionAssignItem:    PhaseSplitting,
	ActionUnassignItem:  PhaseSplitting,
	ActionToggleItem:    PhaseSplitting,
	ActionBackToEditing: PhaseSplitting,
	ActionAddItem:       PhaseEditing,
	ActionDeleteItem:    PhaseEditing,
	ActionSetQuantity:   PhaseEditing,
	ActionSetPrice:      PhaseEditing,
	ActionSetDesc:       PhaseEditing,
	ActionSplitItem:     PhaseEditing,
	ActionMergeItems:    PhaseEditing,
	ActionEditCharge:    PhaseEditing,
	ActionContinue:      PhaseEditing,
}

// Action is a serializable request for a state transition.
// Only the fields relevant to Type are read.
type Action struct {
	Type ActionType `json:"type"`

	ItemID   string   `json:"itemId,omitempty"`
	ItemIDs  []string `json:"itemIds,omitempty"`
	PersonID string   `json:"personId,omitempty"`
	Name     string   `json:"name,omitempty"`

	Quantity    int     `json:"quantity,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Description string  `json:"description,omitempty"`

	Charge charges.Kind  `json:"charge,omitempty"`
	Field  charges.Field `json:"field,omitempty"`
	Input  string        `json:"input,omitempty"`
}

// Reduce applies a to s and returns the resulting state.
// On error the original state is returned unchanged.
func Reduce(s State, a Action) (State, error) {
	switch a.Type {
	case ActionAddPerson:
		next, _, err := s.AddPerson(a.Name)
		return next, err
	case ActionRemovePerson:
		return s.RemovePerson(a.PersonID), nil
	case ActionRenamePerson:
		return s.RenamePerson(a.PersonID, a.Name)
	case ActionSelectPerson:
		return s.SelectPerson(a.PersonID), nil
	}

	phase, ok := actionPhase[a.Type]
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
	if s.Receipt == nil {
		return s, ErrNoReceipt
	}

	if s.Phase != phase {
		return s, fmt.Errorf("%w: %s during %s", ErrWrongPhase, a.Type, s.Phase)
	}

	switch a.Type {
	case ActionAssignItem:
		return s.AssignItem(a.ItemID, a.PersonID), nil
	case ActionUnassignItem:
		return s.UnassignItem(a.ItemID, a.PersonID), nil
	case ActionToggleItem:
		return s.ToggleItem(a.ItemID), nil
	case ActionBackToEditing:
		return s.BackToEditing(), nil
	case ActionAddItem:
		d, _ := s.Draft.AddItem()
		return s.withDraft(d), nil
	case ActionDeleteItem:
		return s.withDraft(s.Draft.DeleteItem(a.ItemID)), nil
	case ActionSetQuantity:
		d, err := s.Draft.SetQuantity(a.ItemID, a.Quantity)
		if err != nil {
			return s, err
		}
		return s.withDraft(d), nil
	case ActionSetPrice:
		d, err := s.Draft.SetPrice(a.ItemID, a.Price)
		if err != nil {
			return s, err
		}
		return s.withDraft(d), nil
	case ActionSetDesc:
		return s.withDraft(s.Draft.SetDescription(a.ItemID, CleanText(a.Description))), nil
	case ActionSplitItem:
		return s.withDraft(s.Draft.SplitItem(a.ItemID)), nil
	case ActionMergeItems:
		d, _, err := s.Draft.MergeItems(a.ItemIDs)
		if err != nil {
			return s, err
		}
		return s.withDraft(d), nil
	case ActionEditCharge:
		r, err := s.Charges.SetInput(a.Charge, a.Field, a.Input)
		if err != nil {
			return s, err
		}
		s.Charges = r
		return s, nil
	case ActionContinue:
		return s.Continue(), nil
	}
	return s, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
}

func (s State) withDraft(d items.Draft) State {
	s.Draft = d
	return s
}
