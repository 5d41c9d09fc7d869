// Package session holds the state of one split session and the transitions on it.
//
// State is a value snapshot. Every transition returns a new State and never mutates the
// receiver, so a caller sees either the old snapshot or the new one.
package session

import (
	"errors"
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"

	"github.com/mmynk/receiptsplit/internal/calculator"
	"github.com/mmynk/receiptsplit/internal/charges"
	"github.com/mmynk/receiptsplit/internal/items"
	"github.com/mmynk/receiptsplit/internal/models"
)

// Phase is the step of the flow a session is in.
type Phase string

const (
	// PhaseEditing is item and charge review; edits go to the Draft and Charges.
	PhaseEditing Phase = "editing"
	// PhaseSplitting is assignment of items to people.
	PhaseSplitting Phase = "splitting"
)

var (
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrDuplicateName = errors.New("someone with this name already exists")
	ErrNoReceipt     = errors.New("session has no receipt")
	ErrWrongPhase    = errors.New("action not allowed in this phase")
	ErrUnknownAction = errors.New("unknown action")
)

// Palette is the set of display colors handed out to people in order.
var Palette = []string{"blue", "green", "purple", "pink", "yellow", "red", "indigo", "teal", "orange", "cyan"}

var textPolicy = bluemonday.StrictPolicy()

// State is the aggregate of a receipt, the people splitting it and their assignments.
type State struct {
	SessionID string          `json:"sessionId"`
	Phase     Phase           `json:"phase"`
	Receipt   *models.Receipt `json:"receipt"`

	// Draft and Charges hold pending edits while in PhaseEditing.
	Draft   items.Draft      `json:"draft"`
	Charges charges.Resolver `json:"charges"`

	People []models.Person `json:"people"`

	// SelectedPersonID is the person a click on an item assigns to. Empty means none.
	SelectedPersonID string `json:"selectedPersonId,omitempty"`
}

// New starts a session in PhaseEditing for receipt.
func New(sessionID string, receipt *models.Receipt) State {
	s := State{
		SessionID: sessionID,
		Phase:     PhaseEditing,
		Receipt:   receipt.Clone(),
		Charges:   charges.NewResolver(),
		People:    []models.Person{},
	}
	if receipt != nil {
		s.Draft = items.NewDraft(receipt.Items)
	} else {
		s.Draft = items.NewDraft(nil)
	}
	return s
}

func (s State) clone() State {
	s.Receipt = s.Receipt.Clone()
	s.People = append([]models.Person{}, s.People...)
	return s
}

// Splits calculates every person's share of the current receipt.
func (s State) Splits() []models.PersonSplit {
	return calculator.CalculateSplits(s.Receipt, s.People)
}

// Summary reconciles Splits against the receipt.
func (s State) Summary() calculator.Summary {
	return calculator.Summarize(s.Receipt, s.Splits())
}

// Person returns the person with the given ID.
func (s State) Person(id string) (models.Person, bool) {
	for _, p := range s.People {
		if p.ID == id {
			return p, true
		}
	}
	return models.Person{}, false
}

// AssignItem adds personID to the item's assignees. Assigning twice is a no-op, as is
// referencing an unknown item or person.
func (s State) AssignItem(itemID, personID string) State {
	if _, ok := s.Person(personID); !ok || s.Receipt == nil {
		return s
	}
	i := s.Receipt.ItemByID(itemID)
	if i < 0 || s.Receipt.Items[i].IsAssignedTo(personID) {
		return s
	}
	c := s.clone()
	c.Receipt.Items[i].AssignedTo = append(c.Receipt.Items[i].AssignedTo, personID)
	return c
}

// UnassignItem removes personID from the item's assignees, if present.
func (s State) UnassignItem(itemID, personID string) State {
	if s.Receipt == nil {
		return s
	}
	i := s.Receipt.ItemByID(itemID)
	if i < 0 || !s.Receipt.Items[i].IsAssignedTo(personID) {
		return s
	}
	c := s.clone()
	item := &c.Receipt.Items[i]
	kept := item.AssignedTo[:0]
	for _, id := range item.AssignedTo {
		if id != personID {
			kept = append(kept, id)
		}
	}
	item.AssignedTo = kept
	return c
}

// ToggleItem assigns or unassigns the selected person on an item.
// Without a selection it does nothing.
func (s State) ToggleItem(itemID string) State {
	if s.SelectedPersonID == "" || s.Receipt == nil {
		return s
	}
	i := s.Receipt.ItemByID(itemID)
	if i < 0 {
		return s
	}
	if s.Receipt.Items[i].IsAssignedTo(s.SelectedPersonID) {
		return s.UnassignItem(itemID, s.SelectedPersonID)
	}
	return s.AssignItem(itemID, s.SelectedPersonID)
}

// SelectPerson moves the cursor to personID. Selecting the selected person clears it.
func (s State) SelectPerson(personID string) State {
	if personID == "" || personID == s.SelectedPersonID {
		s.SelectedPersonID = ""
		return s
	}
	if _, ok := s.Person(personID); !ok {
		return s
	}
	s.SelectedPersonID = personID
	return s
}

// AddPerson adds someone to the split. The name is trimmed and stripped of markup;
// it must be non-empty and unique ignoring case.
func (s State) AddPerson(name string) (State, models.Person, error) {
	name, err := s.checkName("", name)
	if err != nil {
		return s, models.Person{}, err
	}
	p := models.Person{
		ID:    uuid.NewString(),
		Name:  name,
		Color: Palette[len(s.People)%len(Palette)],
	}
	c := s.clone()
	c.People = append(c.People, p)
	return c, p, nil
}

// RemovePerson removes a person and every assignment they had. If they were selected,
// the cursor is cleared.
func (s State) RemovePerson(personID string) State {
	if _, ok := s.Person(personID); !ok {
		return s
	}
	c := s.clone()

	people := make([]models.Person, 0, len(c.People))
	for _, p := range c.People {
		if p.ID != personID {
			people = append(people, p)
		}
	}
	c.People = people

	if c.Receipt != nil {
		for i := range c.Receipt.Items {
			c.Receipt.Items[i].AssignedTo = without(c.Receipt.Items[i].AssignedTo, personID)
		}
	}
	c.Draft = c.Draft.WithoutAssignee(personID)

	if c.SelectedPersonID == personID {
		c.SelectedPersonID = ""
	}
	return c
}

// RenamePerson changes a person's name under the same rules as AddPerson.
// Renaming to the current name in a different case is allowed.
func (s State) RenamePerson(personID, name string) (State, error) {
	if _, ok := s.Person(personID); !ok {
		return s, nil
	}
	name, err := s.checkName(personID, name)
	if err != nil {
		return s, err
	}
	c := s.clone()
	for i := range c.People {
		if c.People[i].ID == personID {
			c.People[i].Name = name
		}
	}
	return c, nil
}

func (s State) checkName(selfID, name string) (string, error) {
	name = CleanText(name)
	if name == "" {
		return "", ErrEmptyName
	}
	folded := cases.Fold().String(name)
	for _, p := range s.People {
		if p.ID != selfID && cases.Fold().String(p.Name) == folded {
			return "", ErrDuplicateName
		}
	}
	return name, nil
}

// CleanText strips markup from user-entered text and trims surrounding space.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
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
