package models

// Person represents someone taking part in a split.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string `json:"id"`

	// Name is unique within a session, compared case-insensitively.
	Name string `json:"name"`

	// Color is a display hint only; it plays no part in calculation.
	Color string `json:"color,omitempty"`
}
