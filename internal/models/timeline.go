package models

// Anchor is the single reference event that defines both the origin of a
// user's timeline and the length of its repeating cycle (cycle length =
// anchor age in years).
type Anchor struct {
	Age         int    `json:"age"`
	Date        string `json:"date"` // free-form, never parsed
	Description string `json:"description"`
}

// Categorization holds the event fields that are populated exclusively by
// the AI gateway. An event counts as categorized once GNMExplanation is set.
type Categorization struct {
	ConflictType    string `json:"conflictType,omitempty"`
	GermLayer       string `json:"germLayer,omitempty"`
	HealingSymptoms string `json:"healingSymptoms,omitempty"`
	GNMExplanation  string `json:"gnmExplanation,omitempty"`
}

// ConflictEvent is a single biographical conflict on the timeline.
type ConflictEvent struct {
	ID           string `json:"id"`
	Age          int    `json:"age"`
	Date         string `json:"date"`
	Description  string `json:"description"`
	Characters   string `json:"characters"`
	Feelings     string `json:"feelings"`
	BodyLocation string `json:"bodyLocation"`

	Categorization
}

// Categorized reports whether the AI gateway has already analyzed this event.
func (e *ConflictEvent) Categorized() bool {
	return e.GNMExplanation != ""
}

// EventInput carries the user-editable fields of a conflict event, as
// submitted by the event form. The server assigns IDs and the gateway
// assigns categorization fields.
type EventInput struct {
	Age          string `json:"age"` // validated as a non-negative integer
	Date         string `json:"date"`
	Description  string `json:"description"`
	Characters   string `json:"characters"`
	Feelings     string `json:"feelings"`
	BodyLocation string `json:"bodyLocation"`
}

// TimelineData is the aggregate persisted per user: the anchor plus all
// conflict events. It is exported and imported as one unit.
type TimelineData struct {
	InitialAnchor *Anchor         `json:"initialAnchor"`
	Events        []ConflictEvent `json:"events"`
}

// CycleLength returns the repeating cycle length derived from the anchor,
// or 0 when no anchor is set (degenerate case, no cycling).
func (t *TimelineData) CycleLength() int {
	if t.InitialAnchor == nil {
		return 0
	}
	return t.InitialAnchor.Age
}
