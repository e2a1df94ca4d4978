// Package timeline holds the pure cycle arithmetic that places anchor and
// events on a single repeating timeline: cycle age, cycle index, stable
// age ordering and divider placement between cycles.
package timeline

import (
	"sort"

	"biocode/internal/models"
)

// CycleAge returns an item's position within its repeating cycle, in
// [1, cycleLength]. With cycleLength <= 0 there is no cycling and the
// absolute age is returned unchanged.
func CycleAge(age, cycleLength int) int {
	if cycleLength <= 0 {
		return age
	}
	return (age-1)%cycleLength + 1
}

// CycleIndex returns the 1-based index of the cycle an age falls in.
// The anchor age itself closes cycle 1.
func CycleIndex(age, cycleLength int) int {
	if cycleLength <= 0 {
		return 1
	}
	return (age-1)/cycleLength + 1
}

// Item kinds on the rendered timeline.
const (
	KindAnchor  = "anchor"
	KindDivider = "divider"
	KindEvent   = "event"
)

// Item is one renderable row of the unified timeline: the anchor, a
// conflict event, or a divider between cycles.
type Item struct {
	Kind     string `json:"kind"`
	Age      int    `json:"age,omitempty"`
	CycleAge int    `json:"cycleAge,omitempty"`
	Cycle    int    `json:"cycle,omitempty"`

	// Divider rows only: the absolute age range the new cycle spans.
	StartAge int `json:"startAge,omitempty"`
	EndAge   int `json:"endAge,omitempty"`

	Anchor *models.Anchor        `json:"anchor,omitempty"`
	Event  *models.ConflictEvent `json:"event,omitempty"`
}

// Build renders a timeline aggregate into its display order: every item
// sorted ascending by age (stable, anchor first among equal ages since it
// heads the pre-sort list), with a divider emitted whenever the walk enters
// a cycle beyond the first.
func Build(data *models.TimelineData) []Item {
	if data == nil || data.InitialAnchor == nil {
		return nil
	}
	cycleLength := data.CycleLength()

	type entry struct {
		age    int
		anchor *models.Anchor
		event  *models.ConflictEvent
	}
	entries := make([]entry, 0, len(data.Events)+1)
	entries = append(entries, entry{age: data.InitialAnchor.Age, anchor: data.InitialAnchor})
	for i := range data.Events {
		ev := &data.Events[i]
		entries = append(entries, entry{age: ev.Age, event: ev})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].age < entries[j].age
	})

	items := make([]Item, 0, len(entries)+4)
	lastRenderedCycle := -1
	for _, e := range entries {
		cycle := CycleIndex(e.age, cycleLength)
		if cycle > lastRenderedCycle {
			if cycle > 1 {
				items = append(items, Item{
					Kind:     KindDivider,
					Cycle:    cycle,
					StartAge: cycle*cycleLength - cycleLength + 1,
					EndAge:   cycle * cycleLength,
				})
			}
			lastRenderedCycle = cycle
		}
		item := Item{
			Age:      e.age,
			CycleAge: CycleAge(e.age, cycleLength),
			Cycle:    cycle,
		}
		if e.anchor != nil {
			item.Kind = KindAnchor
			item.Anchor = e.anchor
		} else {
			item.Kind = KindEvent
			item.Event = e.event
		}
		items = append(items, item)
	}
	return items
}

// SortEvents orders events ascending by age, stable in original order for
// equal ages. It sorts a copy; display ordering never mutates stored data.
func SortEvents(events []models.ConflictEvent) []models.ConflictEvent {
	sorted := make([]models.ConflictEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Age < sorted[j].Age
	})
	return sorted
}
