package timeline

import (
	"testing"

	"biocode/internal/models"
)

func TestCycleAge(t *testing.T) {
	tests := []struct {
		name        string
		age         int
		cycleLength int
		want        int
	}{
		{"first year of first cycle", 1, 7, 1},
		{"last year of first cycle", 7, 7, 7},
		{"first year of second cycle", 8, 7, 1},
		{"mid second cycle", 10, 7, 3},
		{"exact multiple", 14, 7, 7},
		{"zero cycle length is degenerate", 25, 0, 25},
		{"negative cycle length is degenerate", 25, -3, 25},
		{"anchor age equals cycle length", 7, 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CycleAge(tt.age, tt.cycleLength); got != tt.want {
				t.Errorf("CycleAge(%d, %d) = %d, want %d", tt.age, tt.cycleLength, got, tt.want)
			}
		})
	}
}

func TestCycleAgePeriodicity(t *testing.T) {
	// Cycle age must repeat with the cycle length and stay in [1, L].
	const cycleLength = 18
	for age := 1; age <= 100; age++ {
		got := CycleAge(age, cycleLength)
		if got < 1 || got > cycleLength {
			t.Fatalf("CycleAge(%d, %d) = %d, out of [1, %d]", age, cycleLength, got, cycleLength)
		}
		if next := CycleAge(age+cycleLength, cycleLength); next != got {
			t.Fatalf("CycleAge not periodic: age %d -> %d, age %d -> %d", age, got, age+cycleLength, next)
		}
	}
}

func TestCycleIndex(t *testing.T) {
	tests := []struct {
		age, cycleLength, want int
	}{
		{1, 18, 1},
		{18, 18, 1},
		{19, 18, 2},
		{25, 18, 2},
		{36, 18, 2},
		{37, 18, 3},
		{40, 18, 3},
	}
	for _, tt := range tests {
		if got := CycleIndex(tt.age, tt.cycleLength); got != tt.want {
			t.Errorf("CycleIndex(%d, %d) = %d, want %d", tt.age, tt.cycleLength, got, tt.want)
		}
	}
}

func anchoredTimeline(anchorAge int, eventAges ...int) *models.TimelineData {
	data := &models.TimelineData{
		InitialAnchor: &models.Anchor{Age: anchorAge, Description: "anchor"},
	}
	for i, age := range eventAges {
		data.Events = append(data.Events, models.ConflictEvent{
			ID:  string(rune('a' + i)),
			Age: age,
		})
	}
	return data
}

func TestBuildDividerPlacement(t *testing.T) {
	// Anchor at 18 (cycle length 18), events at 25 and 40: the walk
	// enters cycle 2 before age 25 and cycle 3 before age 40.
	data := anchoredTimeline(18, 40, 25)
	items := Build(data)

	var got []string
	for _, item := range items {
		got = append(got, item.Kind)
	}
	want := []string{KindAnchor, KindDivider, KindEvent, KindDivider, KindEvent}
	if len(got) != len(want) {
		t.Fatalf("items = %v, want kinds %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d kind = %s, want %s (all: %v)", i, got[i], want[i], got)
		}
	}

	// Divider before age 25 opens cycle 2 spanning ages 19-36.
	d2 := items[1]
	if d2.Cycle != 2 || d2.StartAge != 19 || d2.EndAge != 36 {
		t.Errorf("cycle 2 divider = {Cycle:%d StartAge:%d EndAge:%d}, want {2 19 36}", d2.Cycle, d2.StartAge, d2.EndAge)
	}
	// Divider before age 40 opens cycle 3 spanning ages 37-54.
	d3 := items[3]
	if d3.Cycle != 3 || d3.StartAge != 37 || d3.EndAge != 54 {
		t.Errorf("cycle 3 divider = {Cycle:%d StartAge:%d EndAge:%d}, want {3 37 54}", d3.Cycle, d3.StartAge, d3.EndAge)
	}

	// Cycle ages: 18 -> 18, 25 -> 7, 40 -> 4.
	if items[0].CycleAge != 18 || items[2].CycleAge != 7 || items[4].CycleAge != 4 {
		t.Errorf("cycle ages = %d, %d, %d; want 18, 7, 4",
			items[0].CycleAge, items[2].CycleAge, items[4].CycleAge)
	}
}

func TestBuildNoDividerInFirstCycle(t *testing.T) {
	data := anchoredTimeline(18, 3, 10, 17)
	for _, item := range Build(data) {
		if item.Kind == KindDivider {
			t.Fatalf("unexpected divider inside first cycle: %+v", item)
		}
	}
}

func TestBuildAnchorFirstAmongEqualAges(t *testing.T) {
	// An event at the anchor's age must render after the anchor.
	data := anchoredTimeline(18, 18)
	items := Build(data)
	if len(items) < 2 || items[0].Kind != KindAnchor || items[1].Kind != KindEvent {
		t.Fatalf("equal-age ordering wrong: %+v", items)
	}
}

func TestBuildDegenerateCycleLength(t *testing.T) {
	// Anchor age 0 means no cycling: no dividers, cycleAge == age.
	data := anchoredTimeline(0, 5, 50)
	for _, item := range Build(data) {
		if item.Kind == KindDivider {
			t.Fatalf("divider emitted with degenerate cycle length: %+v", item)
		}
		if item.CycleAge != item.Age {
			t.Errorf("degenerate cycleAge = %d for age %d, want equal", item.CycleAge, item.Age)
		}
	}
}

func TestBuildNilAnchor(t *testing.T) {
	if items := Build(&models.TimelineData{Events: []models.ConflictEvent{{ID: "x", Age: 3}}}); items != nil {
		t.Fatalf("Build without anchor = %v, want nil", items)
	}
	if items := Build(nil); items != nil {
		t.Fatalf("Build(nil) = %v, want nil", items)
	}
}

func TestSortEventsStableAndNonMutating(t *testing.T) {
	events := []models.ConflictEvent{
		{ID: "c", Age: 30},
		{ID: "a", Age: 10},
		{ID: "b1", Age: 20},
		{ID: "b2", Age: 20},
	}
	original := make([]models.ConflictEvent, len(events))
	copy(original, events)

	sorted := SortEvents(events)

	wantOrder := []string{"a", "b1", "b2", "c"}
	for i, id := range wantOrder {
		if sorted[i].ID != id {
			t.Fatalf("sorted[%d].ID = %s, want %s", i, sorted[i].ID, id)
		}
	}
	for i := range original {
		if events[i].ID != original[i].ID {
			t.Fatalf("SortEvents mutated its input at %d", i)
		}
	}

	// Idempotent: sorting a sorted slice changes nothing.
	again := SortEvents(sorted)
	for i := range sorted {
		if again[i].ID != sorted[i].ID {
			t.Fatalf("SortEvents not idempotent at %d", i)
		}
	}
}
