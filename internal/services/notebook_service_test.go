package services

import (
	"context"
	"errors"
	"testing"

	"biocode/internal/apperrors"
	"biocode/internal/models"
	"biocode/internal/store"
)

func newNotebookFixture(gw *fakeGateway) *NotebookService {
	st := store.NewMemoryStore()
	tl := NewTimelineService(st, gw)
	return NewNotebookService(st, gw, tl)
}

func TestNotebookAddUpdateDelete(t *testing.T) {
	svc := newNotebookFixture(&fakeGateway{})
	ctx := context.Background()

	entries, err := svc.Add(ctx, "alice", models.SymptomEntry{Name: "migraine", InitialRating: 7})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	entry := entries[0]
	if entry.ID == "" || entry.CreatedAt == "" {
		t.Fatalf("entry not initialized: %+v", entry)
	}
	if entry.CurrentRating != 7 {
		t.Errorf("CurrentRating = %v, want the initial rating", entry.CurrentRating)
	}

	entries, err = svc.Update(ctx, "alice", entry.ID, models.SymptomEntry{CurrentRating: 3, ActionsTaken: "rest"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if entries[0].CurrentRating != 3 || entries[0].ActionsTaken != "rest" {
		t.Errorf("updated entry = %+v", entries[0])
	}
	if entries[0].Name != "migraine" {
		t.Errorf("empty name overwrote the stored one: %+v", entries[0])
	}

	if _, err := svc.Update(ctx, "alice", "missing", models.SymptomEntry{CurrentRating: 1}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("update absent id err = %v", err)
	}

	entries, err = svc.Delete(ctx, "alice", entry.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries after delete = %+v", entries)
	}

	// Deleting again is a no-op.
	if _, err := svc.Delete(ctx, "alice", entry.ID); err != nil {
		t.Errorf("second delete err = %v", err)
	}
}

func TestNotebookValidation(t *testing.T) {
	svc := newNotebookFixture(&fakeGateway{})
	ctx := context.Background()

	if _, err := svc.Add(ctx, "alice", models.SymptomEntry{Name: "  ", InitialRating: 5}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("blank name err = %v", err)
	}
	if _, err := svc.Add(ctx, "alice", models.SymptomEntry{Name: "x", InitialRating: 11}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("rating 11 err = %v", err)
	}
}

func TestSanitizeEntriesSkipsMalformed(t *testing.T) {
	entries := []models.SymptomEntry{
		{Name: "migraine", InitialRating: 7, CurrentRating: 3,
			CreatedAt: "2026-08-01T10:00:00Z", UpdatedAt: "2026-08-10T10:00:00Z"},
		{Name: "", InitialRating: 5, CreatedAt: "2026-08-01T10:00:00Z", UpdatedAt: "2026-08-01T10:00:00Z"},       // no name
		{Name: "fatigue", InitialRating: 4, CreatedAt: "not a timestamp", UpdatedAt: "2026-08-02T10:00:00Z"},     // bad created
		{Name: "nausea", InitialRating: -2, CurrentRating: 99, CreatedAt: "2026-08-03T10:00:00Z", UpdatedAt: ""}, // ratings out of range
	}

	points := SanitizeEntries(entries)
	if len(points) != 2 {
		t.Fatalf("points = %+v, want the migraine pair only", points)
	}
	if points[0].Date != "2026-08-01" || points[0].Rating != 7 {
		t.Errorf("initial point = %+v", points[0])
	}
	if points[1].Date != "2026-08-10" || points[1].Rating != 3 {
		t.Errorf("updated point = %+v", points[1])
	}
}

func TestDashboardSeriesAlignment(t *testing.T) {
	svc := newNotebookFixture(&fakeGateway{})
	ctx := context.Background()
	st := svc.store

	entries := []models.SymptomEntry{
		{ID: "1", Name: "migraine", InitialRating: 7, CurrentRating: 3,
			CreatedAt: "2026-08-01T10:00:00Z", UpdatedAt: "2026-08-10T10:00:00Z"},
		{ID: "2", Name: "fatigue", InitialRating: 5, CurrentRating: 5,
			CreatedAt: "2026-08-05T10:00:00Z", UpdatedAt: "2026-08-05T10:00:00Z"},
	}
	if err := store.SetJSON(ctx, st, "alice", store.KeyNotebook, entries); err != nil {
		t.Fatal(err)
	}

	series, err := svc.Dashboard(ctx, "alice")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	wantLabels := []string{"2026-08-01", "2026-08-05", "2026-08-10"}
	if len(series.Labels) != 3 {
		t.Fatalf("labels = %v", series.Labels)
	}
	for i, want := range wantLabels {
		if series.Labels[i] != want {
			t.Fatalf("labels = %v, want %v", series.Labels, wantLabels)
		}
	}

	migraine := series.Series["migraine"]
	if migraine[0] == nil || *migraine[0] != 7 || migraine[1] != nil || migraine[2] == nil || *migraine[2] != 3 {
		t.Errorf("migraine series = %v", migraine)
	}
	fatigue := series.Series["fatigue"]
	if fatigue[0] != nil || fatigue[1] == nil || *fatigue[1] != 5 || fatigue[2] != nil {
		t.Errorf("fatigue series = %v", fatigue)
	}
}

func TestInsightRequiresEnoughEntries(t *testing.T) {
	svc := newNotebookFixture(&fakeGateway{})
	ctx := context.Background()

	_, _ = svc.Add(ctx, "alice", models.SymptomEntry{Name: "a", InitialRating: 1})
	_, _ = svc.Add(ctx, "alice", models.SymptomEntry{Name: "b", InitialRating: 2})

	if _, err := svc.Insight(ctx, "alice"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("insight with 2 entries err = %v, want validation", err)
	}
}
