package services

import (
	"context"
	"errors"
	"testing"

	"biocode/internal/apperrors"
	"biocode/internal/gateway"
	"biocode/internal/models"
	"biocode/internal/store"
)

func newTimelineFixture(gw *fakeGateway) (*TimelineService, store.Store) {
	st := store.NewMemoryStore()
	return NewTimelineService(st, gw), st
}

func validInput(age string) models.EventInput {
	return models.EventInput{
		Age:          age,
		Date:         "1999",
		Description:  "moved away",
		Characters:   "family",
		Feelings:     "alone",
		BodyLocation: "stomach",
	}
}

func TestAddEventAssignsIDAndValidates(t *testing.T) {
	svc, _ := newTimelineFixture(&fakeGateway{})
	ctx := context.Background()

	data, err := svc.AddEvent(ctx, "alice", validInput("12"))
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if len(data.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(data.Events))
	}
	if data.Events[0].ID == "" {
		t.Error("event id not assigned")
	}
	if data.Events[0].Age != 12 {
		t.Errorf("age = %d, want 12", data.Events[0].Age)
	}

	for _, bad := range []models.EventInput{
		validInput("-1"),
		validInput("twelve"),
		validInput(""),
		{Age: "5"}, // all text fields missing
	} {
		if _, err := svc.AddEvent(ctx, "alice", bad); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("AddEvent(%+v) err = %v, want validation error", bad, err)
		}
	}
}

func TestUpdateEventPreservesID(t *testing.T) {
	svc, _ := newTimelineFixture(&fakeGateway{})
	ctx := context.Background()

	data, _ := svc.AddEvent(ctx, "alice", validInput("12"))
	id := data.Events[0].ID

	updated, err := svc.UpdateEvent(ctx, "alice", id, validInput("13"))
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if updated.Events[0].ID != id {
		t.Errorf("id changed: %s -> %s", id, updated.Events[0].ID)
	}
	if updated.Events[0].Age != 13 {
		t.Errorf("age = %d, want 13", updated.Events[0].Age)
	}

	if _, err := svc.UpdateEvent(ctx, "alice", "no-such-id", validInput("5")); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("UpdateEvent on absent id err = %v, want not found", err)
	}
}

func TestDeleteEventExactlyOneAndNoOp(t *testing.T) {
	svc, _ := newTimelineFixture(&fakeGateway{})
	ctx := context.Background()

	a, _ := svc.AddEvent(ctx, "alice", validInput("10"))
	b, _ := svc.AddEvent(ctx, "alice", validInput("20"))
	idA, idB := a.Events[0].ID, b.Events[1].ID

	data, err := svc.DeleteEvent(ctx, "alice", idA)
	if err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if len(data.Events) != 1 || data.Events[0].ID != idB {
		t.Fatalf("after delete events = %+v, want only %s", data.Events, idB)
	}

	// Absent id is a silent no-op.
	data, err = svc.DeleteEvent(ctx, "alice", "no-such-id")
	if err != nil {
		t.Fatalf("DeleteEvent absent id: %v", err)
	}
	if len(data.Events) != 1 {
		t.Fatalf("no-op delete changed events: %+v", data.Events)
	}
}

func TestMutationsInvalidateDerivedState(t *testing.T) {
	svc, st := newTimelineFixture(&fakeGateway{})
	ctx := context.Background()

	seed := func() {
		_ = store.SetJSON(ctx, st, "alice", store.KeyAnalysis, &models.Analysis{FuturePrediction: "x"})
		_ = store.SetJSON(ctx, st, "alice", store.KeyReport, &models.ReportData{NextSteps: "y"})
		_ = store.SetJSON(ctx, st, "alice", store.KeyConversation, []models.ChatMessage{{Role: "user", Content: "q"}})
	}
	assertCleared := func(op string) {
		t.Helper()
		for _, key := range []string{store.KeyAnalysis, store.KeyReport, store.KeyConversation} {
			if _, err := st.Get(ctx, "alice", key); !errors.Is(err, store.ErrNoDocument) {
				t.Errorf("%s left %s behind (err=%v)", op, key, err)
			}
		}
	}

	seed()
	if _, err := svc.SetAnchor(ctx, "alice", models.Anchor{Age: 18, Description: "born"}); err != nil {
		t.Fatalf("SetAnchor: %v", err)
	}
	assertCleared("SetAnchor")

	seed()
	data, err := svc.AddEvent(ctx, "alice", validInput("3"))
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	assertCleared("AddEvent")

	seed()
	if _, err := svc.DeleteEvent(ctx, "alice", data.Events[0].ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	assertCleared("DeleteEvent")
}

func TestCategorizeUncategorizedPartialFailure(t *testing.T) {
	calls := 0
	gw := &fakeGateway{
		categorize: func(event models.ConflictEvent) (models.Categorization, error) {
			calls++
			if event.Description == "second" {
				return models.Categorization{}, errors.New("model unavailable")
			}
			return models.Categorization{
				ConflictType:   "separation",
				GNMExplanation: "explained: " + event.Description,
			}, nil
		},
	}
	svc, _ := newTimelineFixture(gw)
	ctx := context.Background()

	in := validInput("5")
	in.Description = "first"
	_, _ = svc.AddEvent(ctx, "alice", in)
	in.Description = "second"
	_, _ = svc.AddEvent(ctx, "alice", in)
	in.Description = "third"
	_, _ = svc.AddEvent(ctx, "alice", in)

	data, err := svc.CategorizeUncategorized(ctx, "alice")
	if err != nil {
		t.Fatalf("CategorizeUncategorized: %v", err)
	}
	if calls != 3 {
		t.Errorf("gateway calls = %d, want 3", calls)
	}

	byDesc := map[string]*models.ConflictEvent{}
	for i := range data.Events {
		byDesc[data.Events[i].Description] = &data.Events[i]
	}
	if !byDesc["first"].Categorized() || !byDesc["third"].Categorized() {
		t.Error("successful events not categorized")
	}
	if byDesc["second"].Categorized() {
		t.Error("failed event should keep its prior (uncategorized) state")
	}

	// Already-categorized events are skipped on the next run.
	calls = 0
	if _, err := svc.CategorizeUncategorized(ctx, "alice"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if calls != 1 {
		t.Errorf("second run gateway calls = %d, want 1 (only the failed event)", calls)
	}
}

func TestCategorizeUncategorizedAllFailed(t *testing.T) {
	gw := &fakeGateway{
		categorize: func(models.ConflictEvent) (models.Categorization, error) {
			return models.Categorization{}, errors.New("down")
		},
	}
	svc, _ := newTimelineFixture(gw)
	ctx := context.Background()

	_, _ = svc.AddEvent(ctx, "alice", validInput("5"))
	_, _ = svc.AddEvent(ctx, "alice", validInput("9"))

	_, err := svc.CategorizeUncategorized(ctx, "alice")
	var partial *apperrors.PartialGatewayFailure
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want PartialGatewayFailure", err)
	}
	if !partial.AllFailed() || partial.Total != 2 {
		t.Errorf("partial = %+v, want all 2 failed", partial)
	}
}

func TestMergeScannedTimeline(t *testing.T) {
	scanned := &models.TimelineData{
		InitialAnchor: &models.Anchor{Age: 7, Description: "scanned anchor"},
		Events:        []models.ConflictEvent{{ID: "s1", Age: 3}},
	}

	// Nil existing: scanned is authoritative.
	merged := MergeScannedTimeline(nil, scanned)
	if merged.InitialAnchor.Description != "scanned anchor" || len(merged.Events) != 1 {
		t.Fatalf("nil existing merge = %+v", merged)
	}

	// Existing anchor wins; scanned events are appended after existing ones.
	existing := &models.TimelineData{
		InitialAnchor: &models.Anchor{Age: 18, Description: "kept anchor"},
		Events:        []models.ConflictEvent{{ID: "e1", Age: 10}},
	}
	merged = MergeScannedTimeline(existing, scanned)
	if merged.InitialAnchor.Description != "kept anchor" {
		t.Errorf("anchor = %+v, want the existing one", merged.InitialAnchor)
	}
	if len(merged.Events) != 2 || merged.Events[0].ID != "e1" || merged.Events[1].ID != "s1" {
		t.Errorf("events = %+v, want existing then scanned", merged.Events)
	}
}

func TestMergeScannedTimelineDropsRepeatedEvents(t *testing.T) {
	existing := &models.TimelineData{
		InitialAnchor: &models.Anchor{Age: 18, Description: "kept anchor"},
		Events: []models.ConflictEvent{
			{ID: "e1", Age: 12, Description: "moved away"},
			{ID: "e2", Age: 25, Description: "job loss"},
		},
	}
	scanned := &models.TimelineData{
		Events: []models.ConflictEvent{
			// Same id, same content without an id, genuinely new.
			{ID: "e1", Age: 12, Description: "moved away"},
			{Age: 25, Description: "  JOB LOSS "},
			{Age: 30, Description: "divorce"},
		},
	}

	merged := MergeScannedTimeline(existing, scanned)
	if len(merged.Events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(merged.Events), merged.Events)
	}
	if merged.Events[2].Description != "divorce" {
		t.Errorf("appended event = %+v, want the new one", merged.Events[2])
	}
}

func TestScanDocumentDoesNotDuplicateExistingEvents(t *testing.T) {
	// A model told to return only new events may echo the provided data
	// back anyway; the saved timeline must still hold each event once.
	gw := &fakeGateway{
		scan: func(parts []gateway.Part, existing *models.TimelineData) (*models.TimelineData, error) {
			out := &models.TimelineData{InitialAnchor: existing.InitialAnchor}
			for _, ev := range existing.Events {
				ev.ID = ""
				out.Events = append(out.Events, ev)
			}
			out.Events = append(out.Events,
				models.ConflictEvent{Age: 30, Description: "divorce"},
				models.ConflictEvent{Age: 31, Description: "lawsuit"},
			)
			return out, nil
		},
	}
	svc, _ := newTimelineFixture(gw)
	ctx := context.Background()

	if _, err := svc.AddEvent(ctx, "alice", validInput("12")); err != nil {
		t.Fatal(err)
	}

	merged, err := svc.ScanDocument(ctx, "alice", []gateway.Part{{Text: "page"}})
	if err != nil {
		t.Fatalf("ScanDocument: %v", err)
	}

	var old int
	for _, ev := range merged.Events {
		if ev.Description == "moved away" {
			old++
		}
	}
	if old != 1 {
		t.Errorf("existing event appears %d times after scan, want exactly once", old)
	}
	if len(merged.Events) != 3 {
		t.Errorf("got %d events, want 3: %+v", len(merged.Events), merged.Events)
	}

	// Fresh ids for scanned events, and distinct even within one request.
	seen := map[string]bool{}
	for _, ev := range merged.Events {
		if ev.ID == "" {
			t.Errorf("event %q saved without an id", ev.Description)
		}
		if seen[ev.ID] {
			t.Errorf("duplicate event id %q", ev.ID)
		}
		seen[ev.ID] = true
	}

	stored, err := svc.Get(ctx, "alice")
	if err != nil || len(stored.Events) != 3 {
		t.Errorf("stored timeline = %+v, %v", stored, err)
	}
}
