package services

import (
	"context"
	"errors"
	"testing"

	"biocode/internal/apperrors"
	"biocode/internal/models"
	"biocode/internal/store"
)

func TestAnalyzePipeline(t *testing.T) {
	gw := &fakeGateway{
		categorize: func(event models.ConflictEvent) (models.Categorization, error) {
			return models.Categorization{GNMExplanation: "because"}, nil
		},
		analyzeTracks: func(events []models.ConflictEvent) ([]models.Track, error) {
			return []models.Track{{Theme: "separation", RelatedEventIDs: []string{events[0].ID}}}, nil
		},
		predict: func() (string, error) {
			return "watch for spring moves", nil
		},
	}
	st := store.NewMemoryStore()
	tl := NewTimelineService(st, gw)
	svc := NewAnalysisService(st, gw, tl)
	ctx := context.Background()

	if _, err := tl.AddEvent(ctx, "alice", validInput("12")); err != nil {
		t.Fatal(err)
	}
	if _, err := tl.AddEvent(ctx, "alice", validInput("23")); err != nil {
		t.Fatal(err)
	}

	analysis, err := svc.Analyze(ctx, "alice")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analysis.Tracks) != 1 || analysis.Tracks[0].Theme != "separation" {
		t.Errorf("tracks = %+v", analysis.Tracks)
	}
	if analysis.FuturePrediction != "watch for spring moves" {
		t.Errorf("prediction = %q", analysis.FuturePrediction)
	}

	stored, err := svc.Get(ctx, "alice")
	if err != nil || len(stored.Tracks) != 1 {
		t.Errorf("stored analysis = %+v, %v", stored, err)
	}
}

func TestAnalyzeSurvivesPredictionFailure(t *testing.T) {
	gw := &fakeGateway{
		categorize: func(models.ConflictEvent) (models.Categorization, error) {
			return models.Categorization{GNMExplanation: "x"}, nil
		},
		analyzeTracks: func([]models.ConflictEvent) ([]models.Track, error) {
			return []models.Track{{Theme: "t"}}, nil
		},
		predict: func() (string, error) {
			return "", errors.New("timeout")
		},
	}
	st := store.NewMemoryStore()
	tl := NewTimelineService(st, gw)
	svc := NewAnalysisService(st, gw, tl)
	ctx := context.Background()

	_, _ = tl.AddEvent(ctx, "alice", validInput("3"))
	_, _ = tl.AddEvent(ctx, "alice", validInput("9"))

	analysis, err := svc.Analyze(ctx, "alice")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analysis.Tracks) != 1 || analysis.FuturePrediction != "" {
		t.Errorf("analysis = %+v, want tracks kept and empty prediction", analysis)
	}
}

func TestAnalyzeRequiresTwoEvents(t *testing.T) {
	st := store.NewMemoryStore()
	tl := NewTimelineService(st, &fakeGateway{})
	svc := NewAnalysisService(st, &fakeGateway{}, tl)
	ctx := context.Background()

	if _, err := svc.Analyze(ctx, "alice"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Analyze with no events err = %v, want validation", err)
	}

	// One event is not enough for track analysis; the gateway is never
	// called (the unstubbed fake would error otherwise).
	if _, err := tl.AddEvent(ctx, "alice", validInput("12")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Analyze(ctx, "alice"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Analyze with one event err = %v, want validation", err)
	}
}

func TestAskRequiresAnalysisAndStoresConversation(t *testing.T) {
	gw := &fakeGateway{
		insight: func(query string) (string, error) {
			return "answer to " + query, nil
		},
	}
	st := store.NewMemoryStore()
	tl := NewTimelineService(st, gw)
	svc := NewAnalysisService(st, gw, tl)
	ctx := context.Background()

	if _, err := svc.Ask(ctx, "alice", "why?"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("Ask without analysis err = %v", err)
	}

	if err := store.SetJSON(ctx, st, "alice", store.KeyAnalysis, &models.Analysis{}); err != nil {
		t.Fatal(err)
	}
	answer, err := svc.Ask(ctx, "alice", "why?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "answer to why?" {
		t.Errorf("answer = %q", answer)
	}

	history, err := svc.Conversation(ctx, "alice")
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	if len(history) != 2 || history[0].Role != models.RoleUser || history[1].Role != models.RoleModel {
		t.Errorf("history = %+v", history)
	}
}
