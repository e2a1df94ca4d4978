package services

import (
	"context"
	"errors"
	"log"

	"biocode/internal/apperrors"
	"biocode/internal/gateway"
	"biocode/internal/models"
	"biocode/internal/store"
)

// AnalysisService produces and stores the AI track analysis and runs the
// diagnostician chat over it.
type AnalysisService struct {
	store    store.Store
	gateway  gateway.Gateway
	timeline *TimelineService
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(st store.Store, gw gateway.Gateway, tl *TimelineService) *AnalysisService {
	return &AnalysisService{store: st, gateway: gw, timeline: tl}
}

// Analyze runs the full pipeline: categorize whatever is still
// uncategorized, group events into tracks, then write the future
// prediction over the finished track set. The result replaces any stored
// analysis wholesale.
func (s *AnalysisService) Analyze(ctx context.Context, username string) (*models.Analysis, error) {
	current, err := s.timeline.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	// Tracks are recurring patterns across events; one event has none.
	if len(current.Events) < 2 {
		return nil, apperrors.Validationf("at least two timeline events are needed for analysis")
	}

	data, err := s.timeline.CategorizeUncategorized(ctx, username)
	if err != nil {
		var partial *apperrors.PartialGatewayFailure
		if !errors.As(err, &partial) {
			return nil, err
		}
		// Every categorization failed; the track analysis would have
		// nothing to work with.
		return nil, apperrors.Gatewayf("categorization failed for all %d events", partial.Total)
	}
	cycleLength := data.CycleLength()

	tracks, err := s.gateway.AnalyzeTracks(ctx, data.Events, cycleLength)
	if err != nil {
		return nil, err
	}

	analysis := &models.Analysis{Tracks: tracks}

	prediction, err := s.gateway.PredictFutureTriggers(ctx, analysis, data.Events, cycleLength)
	if err != nil {
		// Tracks alone are still useful; the prediction stays empty.
		log.Printf("⚠️  Future prediction failed for %s: %v", username, err)
	} else {
		analysis.FuturePrediction = prediction
	}

	if err := store.SetJSON(ctx, s.store, username, store.KeyAnalysis, analysis); err != nil {
		return nil, err
	}
	log.Printf("🔍 Analysis stored for %s (%d tracks)", username, len(analysis.Tracks))
	return analysis, nil
}

// Get returns the stored analysis, or NotFound when none exists.
func (s *AnalysisService) Get(ctx context.Context, username string) (*models.Analysis, error) {
	analysis, err := s.timeline.Analysis(ctx, username)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, apperrors.NotFoundf("analysis for %s", username)
	}
	return analysis, nil
}

// Conversation returns the diagnostician chat history.
func (s *AnalysisService) Conversation(ctx context.Context, username string) ([]models.ChatMessage, error) {
	var history []models.ChatMessage
	err := store.GetJSON(ctx, s.store, username, store.KeyConversation, &history)
	if errors.Is(err, store.ErrNoDocument) || errors.Is(err, apperrors.ErrStorage) {
		return []models.ChatMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	return history, nil
}

// Ask runs one diagnostician turn: the query plus the current timeline and
// analysis go to the gateway, and both sides of the exchange are appended
// to the stored conversation.
func (s *AnalysisService) Ask(ctx context.Context, username, query string) (string, error) {
	analysis, err := s.timeline.Analysis(ctx, username)
	if err != nil {
		return "", err
	}
	if analysis == nil {
		return "", apperrors.Validationf("run the analysis before asking the diagnostician")
	}

	data, err := s.timeline.Get(ctx, username)
	if err != nil {
		return "", err
	}

	answer, err := s.gateway.DynamicInsight(ctx, data, analysis, query)
	if err != nil {
		return "", err
	}

	history, err := s.Conversation(ctx, username)
	if err != nil {
		return "", err
	}
	history = append(history,
		models.ChatMessage{Role: models.RoleUser, Content: query},
		models.ChatMessage{Role: models.RoleModel, Content: answer},
	)
	if err := store.SetJSON(ctx, s.store, username, store.KeyConversation, history); err != nil {
		return "", err
	}
	return answer, nil
}
