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

// AwarenessService generates and stores the self-awareness protocol, a
// one-shot document built from the full timeline + analysis + report
// snapshot. The mentor reads it as context when it exists.
type AwarenessService struct {
	store    store.Store
	gateway  gateway.Gateway
	timeline *TimelineService
	report   *ReportService
}

// NewAwarenessService creates an awareness service
func NewAwarenessService(st store.Store, gw gateway.Gateway, tl *TimelineService, rs *ReportService) *AwarenessService {
	return &AwarenessService{store: st, gateway: gw, timeline: tl, report: rs}
}

// Get returns the stored protocol, or NotFound when none exists.
func (s *AwarenessService) Get(ctx context.Context, username string) (*models.SelfAwarenessProtocol, error) {
	var protocol models.SelfAwarenessProtocol
	err := store.GetJSON(ctx, s.store, username, store.KeyAwareness, &protocol)
	if errors.Is(err, store.ErrNoDocument) || errors.Is(err, apperrors.ErrStorage) {
		return nil, apperrors.NotFoundf("self-awareness protocol for %s", username)
	}
	if err != nil {
		return nil, err
	}
	return &protocol, nil
}

// Generate builds the protocol and stores it, replacing any prior one.
// Requires a finished analysis and report.
func (s *AwarenessService) Generate(ctx context.Context, username string) (*models.SelfAwarenessProtocol, error) {
	analysis, err := s.timeline.Analysis(ctx, username)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, apperrors.Validationf("run the analysis before generating the self-awareness protocol")
	}
	report, err := s.report.Get(ctx, username)
	if err != nil {
		return nil, apperrors.Validationf("generate the report before the self-awareness protocol")
	}

	data, err := s.timeline.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	protocol, err := s.gateway.AwarenessProtocol(ctx, data, analysis, report)
	if err != nil {
		return nil, err
	}

	if err := store.SetJSON(ctx, s.store, username, store.KeyAwareness, protocol); err != nil {
		return nil, err
	}
	log.Printf("🧭 Self-awareness protocol generated for %s", username)
	return protocol, nil
}

// Replace stores an imported protocol wholesale.
func (s *AwarenessService) Replace(ctx context.Context, username string, protocol *models.SelfAwarenessProtocol) error {
	return store.SetJSON(ctx, s.store, username, store.KeyAwareness, protocol)
}
