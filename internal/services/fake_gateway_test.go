package services

import (
	"context"
	"errors"

	"biocode/internal/gateway"
	"biocode/internal/models"
)

// fakeGateway lets each test stub exactly the calls it expects; anything
// unstubbed fails loudly.
type fakeGateway struct {
	categorize    func(event models.ConflictEvent) (models.Categorization, error)
	analyzeTracks func(events []models.ConflictEvent) ([]models.Track, error)
	predict       func() (string, error)
	scan          func(parts []gateway.Part, existing *models.TimelineData) (*models.TimelineData, error)
	report        func() (*models.ReportData, error)
	insight       func(query string) (string, error)
	mentor        func(req gateway.MentorRequest) (string, error)
	summarize     func(history []models.ChatMessage) (string, error)
	speech        func(text, personality string) ([]byte, error)
}

var errUnstubbed = errors.New("gateway call not stubbed")

func (f *fakeGateway) CategorizeConflict(_ context.Context, event models.ConflictEvent) (models.Categorization, error) {
	if f.categorize == nil {
		return models.Categorization{}, errUnstubbed
	}
	return f.categorize(event)
}

func (f *fakeGateway) AnalyzeTracks(_ context.Context, events []models.ConflictEvent, _ int) ([]models.Track, error) {
	if f.analyzeTracks == nil {
		return nil, errUnstubbed
	}
	return f.analyzeTracks(events)
}

func (f *fakeGateway) PredictFutureTriggers(_ context.Context, _ *models.Analysis, _ []models.ConflictEvent, _ int) (string, error) {
	if f.predict == nil {
		return "", errUnstubbed
	}
	return f.predict()
}

func (f *fakeGateway) ScanTimeline(_ context.Context, parts []gateway.Part, existing *models.TimelineData) (*models.TimelineData, error) {
	if f.scan == nil {
		return nil, errUnstubbed
	}
	return f.scan(parts, existing)
}

func (f *fakeGateway) GenerateReport(_ context.Context, _ *models.TimelineData, _ *models.Analysis) (*models.ReportData, error) {
	if f.report == nil {
		return nil, errUnstubbed
	}
	return f.report()
}

func (f *fakeGateway) DynamicInsight(_ context.Context, _ *models.TimelineData, _ *models.Analysis, query string) (string, error) {
	if f.insight == nil {
		return "", errUnstubbed
	}
	return f.insight(query)
}

func (f *fakeGateway) MentorReply(_ context.Context, req gateway.MentorRequest) (string, error) {
	if f.mentor == nil {
		return "", errUnstubbed
	}
	return f.mentor(req)
}

func (f *fakeGateway) SummarizeConversation(_ context.Context, history []models.ChatMessage, _ string) (string, error) {
	if f.summarize == nil {
		return "", errUnstubbed
	}
	return f.summarize(history)
}

func (f *fakeGateway) GenerateSpeech(_ context.Context, text, personality string) ([]byte, error) {
	if f.speech == nil {
		return nil, errUnstubbed
	}
	return f.speech(text, personality)
}

func (f *fakeGateway) ResetScript(_ context.Context, _ models.SymptomEntry, _ *models.TimelineData, _ *models.Analysis) (string, error) {
	return "", errUnstubbed
}

func (f *fakeGateway) ThoughtReframing(_ context.Context, _ models.SymptomEntry, _ *models.TimelineData, _ *models.Analysis) (string, error) {
	return "", errUnstubbed
}

func (f *fakeGateway) AwarenessProtocol(_ context.Context, _ *models.TimelineData, _ *models.Analysis, _ *models.ReportData) (*models.SelfAwarenessProtocol, error) {
	return nil, errUnstubbed
}

func (f *fakeGateway) NotebookInsight(_ context.Context, _ []models.SymptomEntry) (string, error) {
	return "", errUnstubbed
}
