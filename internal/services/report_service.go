package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"biocode/internal/apperrors"
	"biocode/internal/gateway"
	"biocode/internal/models"
	"biocode/internal/store"
)

// ReportService generates the report and runs draft editing over it. A
// draft is a deep copy of the committed report held in memory until the
// user saves or cancels; edits never touch the stored document directly.
type ReportService struct {
	store    store.Store
	gateway  gateway.Gateway
	timeline *TimelineService

	mu     sync.Mutex
	drafts map[string]*models.ReportData
}

// NewReportService creates a report service
func NewReportService(st store.Store, gw gateway.Gateway, tl *TimelineService) *ReportService {
	return &ReportService{
		store:    st,
		gateway:  gw,
		timeline: tl,
		drafts:   make(map[string]*models.ReportData),
	}
}

// Generate builds the report from the current timeline + analysis snapshot
// and stores it. Any in-flight draft is discarded.
func (s *ReportService) Generate(ctx context.Context, username string) (*models.ReportData, error) {
	analysis, err := s.timeline.Analysis(ctx, username)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, apperrors.Validationf("run the analysis before generating a report")
	}

	data, err := s.timeline.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	report, err := s.gateway.GenerateReport(ctx, data, analysis)
	if err != nil {
		return nil, err
	}

	if err := store.SetJSON(ctx, s.store, username, store.KeyReport, report); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.drafts, username)
	s.mu.Unlock()

	log.Printf("📋 Report generated for %s", username)
	return report, nil
}

// Get returns the committed report, or NotFound when none exists.
func (s *ReportService) Get(ctx context.Context, username string) (*models.ReportData, error) {
	var report models.ReportData
	err := store.GetJSON(ctx, s.store, username, store.KeyReport, &report)
	if errors.Is(err, store.ErrNoDocument) || errors.Is(err, apperrors.ErrStorage) {
		return nil, apperrors.NotFoundf("report for %s", username)
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// BeginEdit snapshots the committed report into a draft. Calling it again
// restarts the draft from the committed state.
func (s *ReportService) BeginEdit(ctx context.Context, username string) (*models.ReportData, error) {
	report, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	draft, err := deepCopyReport(report)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.drafts[username] = draft
	s.mu.Unlock()
	return draft, nil
}

// Draft returns the user's current draft.
func (s *ReportService) Draft(username string) (*models.ReportData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[username]
	if !ok {
		return nil, apperrors.Validationf("no report edit in progress")
	}
	return draft, nil
}

// Save commits the draft as the new stored report and ends editing.
func (s *ReportService) Save(ctx context.Context, username string) (*models.ReportData, error) {
	draft, err := s.Draft(username)
	if err != nil {
		return nil, err
	}
	if err := store.SetJSON(ctx, s.store, username, store.KeyReport, draft); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.drafts, username)
	s.mu.Unlock()

	log.Printf("💾 Report edits saved for %s", username)
	return draft, nil
}

// Cancel discards the draft; the committed report is untouched.
func (s *ReportService) Cancel(username string) {
	s.mu.Lock()
	delete(s.drafts, username)
	s.mu.Unlock()
}

// EditField sets one of the report's scalar text fields on the draft.
func (s *ReportService) EditField(username, field, value string) error {
	draft, err := s.Draft(username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch field {
	case "caseSummary.caseDetails":
		draft.CaseSummary.CaseDetails = value
	case "caseSummary.symptoms":
		draft.CaseSummary.Symptoms = value
	case "spiritualComponent.denial":
		draft.SpiritualComponent.Denial = value
	case "spiritualComponent.affirmation":
		draft.SpiritualComponent.Affirmation = value
	case "finalAnchor":
		draft.FinalAnchor = value
	case "nextSteps":
		draft.NextSteps = value
	default:
		return apperrors.Validationf("unknown report field %q", field)
	}
	return nil
}

// listFor resolves a named list section to its backing slice on the draft.
func listFor(draft *models.ReportData, section string) (*[]string, error) {
	switch section {
	case "primaryConflicts":
		return &draft.ConflictMapping.PrimaryConflicts, nil
	case "secondaryConflicts":
		return &draft.ConflictMapping.SecondaryConflicts, nil
	case "gnmCommands":
		return &draft.ActionProtocol.GNMCommands, nil
	case "trackNeutralization":
		return &draft.ActionProtocol.TrackNeutralization, nil
	case "nutritionalSupport":
		return &draft.ActionProtocol.NutritionalSupport, nil
	case "expectedHealingPhase":
		return &draft.ExpectedHealingPhase, nil
	default:
		return nil, apperrors.Validationf("unknown report list %q", section)
	}
}

// AddListItem appends an item to one of the report's list sections.
func (s *ReportService) AddListItem(username, section, value string) error {
	draft, err := s.Draft(username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := listFor(draft, section)
	if err != nil {
		return err
	}
	*list = append(*list, value)
	return nil
}

// EditListItem replaces one item of a list section.
func (s *ReportService) EditListItem(username, section string, index int, value string) error {
	draft, err := s.Draft(username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := listFor(draft, section)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*list) {
		return apperrors.Validationf("list index %d out of range", index)
	}
	(*list)[index] = value
	return nil
}

// DeleteListItem removes one item of a list section.
func (s *ReportService) DeleteListItem(username, section string, index int) error {
	draft, err := s.Draft(username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := listFor(draft, section)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(*list) {
		return apperrors.Validationf("list index %d out of range", index)
	}
	*list = append((*list)[:index], (*list)[index+1:]...)
	return nil
}

// AddTimelineRow appends an empty row to the timeline analysis table.
func (s *ReportService) AddTimelineRow(username string) error {
	draft, err := s.Draft(username)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	draft.TimelineAnalysis = append(draft.TimelineAnalysis, models.TimelineAnalysisEntry{})
	return nil
}

// EditTimelineCell sets one cell of the timeline analysis table.
func (s *ReportService) EditTimelineCell(username string, row int, column, value string) error {
	draft, err := s.Draft(username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= len(draft.TimelineAnalysis) {
		return apperrors.Validationf("table row %d out of range", row)
	}
	entry := &draft.TimelineAnalysis[row]
	switch column {
	case "ageEvent":
		entry.AgeEvent = value
	case "phase":
		entry.Phase = value
	case "conflictType":
		entry.ConflictType = value
	case "biologicalPurpose":
		entry.BiologicalPurpose = value
	case "trackIdentified":
		entry.TrackIdentified = value
	default:
		return apperrors.Validationf("unknown table column %q", column)
	}
	return nil
}

// DeleteTimelineRow removes one row of the timeline analysis table.
func (s *ReportService) DeleteTimelineRow(username string, row int) error {
	draft, err := s.Draft(username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= len(draft.TimelineAnalysis) {
		return apperrors.Validationf("table row %d out of range", row)
	}
	draft.TimelineAnalysis = append(draft.TimelineAnalysis[:row], draft.TimelineAnalysis[row+1:]...)
	return nil
}

// AddTriggerRow appends an empty row to the advanced trigger table.
func (s *ReportService) AddTriggerRow(username string) error {
	draft, err := s.Draft(username)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	draft.AdvancedTriggerReasoning = append(draft.AdvancedTriggerReasoning, models.AdvancedTrigger{})
	return nil
}

// EditTriggerCell sets one cell of the advanced trigger table.
func (s *ReportService) EditTriggerCell(username string, row int, column, value string) error {
	draft, err := s.Draft(username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= len(draft.AdvancedTriggerReasoning) {
		return apperrors.Validationf("table row %d out of range", row)
	}
	entry := &draft.AdvancedTriggerReasoning[row]
	switch column {
	case "symptom":
		entry.Symptom = value
	case "biologicalPurpose":
		entry.BiologicalPurpose = value
	case "triggers":
		entry.Triggers = value
	default:
		return apperrors.Validationf("unknown table column %q", column)
	}
	return nil
}

// DeleteTriggerRow removes one row of the advanced trigger table.
func (s *ReportService) DeleteTriggerRow(username string, row int) error {
	draft, err := s.Draft(username)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= len(draft.AdvancedTriggerReasoning) {
		return apperrors.Validationf("table row %d out of range", row)
	}
	draft.AdvancedTriggerReasoning = append(draft.AdvancedTriggerReasoning[:row], draft.AdvancedTriggerReasoning[row+1:]...)
	return nil
}

// deepCopyReport clones a report through a JSON round trip so draft edits
// can never alias the committed document.
func deepCopyReport(report *models.ReportData) (*models.ReportData, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("copy report: %w", err)
	}
	var out models.ReportData
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("copy report: %w", err)
	}
	return &out, nil
}
