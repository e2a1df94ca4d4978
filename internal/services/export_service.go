package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"biocode/internal/apperrors"
	"biocode/internal/models"
	"biocode/internal/store"

	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ExportService moves a user's complete state in and out of the app: the
// JSON backup bundle, and report renderings for sharing (XLSX, HTML).
type ExportService struct {
	store     store.Store
	timeline  *TimelineService
	analysis  *AnalysisService
	report    *ReportService
	mentor    *MentorService
	awareness *AwarenessService
}

// NewExportService creates an export service
func NewExportService(st store.Store, tl *TimelineService, an *AnalysisService, rs *ReportService, ms *MentorService, as *AwarenessService) *ExportService {
	return &ExportService{store: st, timeline: tl, analysis: an, report: rs, mentor: ms, awareness: as}
}

// Export assembles the backup bundle from everything stored for the user.
// Absent pieces are exported as null/empty rather than erroring.
func (s *ExportService) Export(ctx context.Context, username string) (*models.ExportBundle, error) {
	bundle := &models.ExportBundle{}

	data, err := s.timeline.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if data.InitialAnchor != nil || len(data.Events) > 0 {
		bundle.TimelineData = data
	}

	bundle.AIAnalysis, _ = s.timeline.Analysis(ctx, username)
	if report, err := s.report.Get(ctx, username); err == nil {
		bundle.ReportData = report
	}
	if conv, err := s.analysis.Conversation(ctx, username); err == nil && len(conv) > 0 {
		bundle.Conversation = conv
	}
	if hist, err := s.mentor.History(ctx, username); err == nil && len(hist) > 0 {
		bundle.MentorConversation = hist
	}
	if aw, err := s.awareness.Get(ctx, username); err == nil {
		bundle.SelfAwareness = aw
	}

	log.Printf("📤 Export bundle built for %s", username)
	return bundle, nil
}

// importProbe checks bundle shape before committing anything.
type importProbe struct {
	TimelineData *struct {
		InitialAnchor *models.Anchor  `json:"initialAnchor"`
		Events        json.RawMessage `json:"events"`
	} `json:"timelineData"`
}

// Import validates and applies a backup bundle. The whole bundle is
// rejected before anything is written, so a failed import never leaves a
// user half-restored.
func (s *ExportService) Import(ctx context.Context, username string, raw []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("%PDF-")) {
		return apperrors.Validationf("this is a PDF document, not a BioCode backup; use the timeline scan to import documents")
	}

	var probe importProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return apperrors.Validationf("not a valid BioCode backup file: %v", err)
	}
	if probe.TimelineData == nil || probe.TimelineData.InitialAnchor == nil {
		return apperrors.Validationf("backup file is missing timelineData.initialAnchor")
	}
	events := bytes.TrimSpace(probe.TimelineData.Events)
	if len(events) == 0 || events[0] != '[' {
		return apperrors.Validationf("backup file is missing the timelineData.events array")
	}

	var bundle models.ExportBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return apperrors.Validationf("not a valid BioCode backup file: %v", err)
	}

	if err := s.timeline.Replace(ctx, username, bundle.TimelineData); err != nil {
		return err
	}
	// Replace clears derived snapshots; restore the imported ones on top.
	if bundle.AIAnalysis != nil {
		if err := store.SetJSON(ctx, s.store, username, store.KeyAnalysis, bundle.AIAnalysis); err != nil {
			return err
		}
	}
	if bundle.ReportData != nil {
		if err := store.SetJSON(ctx, s.store, username, store.KeyReport, bundle.ReportData); err != nil {
			return err
		}
	}
	if len(bundle.Conversation) > 0 {
		if err := store.SetJSON(ctx, s.store, username, store.KeyConversation, bundle.Conversation); err != nil {
			return err
		}
	}
	if len(bundle.MentorConversation) > 0 {
		if err := store.SetJSON(ctx, s.store, username, store.KeyMentorConversation, bundle.MentorConversation); err != nil {
			return err
		}
	}
	if bundle.SelfAwareness != nil {
		if err := s.awareness.Replace(ctx, username, bundle.SelfAwareness); err != nil {
			return err
		}
	}

	log.Printf("📥 Backup imported for %s (%d events)", username, len(bundle.TimelineData.Events))
	return nil
}

// ReportXLSX renders the committed report as a spreadsheet, one sheet per
// populated section. Empty sections are skipped.
func (s *ExportService) ReportXLSX(ctx context.Context, username string) ([]byte, error) {
	report, err := s.report.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Report"
	f.SetSheetName(f.GetSheetName(0), sheet)
	row := 1
	writeRow := func(cells ...any) {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetSheetRow(sheet, cell, &cells)
		row++
	}
	writeSection := func(title string) {
		if row > 1 {
			row++
		}
		writeRow(title)
	}

	if report.CaseSummary.CaseDetails != "" || report.CaseSummary.Symptoms != "" {
		writeSection("Case Summary")
		writeRow("Case Details", report.CaseSummary.CaseDetails)
		writeRow("Symptoms", report.CaseSummary.Symptoms)
	}

	if len(report.TimelineAnalysis) > 0 {
		writeSection("Timeline Analysis")
		writeRow("Age / Event", "Phase", "Conflict Type", "Biological Purpose", "Track Identified")
		for _, e := range report.TimelineAnalysis {
			writeRow(e.AgeEvent, e.Phase, e.ConflictType, e.BiologicalPurpose, e.TrackIdentified)
		}
	}

	writeList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		writeSection(title)
		for _, item := range items {
			writeRow(item)
		}
	}
	writeList("Primary Conflicts", report.ConflictMapping.PrimaryConflicts)
	writeList("Secondary Conflicts", report.ConflictMapping.SecondaryConflicts)

	if len(report.AdvancedTriggerReasoning) > 0 {
		writeSection("Advanced Trigger Reasoning")
		writeRow("Symptom", "Biological Purpose", "Triggers")
		for _, t := range report.AdvancedTriggerReasoning {
			writeRow(t.Symptom, t.BiologicalPurpose, t.Triggers)
		}
	}

	if report.SpiritualComponent.Denial != "" || report.SpiritualComponent.Affirmation != "" {
		writeSection("Spiritual Component")
		writeRow("Denial", report.SpiritualComponent.Denial)
		writeRow("Affirmation", report.SpiritualComponent.Affirmation)
	}

	writeList("GNM Commands", report.ActionProtocol.GNMCommands)
	writeList("Track Neutralization", report.ActionProtocol.TrackNeutralization)
	writeList("Nutritional Support", report.ActionProtocol.NutritionalSupport)
	writeList("Expected Healing Phase", report.ExpectedHealingPhase)

	if report.FinalAnchor != "" {
		writeSection("Final Anchor")
		writeRow(report.FinalAnchor)
	}
	if report.NextSteps != "" {
		writeSection("Next Steps")
		writeRow(report.NextSteps)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportHTML renders the committed report as a self-contained HTML page.
// Free-text fields are treated as markdown. Empty sections are skipped.
func (s *ExportService) ReportHTML(ctx context.Context, username string) ([]byte, error) {
	report, err := s.report.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	var md strings.Builder
	md.WriteString("# BioCode Report\n\n")

	section := func(title string) { fmt.Fprintf(&md, "## %s\n\n", title) }

	if report.CaseSummary.CaseDetails != "" || report.CaseSummary.Symptoms != "" {
		section("Case Summary")
		if report.CaseSummary.CaseDetails != "" {
			md.WriteString(report.CaseSummary.CaseDetails + "\n\n")
		}
		if report.CaseSummary.Symptoms != "" {
			md.WriteString("**Symptoms:** " + report.CaseSummary.Symptoms + "\n\n")
		}
	}

	if len(report.TimelineAnalysis) > 0 {
		section("Timeline Analysis")
		md.WriteString("| Age / Event | Phase | Conflict Type | Biological Purpose | Track Identified |\n")
		md.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, e := range report.TimelineAnalysis {
			fmt.Fprintf(&md, "| %s | %s | %s | %s | %s |\n",
				e.AgeEvent, e.Phase, e.ConflictType, e.BiologicalPurpose, e.TrackIdentified)
		}
		md.WriteString("\n")
	}

	list := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		section(title)
		for _, item := range items {
			md.WriteString("- " + item + "\n")
		}
		md.WriteString("\n")
	}
	list("Primary Conflicts", report.ConflictMapping.PrimaryConflicts)
	list("Secondary Conflicts", report.ConflictMapping.SecondaryConflicts)

	if len(report.AdvancedTriggerReasoning) > 0 {
		section("Advanced Trigger Reasoning")
		for _, t := range report.AdvancedTriggerReasoning {
			fmt.Fprintf(&md, "- **%s**: %s (triggers: %s)\n", t.Symptom, t.BiologicalPurpose, t.Triggers)
		}
		md.WriteString("\n")
	}

	if report.SpiritualComponent.Denial != "" || report.SpiritualComponent.Affirmation != "" {
		section("Spiritual Component")
		if report.SpiritualComponent.Denial != "" {
			md.WriteString("**Denial:** " + report.SpiritualComponent.Denial + "\n\n")
		}
		if report.SpiritualComponent.Affirmation != "" {
			md.WriteString("**Affirmation:** " + report.SpiritualComponent.Affirmation + "\n\n")
		}
	}

	list("GNM Commands", report.ActionProtocol.GNMCommands)
	list("Track Neutralization", report.ActionProtocol.TrackNeutralization)
	list("Nutritional Support", report.ActionProtocol.NutritionalSupport)
	list("Expected Healing Phase", report.ExpectedHealingPhase)

	if report.FinalAnchor != "" {
		section("Final Anchor")
		md.WriteString(report.FinalAnchor + "\n\n")
	}
	if report.NextSteps != "" {
		section("Next Steps")
		md.WriteString(report.NextSteps + "\n\n")
	}

	renderer := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := renderer.Convert([]byte(md.String()), &body); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>BioCode Report</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("\n</body>\n</html>\n")
	return page.Bytes(), nil
}
