package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"biocode/internal/apperrors"
	"biocode/internal/config"
	"biocode/internal/models"
	"biocode/internal/store"
)

func newExportFixture(t *testing.T) (*ExportService, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	gw := &fakeGateway{}
	tl := NewTimelineService(st, gw)
	an := NewAnalysisService(st, gw, tl)
	rs := NewReportService(st, gw, tl)
	as := NewAwarenessService(st, gw, tl, rs)
	personalities, err := config.LoadPersonalities("testdata/does-not-exist.yaml")
	if err != nil {
		t.Fatalf("LoadPersonalities: %v", err)
	}
	ms := NewMentorService(st, gw, rs, as, personalities)
	return NewExportService(st, tl, an, rs, ms, as), st
}

func TestImportRejectsPDF(t *testing.T) {
	svc, _ := newExportFixture(t)

	err := svc.Import(context.Background(), "alice", []byte("%PDF-1.7 binary stuff"))
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	if !strings.Contains(err.Error(), "PDF") || !strings.Contains(err.Error(), "scan") {
		t.Errorf("PDF import error not actionable: %v", err)
	}
}

func TestImportValidatesShape(t *testing.T) {
	svc, _ := newExportFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		body string
	}{
		{"not json", "hello there"},
		{"missing timelineData", `{"reportData": {}}`},
		{"missing anchor", `{"timelineData": {"events": []}}`},
		{"events not an array", `{"timelineData": {"initialAnchor": {"age": 18}, "events": {}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Import(ctx, "alice", []byte(tc.body)); !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, st := newExportFixture(t)
	ctx := context.Background()

	bundle := models.ExportBundle{
		TimelineData: &models.TimelineData{
			InitialAnchor: &models.Anchor{Age: 18, Description: "born"},
			Events: []models.ConflictEvent{
				{ID: "e1", Age: 12, Description: "move", Categorization: models.Categorization{GNMExplanation: "x"}},
			},
		},
		AIAnalysis: &models.Analysis{
			Tracks:           []models.Track{{Theme: "separation", RelatedEventIDs: []string{"e1"}}},
			FuturePrediction: "watch spring",
		},
		ReportData:         &models.ReportData{NextSteps: "rest"},
		MentorConversation: []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	}
	raw, _ := json.Marshal(bundle)

	if err := svc.Import(ctx, "alice", raw); err != nil {
		t.Fatalf("Import: %v", err)
	}

	// The imported analysis survives even though replacing the timeline
	// normally clears derived state.
	var analysis models.Analysis
	if err := store.GetJSON(ctx, st, "alice", store.KeyAnalysis, &analysis); err != nil {
		t.Fatalf("analysis not restored: %v", err)
	}
	if analysis.FuturePrediction != "watch spring" {
		t.Errorf("analysis = %+v", analysis)
	}

	out, err := svc.Export(ctx, "alice")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out.TimelineData == nil || len(out.TimelineData.Events) != 1 {
		t.Fatalf("exported timeline = %+v", out.TimelineData)
	}
	if out.ReportData == nil || out.ReportData.NextSteps != "rest" {
		t.Errorf("exported report = %+v", out.ReportData)
	}
	if len(out.MentorConversation) != 1 {
		t.Errorf("exported mentor conversation = %+v", out.MentorConversation)
	}
}

func TestReportRenderingsSkipEmptySections(t *testing.T) {
	svc, st := newExportFixture(t)
	ctx := context.Background()

	report := &models.ReportData{
		CaseSummary: models.CaseSummary{CaseDetails: "only a summary"},
	}
	if err := store.SetJSON(ctx, st, "alice", store.KeyReport, report); err != nil {
		t.Fatal(err)
	}

	html, err := svc.ReportHTML(ctx, "alice")
	if err != nil {
		t.Fatalf("ReportHTML: %v", err)
	}
	page := string(html)
	if !strings.Contains(page, "only a summary") {
		t.Error("case summary missing from HTML")
	}
	for _, absent := range []string{"Next Steps", "Primary Conflicts", "Timeline Analysis"} {
		if strings.Contains(page, absent) {
			t.Errorf("empty section %q rendered", absent)
		}
	}

	if _, err := svc.ReportXLSX(ctx, "alice"); err != nil {
		t.Fatalf("ReportXLSX: %v", err)
	}
}
