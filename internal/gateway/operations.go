package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"biocode/internal/models"
)

// CategorizeConflict implements Gateway.
func (c *Client) CategorizeConflict(ctx context.Context, event models.ConflictEvent) (models.Categorization, error) {
	prompt := fmt.Sprintf(
		"Event at age %d (%s): %s\nPeople involved: %s\nFeelings: %s\nBody location: %s",
		event.Age, event.Date, event.Description, event.Characters, event.Feelings, event.BodyLocation,
	)

	var cat models.Categorization
	err := c.completeJSON(ctx, systemUser(categorizeSystemPrompt, prompt), "conflict_categorization", categorizationSchema, &cat)
	if err != nil {
		return models.Categorization{}, err
	}
	return cat, nil
}

// AnalyzeTracks implements Gateway.
func (c *Client) AnalyzeTracks(ctx context.Context, events []models.ConflictEvent, cycleLength int) ([]models.Track, error) {
	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("failed to encode events: %w", err)
	}
	prompt := fmt.Sprintf("Cycle length: %d years.\nConflict events:\n%s", cycleLength, eventsJSON)

	var out struct {
		Tracks []models.Track `json:"tracks"`
	}
	if err := c.completeJSON(ctx, systemUser(tracksSystemPrompt, prompt), "track_analysis", tracksSchema, &out); err != nil {
		return nil, err
	}
	log.Printf("🧭 [GATEWAY] Track analysis returned %d tracks over %d events", len(out.Tracks), len(events))
	return out.Tracks, nil
}

// PredictFutureTriggers implements Gateway.
func (c *Client) PredictFutureTriggers(ctx context.Context, analysis *models.Analysis, events []models.ConflictEvent, cycleLength int) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"tracks": analysis.Tracks,
		"events": events,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis: %w", err)
	}
	prompt := fmt.Sprintf("Cycle length: %d years.\n%s", cycleLength, payload)
	return c.complete(ctx, systemUser(predictSystemPrompt, prompt), "", nil)
}

// ScanTimeline implements Gateway.
func (c *Client) ScanTimeline(ctx context.Context, parts []Part, existing *models.TimelineData) (*models.TimelineData, error) {
	instruction := "Extract the conflict timeline from the attached document."
	if existing != nil {
		existingJSON, err := json.Marshal(existing)
		if err != nil {
			return nil, fmt.Errorf("failed to encode existing timeline: %w", err)
		}
		instruction = fmt.Sprintf(
			"Existing timeline data:\n%s\n\nExtract additional conflict events from the attached document and merge them in. Keep the existing anchor.",
			existingJSON,
		)
	}

	messages := []map[string]any{
		{"role": "system", "content": scanSystemPrompt},
		partsMessage(instruction, parts),
	}

	var scanned struct {
		InitialAnchor *models.Anchor `json:"initialAnchor"`
		Events        []struct {
			Age          int    `json:"age"`
			Date         string `json:"date"`
			Description  string `json:"description"`
			Characters   string `json:"characters"`
			Feelings     string `json:"feelings"`
			BodyLocation string `json:"bodyLocation"`
		} `json:"events"`
	}
	if err := c.completeJSON(ctx, messages, "scanned_timeline", scannedTimelineSchema, &scanned); err != nil {
		return nil, err
	}

	data := &models.TimelineData{InitialAnchor: scanned.InitialAnchor}
	for _, ev := range scanned.Events {
		data.Events = append(data.Events, models.ConflictEvent{
			Age:          ev.Age,
			Date:         ev.Date,
			Description:  ev.Description,
			Characters:   ev.Characters,
			Feelings:     ev.Feelings,
			BodyLocation: ev.BodyLocation,
		})
	}
	return data, nil
}

// GenerateReport implements Gateway.
func (c *Client) GenerateReport(ctx context.Context, data *models.TimelineData, analysis *models.Analysis) (*models.ReportData, error) {
	payload, err := json.Marshal(map[string]any{
		"timeline": data,
		"analysis": analysis,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	var report models.ReportData
	if err := c.completeJSON(ctx, systemUser(reportSystemPrompt, string(payload)), "full_report", reportSchema, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DynamicInsight implements Gateway.
func (c *Client) DynamicInsight(ctx context.Context, data *models.TimelineData, analysis *models.Analysis, query string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"timeline": data,
		"analysis": analysis,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	prompt := fmt.Sprintf("%s\n\nQuestion: %s", payload, query)
	return c.complete(ctx, systemUser(insightSystemPrompt, prompt), "", nil)
}

// MentorReply implements Gateway.
func (c *Client) MentorReply(ctx context.Context, req MentorRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString(req.SystemPrompt)
	sb.WriteString("\nYour name is ")
	sb.WriteString(req.Config.Name)
	sb.WriteString(".\n")

	if req.Report != nil {
		reportJSON, err := json.Marshal(req.Report)
		if err != nil {
			return "", fmt.Errorf("failed to encode report: %w", err)
		}
		sb.WriteString("\nThe person's full Biological Code Blueprint:\n")
		sb.Write(reportJSON)
		sb.WriteString("\n")
	}
	if req.Awareness != nil {
		awarenessJSON, err := json.Marshal(req.Awareness)
		if err != nil {
			return "", fmt.Errorf("failed to encode awareness protocol: %w", err)
		}
		sb.WriteString("\nTheir Self-Awareness Protocol:\n")
		sb.Write(awarenessJSON)
		sb.WriteString("\n")
	}

	sb.WriteString(`
When you begin walking the person through a named guided protocol, start your
reply with [PROTOCOL_START:Protocol_Name]; when it completes, include
[PROTOCOL_END]. Use [TREATMENT_START:Treatment_Name] and [TREATMENT_END] the
same way for treatments. Use underscores for spaces inside names.`)

	if req.ActiveProtocol != "" {
		fmt.Fprintf(&sb, "\nCurrently active guided protocol: %s.", req.ActiveProtocol)
	}
	if req.ActiveTreatment != "" {
		fmt.Fprintf(&sb, "\nCurrently active treatment: %s.", req.ActiveTreatment)
	}

	return c.complete(ctx, chatMessages(sb.String(), req.History), "", nil)
}

// SummarizeConversation implements Gateway.
func (c *Client) SummarizeConversation(ctx context.Context, history []models.ChatMessage, mentorName string) (string, error) {
	var sb strings.Builder
	for _, m := range history {
		name := "User"
		if m.Role == models.RoleModel {
			name = mentorName
		} else if m.Role == models.RoleSystem {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", name, m.Content)
	}
	return c.complete(ctx, systemUser(summarySystemPrompt, sb.String()), "", nil)
}

// ResetScript implements Gateway.
func (c *Client) ResetScript(ctx context.Context, entry models.SymptomEntry, data *models.TimelineData, analysis *models.Analysis) (string, error) {
	return c.symptomCompletion(ctx, resetScriptSystemPrompt, entry, data, analysis)
}

// ThoughtReframing implements Gateway.
func (c *Client) ThoughtReframing(ctx context.Context, entry models.SymptomEntry, data *models.TimelineData, analysis *models.Analysis) (string, error) {
	return c.symptomCompletion(ctx, reframeSystemPrompt, entry, data, analysis)
}

func (c *Client) symptomCompletion(ctx context.Context, system string, entry models.SymptomEntry, data *models.TimelineData, analysis *models.Analysis) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"symptom":  entry,
		"timeline": data,
		"analysis": analysis,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode symptom context: %w", err)
	}
	return c.complete(ctx, systemUser(system, string(payload)), "", nil)
}

// AwarenessProtocol implements Gateway.
func (c *Client) AwarenessProtocol(ctx context.Context, data *models.TimelineData, analysis *models.Analysis, report *models.ReportData) (*models.SelfAwarenessProtocol, error) {
	payload, err := json.Marshal(map[string]any{
		"timeline": data,
		"analysis": analysis,
		"report":   report,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	var protocol models.SelfAwarenessProtocol
	if err := c.completeJSON(ctx, systemUser(awarenessSystemPrompt, string(payload)), "self_awareness_protocol", awarenessSchema, &protocol); err != nil {
		return nil, err
	}
	return &protocol, nil
}

// NotebookInsight implements Gateway.
func (c *Client) NotebookInsight(ctx context.Context, entries []models.SymptomEntry) (string, error) {
	entriesJSON, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode entries: %w", err)
	}
	return c.complete(ctx, systemUser(notebookInsightSystemPrompt, string(entriesJSON)), "", nil)
}
