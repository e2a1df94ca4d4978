// Package gateway is the app's only surface to the generative-AI service.
// Every function takes plain domain values and returns plain domain values;
// callers treat failures as opaque GatewayError and never retry on their
// own. The concrete client speaks the OpenAI-compatible chat completions
// API with JSON-schema structured outputs.
package gateway

import (
	"context"

	"biocode/internal/models"
)

// Part is one piece of document content handed to the gateway: extracted
// text, or an image to be read visually.
type Part struct {
	MIMEType string // "text/plain" or an image MIME type
	Text     string // set for text parts
	Data     []byte // raw bytes for image parts
}

// TextPart wraps extracted document text.
func TextPart(text string) Part {
	return Part{MIMEType: "text/plain", Text: text}
}

// ImagePart wraps raw image bytes.
func ImagePart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// Gateway is the full AI contract. All calls may fail; implementations
// must respect the context deadline.
type Gateway interface {
	// CategorizeConflict returns the four AI-populated fields for one event.
	CategorizeConflict(ctx context.Context, event models.ConflictEvent) (models.Categorization, error)

	// AnalyzeTracks groups the full event set into thematic tracks.
	AnalyzeTracks(ctx context.Context, events []models.ConflictEvent, cycleLength int) ([]models.Track, error)

	// PredictFutureTriggers writes the free-text prediction over an analysis.
	PredictFutureTriggers(ctx context.Context, analysis *models.Analysis, events []models.ConflictEvent, cycleLength int) (string, error)

	// ScanTimeline reads scanned document parts and returns a structured
	// timeline. With non-nil existing data the instruction asks for only
	// events absent from it; the caller appends those and drops any the
	// model repeats anyway.
	ScanTimeline(ctx context.Context, parts []Part, existing *models.TimelineData) (*models.TimelineData, error)

	// GenerateReport builds the full report from a timeline + analysis
	// snapshot.
	GenerateReport(ctx context.Context, data *models.TimelineData, analysis *models.Analysis) (*models.ReportData, error)

	// DynamicInsight answers one diagnostician question over the timeline.
	DynamicInsight(ctx context.Context, data *models.TimelineData, analysis *models.Analysis, query string) (string, error)

	// MentorReply answers the latest turn of the mentor conversation.
	MentorReply(ctx context.Context, req MentorRequest) (string, error)

	// SummarizeConversation condenses a long chat history.
	SummarizeConversation(ctx context.Context, history []models.ChatMessage, mentorName string) (string, error)

	// GenerateSpeech renders text as encoded audio in the personality's
	// voice.
	GenerateSpeech(ctx context.Context, text, personality string) ([]byte, error)

	// ResetScript writes a guided reset script for one notebook symptom.
	ResetScript(ctx context.Context, entry models.SymptomEntry, data *models.TimelineData, analysis *models.Analysis) (string, error)

	// ThoughtReframing writes a reframing exercise for one symptom.
	ThoughtReframing(ctx context.Context, entry models.SymptomEntry, data *models.TimelineData, analysis *models.Analysis) (string, error)

	// AwarenessProtocol generates the self-awareness protocol document.
	AwarenessProtocol(ctx context.Context, data *models.TimelineData, analysis *models.Analysis, report *models.ReportData) (*models.SelfAwarenessProtocol, error)

	// NotebookInsight summarizes symptom progress for the dashboard.
	NotebookInsight(ctx context.Context, entries []models.SymptomEntry) (string, error)
}

// MentorRequest bundles everything a mentor turn depends on.
type MentorRequest struct {
	Report          *models.ReportData
	History         []models.ChatMessage
	Config          models.MentorConfig
	SystemPrompt    string // personality preset prompt
	ActiveProtocol  string
	ActiveTreatment string
	Awareness       *models.SelfAwarenessProtocol
}
