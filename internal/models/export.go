package models

// ExportBundle is the single JSON document a user downloads as a backup and
// re-imports later. Conversation is the diagnostician chat.
type ExportBundle struct {
	TimelineData       *TimelineData          `json:"timelineData"`
	AIAnalysis         *Analysis              `json:"aiAnalysis"`
	ReportData         *ReportData            `json:"reportData"`
	Conversation       []ChatMessage          `json:"conversation"`
	MentorConversation []ChatMessage          `json:"mentorConversation"`
	SelfAwareness      *SelfAwarenessProtocol `json:"selfAwarenessProtocol,omitempty"`
}
