package models

// Chat roles. "model" rather than "assistant" to stay compatible with
// histories exported by the original frontend.
const (
	RoleUser   = "user"
	RoleModel  = "model"
	RoleSystem = "system"
)

// ChatMessage is a single turn in a stored conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MentorConfig is the per-user mentor display name and personality choice.
// Personality keys resolve against the configured personality presets.
type MentorConfig struct {
	Name        string `json:"name"`
	Personality string `json:"personality"`
}

// DefaultMentorConfig is used until the user picks a mentor.
func DefaultMentorConfig() MentorConfig {
	return MentorConfig{Name: "Mentor", Personality: "malcolm-kingley"}
}
