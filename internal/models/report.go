package models

// CaseSummary opens the generated report.
type CaseSummary struct {
	CaseDetails string `json:"caseDetails"`
	Symptoms    string `json:"symptoms"`
}

// TimelineAnalysisEntry is one row of the tabular timeline analysis section.
type TimelineAnalysisEntry struct {
	AgeEvent          string `json:"ageEvent"`
	Phase             string `json:"phase"`
	ConflictType      string `json:"conflictType"`
	BiologicalPurpose string `json:"biologicalPurpose"`
	TrackIdentified   string `json:"trackIdentified"`
}

// ConflictMapping splits identified conflicts into primary and secondary.
type ConflictMapping struct {
	PrimaryConflicts   []string `json:"primaryConflicts"`
	SecondaryConflicts []string `json:"secondaryConflicts"`
}

// AdvancedTrigger explains a symptom, its biological purpose and its triggers.
type AdvancedTrigger struct {
	Symptom           string `json:"symptom"`
	BiologicalPurpose string `json:"biologicalPurpose"`
	Triggers          string `json:"triggers"`
}

// SpiritualComponent pairs a denial statement with its affirmation.
type SpiritualComponent struct {
	Denial      string `json:"denial"`
	Affirmation string `json:"affirmation"`
}

// ActionProtocol lists the recommended follow-up actions.
type ActionProtocol struct {
	GNMCommands         []string `json:"gnmCommands"`
	TrackNeutralization []string `json:"trackNeutralization"`
	NutritionalSupport  []string `json:"nutritionalSupport"`
}

// ReportData is the full generated report. It is created once from a
// timeline + analysis snapshot and thereafter user-editable with no live
// link back to its source data.
type ReportData struct {
	CaseSummary              CaseSummary             `json:"caseSummary"`
	TimelineAnalysis         []TimelineAnalysisEntry `json:"timelineAnalysis"`
	ConflictMapping          ConflictMapping         `json:"conflictMapping"`
	AdvancedTriggerReasoning []AdvancedTrigger       `json:"advancedTriggerReasoning"`
	SpiritualComponent       SpiritualComponent      `json:"spiritualComponent"`
	ActionProtocol           ActionProtocol          `json:"actionProtocol"`
	ExpectedHealingPhase     []string                `json:"expectedHealingPhase"`
	FinalAnchor              string                  `json:"finalAnchor"`
	NextSteps                string                  `json:"nextSteps"`
}
