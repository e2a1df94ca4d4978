package models

// QuantifiedImpact states a pattern's cost (or gain) across life areas.
type QuantifiedImpact struct {
	Financial string `json:"financial"`
	Physical  string `json:"physical"`
	Emotional string `json:"emotional"`
	Spiritual string `json:"spiritual,omitempty"`
}

// LeveragePoint is the single theme the protocol identifies as the highest
// leverage target, with its treatment script.
type LeveragePoint struct {
	Theme                 string   `json:"theme"`
	Reasoning             string   `json:"reasoning"`
	SequentialTriggers    []string `json:"sequentialTriggers"`
	RawsonTreatmentScript string   `json:"rawsonTreatmentScript"`
}

// IdentityShiftProtocol contrasts familiar patterns with new behaviors.
type IdentityShiftProtocol struct {
	FamiliarPatterns []string `json:"familiarPatterns"`
	NewBehaviors     []string `json:"newBehaviors"`
}

// SpiritualRemedy pairs a scripture reference with its explanation.
type SpiritualRemedy struct {
	Scripture   string `json:"scripture"`
	Explanation string `json:"explanation"`
}

// FutureForecast is the protocol's projected outcome.
type FutureForecast struct {
	Vision          string           `json:"vision"`
	QuantifiedGains QuantifiedImpact `json:"quantifiedGains"`
}

// SelfAwarenessProtocol is the gateway-generated self-awareness document,
// derived once from timeline + analysis + report and persisted per user.
type SelfAwarenessProtocol struct {
	SpiritualRemedy       SpiritualRemedy       `json:"spiritualRemedy"`
	PredictiveAnalysis    string                `json:"predictiveAnalysis"`
	QuantifiedCosts       QuantifiedImpact      `json:"quantifiedCosts"`
	LeveragePoint         LeveragePoint         `json:"leveragePoint"`
	IdentityShiftProtocol IdentityShiftProtocol `json:"identityShiftProtocol"`
	FutureForecast        FutureForecast        `json:"futureForecast"`
	Disclaimer            string                `json:"disclaimer"`
}
