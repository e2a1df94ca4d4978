package models

// Track is an AI-identified thematic grouping of related conflict events.
// Tracks are produced wholesale by the gateway and never mutated locally;
// membership is by event id presence in RelatedEventIDs.
type Track struct {
	Theme           string   `json:"theme"`
	Description     string   `json:"description"`
	RelatedEventIDs []string `json:"relatedEventIds"`
	AffectedOrgans  []string `json:"affectedOrgans,omitempty"`
}

// Analysis is the gateway's track analysis over the full event set, plus a
// free-text prediction of likely future triggers. It is a derived snapshot:
// any timeline mutation invalidates it.
type Analysis struct {
	Tracks           []Track `json:"tracks"`
	FuturePrediction string  `json:"futurePrediction"`
}
