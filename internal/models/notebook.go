package models

// SymptomEntry is one tracked symptom in the user's notebook. Ratings are
// on a 0-10 scale; CreatedAt/UpdatedAt are RFC3339 strings.
type SymptomEntry struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	InitialRating float64 `json:"initialRating"`
	CurrentRating float64 `json:"currentRating"`
	RelatedTracks string  `json:"relatedTracks"`
	ActionsTaken  string  `json:"actionsTaken"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// SymptomPoint is one sanitized dashboard data point: a symptom's rating on
// a given day.
type SymptomPoint struct {
	Name   string  `json:"name"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Rating float64 `json:"rating"`
}

// SymptomSeries is the dashboard chart payload: the sorted set of dates and
// one rating-by-date series per symptom name.
type SymptomSeries struct {
	Labels []string              `json:"labels"`
	Series map[string][]*float64 `json:"series"` // aligned to Labels, nil where unrecorded
}
