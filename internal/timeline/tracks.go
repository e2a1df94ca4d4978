package timeline

import "biocode/internal/models"

// TrackIndex maps event ids to the tracks that reference them. Lookup is
// repeated for every rendered event, so the index is built once per
// analysis instead of scanning the track list each time.
type TrackIndex struct {
	byEvent map[string][]models.Track
}

// NewTrackIndex builds an index over an analysis. A nil analysis yields an
// empty index; every lookup then returns no tracks.
func NewTrackIndex(analysis *models.Analysis) *TrackIndex {
	idx := &TrackIndex{byEvent: make(map[string][]models.Track)}
	if analysis == nil {
		return idx
	}
	for _, track := range analysis.Tracks {
		for _, id := range track.RelatedEventIDs {
			idx.byEvent[id] = append(idx.byEvent[id], track)
		}
	}
	return idx
}

// TracksFor returns every track whose RelatedEventIDs contains the event
// id, in analysis order. Events on no track get an empty slice.
func (idx *TrackIndex) TracksFor(eventID string) []models.Track {
	tracks := idx.byEvent[eventID]
	if tracks == nil {
		return []models.Track{}
	}
	return tracks
}
