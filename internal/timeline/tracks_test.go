package timeline

import (
	"testing"

	"biocode/internal/models"
)

func TestTrackIndex(t *testing.T) {
	analysis := &models.Analysis{
		Tracks: []models.Track{
			{Theme: "abandonment", RelatedEventIDs: []string{"e1", "e3"}},
			{Theme: "territory", RelatedEventIDs: []string{"e1"}},
		},
	}
	idx := NewTrackIndex(analysis)

	e1 := idx.TracksFor("e1")
	if len(e1) != 2 || e1[0].Theme != "abandonment" || e1[1].Theme != "territory" {
		t.Fatalf("TracksFor(e1) = %+v, want abandonment then territory", e1)
	}

	if got := idx.TracksFor("e3"); len(got) != 1 || got[0].Theme != "abandonment" {
		t.Fatalf("TracksFor(e3) = %+v", got)
	}

	// Unknown event: empty slice, never nil panic.
	if got := idx.TracksFor("missing"); len(got) != 0 {
		t.Fatalf("TracksFor(missing) = %+v, want empty", got)
	}
}

func TestTrackIndexNilAnalysis(t *testing.T) {
	idx := NewTrackIndex(nil)
	if got := idx.TracksFor("e1"); len(got) != 0 {
		t.Fatalf("TracksFor on nil analysis = %+v, want empty", got)
	}
}
