package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"biocode/internal/apperrors"
	"biocode/internal/gateway"
	"biocode/internal/models"
	"biocode/internal/store"
	"biocode/internal/timeline"

	"github.com/google/uuid"
)

// TimelineService owns the per-user timeline aggregate: the anchor, the
// conflict events, and the derived snapshots (analysis, report,
// diagnostician conversation) that go stale whenever the timeline changes.
type TimelineService struct {
	store   store.Store
	gateway gateway.Gateway
}

// NewTimelineService creates a timeline service
func NewTimelineService(st store.Store, gw gateway.Gateway) *TimelineService {
	return &TimelineService{store: st, gateway: gw}
}

// Get returns the stored timeline, or an empty one when nothing is stored
// yet or the stored document is malformed.
func (s *TimelineService) Get(ctx context.Context, username string) (*models.TimelineData, error) {
	var data models.TimelineData
	err := store.GetJSON(ctx, s.store, username, store.KeyTimeline, &data)
	if errors.Is(err, store.ErrNoDocument) {
		return &models.TimelineData{Events: []models.ConflictEvent{}}, nil
	}
	if errors.Is(err, apperrors.ErrStorage) {
		// Malformed on disk: degrade to empty rather than locking the
		// user out of their own timeline.
		log.Printf("⚠️  Malformed timeline for %s, starting empty: %v", username, err)
		return &models.TimelineData{Events: []models.ConflictEvent{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if data.Events == nil {
		data.Events = []models.ConflictEvent{}
	}
	return &data, nil
}

// Display returns the timeline rendered for display: age-sorted items with
// cycle dividers, plus the track index over the current analysis.
func (s *TimelineService) Display(ctx context.Context, username string) ([]timeline.Item, *timeline.TrackIndex, error) {
	data, err := s.Get(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	analysis, _ := s.Analysis(ctx, username)
	return timeline.Build(data), timeline.NewTrackIndex(analysis), nil
}

// Analysis returns the stored analysis, or nil when none exists.
func (s *TimelineService) Analysis(ctx context.Context, username string) (*models.Analysis, error) {
	var analysis models.Analysis
	err := store.GetJSON(ctx, s.store, username, store.KeyAnalysis, &analysis)
	if errors.Is(err, store.ErrNoDocument) || errors.Is(err, apperrors.ErrStorage) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// SetAnchor replaces the anchor unconditionally and invalidates derived
// snapshots.
func (s *TimelineService) SetAnchor(ctx context.Context, username string, anchor models.Anchor) (*models.TimelineData, error) {
	if anchor.Age < 0 {
		return nil, apperrors.Validationf("anchor age must be a non-negative number")
	}
	if strings.TrimSpace(anchor.Description) == "" {
		return nil, apperrors.Validationf("anchor description is required")
	}

	data, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	data.InitialAnchor = &anchor

	if err := s.save(ctx, username, data); err != nil {
		return nil, err
	}
	log.Printf("📍 Anchor set for %s (cycle length %d)", username, anchor.Age)
	return data, nil
}

// AddEvent validates the form input, assigns a timestamp-derived id and
// appends the event. Derived snapshots are invalidated.
func (s *TimelineService) AddEvent(ctx context.Context, username string, input models.EventInput) (*models.TimelineData, error) {
	event, err := eventFromInput(input)
	if err != nil {
		return nil, err
	}
	event.ID = newEventID()

	data, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	data.Events = append(data.Events, event)

	if err := s.save(ctx, username, data); err != nil {
		return nil, err
	}
	log.Printf("📝 Event %s added for %s (age %d)", event.ID, username, event.Age)
	return data, nil
}

// UpdateEvent replaces the user-editable fields of an existing event. The
// id and any prior categorization are preserved unless the age or
// description changed, in which case the categorization is cleared too
// (it described the old event).
func (s *TimelineService) UpdateEvent(ctx context.Context, username, eventID string, input models.EventInput) (*models.TimelineData, error) {
	updated, err := eventFromInput(input)
	if err != nil {
		return nil, err
	}

	data, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range data.Events {
		if data.Events[i].ID != eventID {
			continue
		}
		prior := data.Events[i]
		updated.ID = prior.ID
		if updated.Age == prior.Age && updated.Description == prior.Description {
			updated.Categorization = prior.Categorization
		}
		data.Events[i] = updated
		found = true
		break
	}
	if !found {
		return nil, apperrors.NotFoundf("event %s", eventID)
	}

	if err := s.save(ctx, username, data); err != nil {
		return nil, err
	}
	log.Printf("✏️  Event %s updated for %s", eventID, username)
	return data, nil
}

// DeleteEvent removes the event with the given id. Deleting an absent id
// is a no-op; the confirmation dialog lives client-side.
func (s *TimelineService) DeleteEvent(ctx context.Context, username, eventID string) (*models.TimelineData, error) {
	data, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	kept := data.Events[:0]
	removed := 0
	for _, e := range data.Events {
		if e.ID == eventID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	data.Events = kept

	if removed == 0 {
		return data, nil
	}

	if err := s.save(ctx, username, data); err != nil {
		return nil, err
	}
	log.Printf("🗑️  Event %s deleted for %s", eventID, username)
	return data, nil
}

// ScanDocument hands scanned document parts to the gateway and merges the
// result: with no existing data the scanned timeline is authoritative;
// otherwise the existing anchor is preserved and scanned events are
// appended.
func (s *TimelineService) ScanDocument(ctx context.Context, username string, parts []gateway.Part) (*models.TimelineData, error) {
	existing, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	var base *models.TimelineData
	if existing.InitialAnchor != nil || len(existing.Events) > 0 {
		base = existing
	}

	scanned, err := s.gateway.ScanTimeline(ctx, parts, base)
	if err != nil {
		return nil, err
	}

	merged := MergeScannedTimeline(base, scanned)
	for i := range merged.Events {
		if merged.Events[i].ID == "" {
			merged.Events[i].ID = newEventID()
		}
	}

	if err := s.save(ctx, username, merged); err != nil {
		return nil, err
	}
	log.Printf("📄 Scanned timeline merged for %s (%d events)", username, len(merged.Events))
	return merged, nil
}

// MergeScannedTimeline applies the structural merge rule for scanned data:
// a nil existing timeline adopts the scan wholesale; otherwise the existing
// anchor wins and scanned events are appended after the existing ones. The
// scan instruction asks the model for new events only, but a model that
// echoes the provided data back must not duplicate it, so scanned events
// matching an existing one by id or by age and description are dropped.
func MergeScannedTimeline(existing, scanned *models.TimelineData) *models.TimelineData {
	if scanned == nil {
		return existing
	}
	if existing == nil {
		out := *scanned
		if out.Events == nil {
			out.Events = []models.ConflictEvent{}
		}
		return &out
	}
	merged := &models.TimelineData{
		InitialAnchor: existing.InitialAnchor,
		Events:        append([]models.ConflictEvent{}, existing.Events...),
	}
	for _, ev := range scanned.Events {
		if !containsEvent(existing.Events, ev) {
			merged.Events = append(merged.Events, ev)
		}
	}
	if merged.InitialAnchor == nil {
		merged.InitialAnchor = scanned.InitialAnchor
	}
	return merged
}

func containsEvent(events []models.ConflictEvent, candidate models.ConflictEvent) bool {
	for _, ev := range events {
		if candidate.ID != "" && ev.ID == candidate.ID {
			return true
		}
		if ev.Age == candidate.Age && sameText(ev.Description, candidate.Description) {
			return true
		}
	}
	return false
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// CategorizeUncategorized runs the gateway categorization over every event
// that has no GNM explanation yet, concurrently. Events that fail keep
// their prior state; the batch only errors when every call failed.
func (s *TimelineService) CategorizeUncategorized(ctx context.Context, username string) (*models.TimelineData, error) {
	data, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	var pending []models.ConflictEvent
	for _, e := range data.Events {
		if !e.Categorized() {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return data, nil
	}

	log.Printf("🧠 Categorizing %d events for %s", len(pending), username)

	type result struct {
		id  string
		cat models.Categorization
		err error
	}
	results := make([]result, len(pending))

	var wg sync.WaitGroup
	for i, event := range pending {
		wg.Add(1)
		go func(i int, event models.ConflictEvent) {
			defer wg.Done()
			cat, err := s.gateway.CategorizeConflict(ctx, event)
			results[i] = result{id: event.ID, cat: cat, err: err}
		}(i, event)
	}
	wg.Wait()

	byID := make(map[string]models.Categorization, len(results))
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			log.Printf("⚠️  Categorization failed for event %s: %v", r.id, r.err)
			continue
		}
		byID[r.id] = r.cat
	}

	for i := range data.Events {
		if cat, ok := byID[data.Events[i].ID]; ok {
			data.Events[i].Categorization = cat
		}
	}

	if failed == len(pending) {
		return data, &apperrors.PartialGatewayFailure{Total: len(pending), Failed: failed}
	}

	if err := s.save(ctx, username, data); err != nil {
		return nil, err
	}
	log.Printf("✅ Categorized %d/%d events for %s", len(pending)-failed, len(pending), username)
	return data, nil
}

// Replace overwrites the stored timeline wholesale (import path) and
// invalidates derived snapshots.
func (s *TimelineService) Replace(ctx context.Context, username string, data *models.TimelineData) error {
	return s.save(ctx, username, data)
}

// save persists the timeline and clears the derived snapshots that
// described the previous state.
func (s *TimelineService) save(ctx context.Context, username string, data *models.TimelineData) error {
	if err := store.SetJSON(ctx, s.store, username, store.KeyTimeline, data); err != nil {
		return fmt.Errorf("save timeline: %w", err)
	}
	for _, key := range []string{store.KeyAnalysis, store.KeyReport, store.KeyConversation} {
		if err := s.store.Delete(ctx, username, key); err != nil {
			return fmt.Errorf("invalidate %s: %w", key, err)
		}
	}
	return nil
}

// eventFromInput validates the submitted form fields and builds an event.
func eventFromInput(input models.EventInput) (models.ConflictEvent, error) {
	age, err := strconv.Atoi(strings.TrimSpace(input.Age))
	if err != nil || age < 0 {
		return models.ConflictEvent{}, apperrors.Validationf("age must be a non-negative number")
	}
	required := map[string]string{
		"description":  input.Description,
		"characters":   input.Characters,
		"feelings":     input.Feelings,
		"bodyLocation": input.BodyLocation,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return models.ConflictEvent{}, apperrors.Validationf("%s is required", field)
		}
	}
	return models.ConflictEvent{
		Age:          age,
		Date:         strings.TrimSpace(input.Date),
		Description:  strings.TrimSpace(input.Description),
		Characters:   strings.TrimSpace(input.Characters),
		Feelings:     strings.TrimSpace(input.Feelings),
		BodyLocation: strings.TrimSpace(input.BodyLocation),
	}, nil
}

// newEventID returns a fresh event id. Random ids stay unique even when
// a scan mints several within one clock tick.
func newEventID() string {
	return uuid.NewString()
}
