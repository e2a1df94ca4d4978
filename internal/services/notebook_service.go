package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"biocode/internal/apperrors"
	"biocode/internal/gateway"
	"biocode/internal/models"
	"biocode/internal/store"

	"github.com/google/uuid"
)

// NotebookService tracks symptoms over time and feeds the dashboard.
type NotebookService struct {
	store    store.Store
	gateway  gateway.Gateway
	timeline *TimelineService
}

// NewNotebookService creates a notebook service
func NewNotebookService(st store.Store, gw gateway.Gateway, tl *TimelineService) *NotebookService {
	return &NotebookService{store: st, gateway: gw, timeline: tl}
}

// Entries returns all stored symptom entries.
func (s *NotebookService) Entries(ctx context.Context, username string) ([]models.SymptomEntry, error) {
	var entries []models.SymptomEntry
	err := store.GetJSON(ctx, s.store, username, store.KeyNotebook, &entries)
	if errors.Is(err, store.ErrNoDocument) || errors.Is(err, apperrors.ErrStorage) {
		return []models.SymptomEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *NotebookService) save(ctx context.Context, username string, entries []models.SymptomEntry) error {
	return store.SetJSON(ctx, s.store, username, store.KeyNotebook, entries)
}

// Add validates and appends a new symptom entry.
func (s *NotebookService) Add(ctx context.Context, username string, entry models.SymptomEntry) ([]models.SymptomEntry, error) {
	if strings.TrimSpace(entry.Name) == "" {
		return nil, apperrors.Validationf("symptom name is required")
	}
	if entry.InitialRating < 0 || entry.InitialRating > 10 {
		return nil, apperrors.Validationf("initial rating must be between 0 and 10")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	entry.ID = uuid.New().String()
	entry.CurrentRating = entry.InitialRating
	entry.CreatedAt = now
	entry.UpdatedAt = now

	entries, err := s.Entries(ctx, username)
	if err != nil {
		return nil, err
	}
	entries = append(entries, entry)

	if err := s.save(ctx, username, entries); err != nil {
		return nil, err
	}
	log.Printf("📓 Symptom %q added for %s", entry.Name, username)
	return entries, nil
}

// Update replaces the user-editable fields of an entry and bumps its
// UpdatedAt timestamp.
func (s *NotebookService) Update(ctx context.Context, username, id string, update models.SymptomEntry) ([]models.SymptomEntry, error) {
	if update.CurrentRating < 0 || update.CurrentRating > 10 {
		return nil, apperrors.Validationf("current rating must be between 0 and 10")
	}

	entries, err := s.Entries(ctx, username)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		if strings.TrimSpace(update.Name) != "" {
			entries[i].Name = update.Name
		}
		entries[i].CurrentRating = update.CurrentRating
		entries[i].RelatedTracks = update.RelatedTracks
		entries[i].ActionsTaken = update.ActionsTaken
		entries[i].UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		found = true
		break
	}
	if !found {
		return nil, apperrors.NotFoundf("symptom entry %s", id)
	}

	if err := s.save(ctx, username, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes an entry; deleting an absent id is a no-op.
func (s *NotebookService) Delete(ctx context.Context, username, id string) ([]models.SymptomEntry, error) {
	entries, err := s.Entries(ctx, username)
	if err != nil {
		return nil, err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return entries, nil
	}

	if err := s.save(ctx, username, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// ResetScript generates a guided reset script for one entry.
func (s *NotebookService) ResetScript(ctx context.Context, username, id string) (string, error) {
	entry, err := s.find(ctx, username, id)
	if err != nil {
		return "", err
	}
	data, analysis, err := s.context(ctx, username)
	if err != nil {
		return "", err
	}
	return s.gateway.ResetScript(ctx, entry, data, analysis)
}

// ThoughtReframing generates a reframing exercise for one entry.
func (s *NotebookService) ThoughtReframing(ctx context.Context, username, id string) (string, error) {
	entry, err := s.find(ctx, username, id)
	if err != nil {
		return "", err
	}
	data, analysis, err := s.context(ctx, username)
	if err != nil {
		return "", err
	}
	return s.gateway.ThoughtReframing(ctx, entry, data, analysis)
}

func (s *NotebookService) find(ctx context.Context, username, id string) (models.SymptomEntry, error) {
	entries, err := s.Entries(ctx, username)
	if err != nil {
		return models.SymptomEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.SymptomEntry{}, apperrors.NotFoundf("symptom entry %s", id)
}

func (s *NotebookService) context(ctx context.Context, username string) (*models.TimelineData, *models.Analysis, error) {
	data, err := s.timeline.Get(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	analysis, err := s.timeline.Analysis(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	return data, analysis, nil
}

// Dashboard builds the rating-over-time chart series. Entries with a
// missing name, an out-of-range rating or an unparseable timestamp are
// skipped, never fatal.
func (s *NotebookService) Dashboard(ctx context.Context, username string) (*models.SymptomSeries, error) {
	entries, err := s.Entries(ctx, username)
	if err != nil {
		return nil, err
	}

	points := SanitizeEntries(entries)

	dateSet := make(map[string]struct{})
	for _, p := range points {
		dateSet[p.Date] = struct{}{}
	}
	labels := make([]string, 0, len(dateSet))
	for d := range dateSet {
		labels = append(labels, d)
	}
	sort.Strings(labels)

	dateIdx := make(map[string]int, len(labels))
	for i, d := range labels {
		dateIdx[d] = i
	}

	series := make(map[string][]*float64)
	for _, p := range points {
		row, ok := series[p.Name]
		if !ok {
			row = make([]*float64, len(labels))
			series[p.Name] = row
		}
		rating := p.Rating
		row[dateIdx[p.Date]] = &rating
	}

	return &models.SymptomSeries{Labels: labels, Series: series}, nil
}

// SanitizeEntries turns stored entries into chart points, dropping
// malformed records. Each entry contributes its initial rating at
// CreatedAt and, when the entry was updated later, its current rating at
// UpdatedAt.
func SanitizeEntries(entries []models.SymptomEntry) []models.SymptomPoint {
	var points []models.SymptomPoint
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		created, err := time.Parse(time.RFC3339, e.CreatedAt)
		if err != nil {
			continue
		}
		if e.InitialRating >= 0 && e.InitialRating <= 10 {
			points = append(points, models.SymptomPoint{
				Name:   name,
				Date:   created.Format("2006-01-02"),
				Rating: e.InitialRating,
			})
		}
		updated, err := time.Parse(time.RFC3339, e.UpdatedAt)
		if err != nil || !updated.After(created) {
			continue
		}
		if e.CurrentRating >= 0 && e.CurrentRating <= 10 {
			points = append(points, models.SymptomPoint{
				Name:   name,
				Date:   updated.Format("2006-01-02"),
				Rating: e.CurrentRating,
			})
		}
	}
	return points
}

// Insight asks the gateway for a progress summary. Requires more than two
// entries so the model has an actual trend to talk about.
func (s *NotebookService) Insight(ctx context.Context, username string) (string, error) {
	entries, err := s.Entries(ctx, username)
	if err != nil {
		return "", err
	}
	if len(entries) <= 2 {
		return "", apperrors.Validationf("add at least three symptom entries for an insight")
	}
	return s.gateway.NotebookInsight(ctx, entries)
}
