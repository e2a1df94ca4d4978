package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"biocode/internal/apperrors"
	"biocode/internal/config"
	"biocode/internal/gateway"
	"biocode/internal/models"
	"biocode/internal/store"

	gocache "github.com/patrickmn/go-cache"
)

// Conversations longer than this get summarized down to a system summary
// plus the most recent turns.
const (
	summarizeThreshold = 10
	keepAfterSummary   = 8
)

// MentorService runs the mentor chat: personality-driven replies, the
// inline protocol/treatment tags, history compaction, upload/download and
// optional spoken replies.
type MentorService struct {
	store         store.Store
	gateway       gateway.Gateway
	report        *ReportService
	awareness     *AwarenessService
	personalities *config.Personalities
	cache         *gocache.Cache // username -> []models.ChatMessage
}

// MentorTurn is the outcome of one mentor exchange.
type MentorTurn struct {
	Reply           string               `json:"reply"`
	Segments        []Segment            `json:"-"`
	ActiveProtocol  string               `json:"activeProtocol,omitempty"`
	ActiveTreatment string               `json:"activeTreatment,omitempty"`
	Audio           []byte               `json:"-"`
	History         []models.ChatMessage `json:"history"`
}

// NewMentorService creates a mentor service
func NewMentorService(st store.Store, gw gateway.Gateway, rs *ReportService, as *AwarenessService, ps *config.Personalities) *MentorService {
	return &MentorService{
		store:         st,
		gateway:       gw,
		report:        rs,
		awareness:     as,
		personalities: ps,
		cache:         gocache.New(30*time.Minute, 10*time.Minute),
	}
}

// Config returns the user's mentor config, or the default until one is set.
func (s *MentorService) Config(ctx context.Context, username string) (models.MentorConfig, error) {
	var cfg models.MentorConfig
	err := store.GetJSON(ctx, s.store, username, store.KeyMentorConfig, &cfg)
	if errors.Is(err, store.ErrNoDocument) || errors.Is(err, apperrors.ErrStorage) {
		return models.DefaultMentorConfig(), nil
	}
	if err != nil {
		return models.MentorConfig{}, err
	}
	if cfg.Name == "" || cfg.Personality == "" {
		return models.DefaultMentorConfig(), nil
	}
	return cfg, nil
}

// SetConfig stores the mentor name and personality choice.
func (s *MentorService) SetConfig(ctx context.Context, username string, cfg models.MentorConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return apperrors.Validationf("mentor name is required")
	}
	if strings.TrimSpace(cfg.Personality) == "" {
		return apperrors.Validationf("mentor personality is required")
	}
	return store.SetJSON(ctx, s.store, username, store.KeyMentorConfig, cfg)
}

// History returns the stored mentor conversation.
func (s *MentorService) History(ctx context.Context, username string) ([]models.ChatMessage, error) {
	if cached, ok := s.cache.Get(username); ok {
		return cached.([]models.ChatMessage), nil
	}

	var history []models.ChatMessage
	err := store.GetJSON(ctx, s.store, username, store.KeyMentorConversation, &history)
	if errors.Is(err, store.ErrNoDocument) || errors.Is(err, apperrors.ErrStorage) {
		return []models.ChatMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	s.cache.Set(username, history, gocache.DefaultExpiration)
	return history, nil
}

func (s *MentorService) saveHistory(ctx context.Context, username string, history []models.ChatMessage) error {
	if err := store.SetJSON(ctx, s.store, username, store.KeyMentorConversation, history); err != nil {
		return err
	}
	s.cache.Set(username, history, gocache.DefaultExpiration)
	return nil
}

// ClearHistory drops the mentor conversation plus any active protocol or
// treatment.
func (s *MentorService) ClearHistory(ctx context.Context, username string) error {
	for _, key := range []string{store.KeyMentorConversation, store.KeyActiveProtocol, store.KeyActiveTreatment} {
		if err := s.store.Delete(ctx, username, key); err != nil {
			return err
		}
	}
	s.cache.Delete(username)
	log.Printf("🧹 Mentor history cleared for %s", username)
	return nil
}

// Send runs one mentor turn end to end.
func (s *MentorService) Send(ctx context.Context, username, message string) (*MentorTurn, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.Validationf("message is empty")
	}

	cfg, err := s.Config(ctx, username)
	if err != nil {
		return nil, err
	}
	personality := s.personalities.Get(cfg.Personality)

	history, err := s.History(ctx, username)
	if err != nil {
		return nil, err
	}
	history = append(history, models.ChatMessage{Role: models.RoleUser, Content: message})

	req := gateway.MentorRequest{
		History:      history,
		Config:       cfg,
		SystemPrompt: personality.SystemPrompt,
	}
	// Best-effort context: the mentor works without a report or awareness
	// protocol, it just knows less.
	if report, err := s.report.Get(ctx, username); err == nil {
		req.Report = report
	}
	if aw, err := s.awareness.Get(ctx, username); err == nil {
		req.Awareness = aw
	}
	req.ActiveProtocol, _ = s.activeValue(ctx, username, store.KeyActiveProtocol)
	req.ActiveTreatment, _ = s.activeValue(ctx, username, store.KeyActiveTreatment)

	raw, err := s.gateway.MentorReply(ctx, req)
	if err != nil {
		return nil, err
	}

	segments := ParseMentorReply(raw)
	turn := &MentorTurn{
		Reply:           PlainText(segments),
		Segments:        segments,
		ActiveProtocol:  req.ActiveProtocol,
		ActiveTreatment: req.ActiveTreatment,
	}

	for _, seg := range segments {
		switch seg.Kind {
		case SegmentProtocolStart:
			turn.ActiveProtocol = seg.Name
		case SegmentProtocolEnd:
			turn.ActiveProtocol = ""
		case SegmentTreatmentStart:
			turn.ActiveTreatment = seg.Name
		case SegmentTreatmentEnd:
			turn.ActiveTreatment = ""
		}
	}
	if err := s.setActiveValue(ctx, username, store.KeyActiveProtocol, turn.ActiveProtocol); err != nil {
		return nil, err
	}
	if err := s.setActiveValue(ctx, username, store.KeyActiveTreatment, turn.ActiveTreatment); err != nil {
		return nil, err
	}

	history = append(history, models.ChatMessage{Role: models.RoleModel, Content: turn.Reply})

	history, err = s.compact(ctx, username, history, cfg.Name)
	if err != nil {
		// Compaction is an optimization; keep the full history on failure.
		log.Printf("⚠️  Mentor history compaction failed for %s: %v", username, err)
	}
	if err := s.saveHistory(ctx, username, history); err != nil {
		return nil, err
	}
	turn.History = history

	if enabled, _ := s.AudioEnabled(ctx, username); enabled && turn.Reply != "" {
		audio, err := s.gateway.GenerateSpeech(ctx, turn.Reply, cfg.Personality)
		if err != nil {
			log.Printf("⚠️  TTS failed for %s: %v", username, err)
		} else {
			turn.Audio = audio
		}
	}

	return turn, nil
}

// compact summarizes a long conversation down to one system summary plus
// the most recent turns.
func (s *MentorService) compact(ctx context.Context, username string, history []models.ChatMessage, mentorName string) ([]models.ChatMessage, error) {
	if len(history) <= summarizeThreshold {
		return history, nil
	}

	summary, err := s.gateway.SummarizeConversation(ctx, history, mentorName)
	if err != nil {
		return history, err
	}

	compacted := make([]models.ChatMessage, 0, keepAfterSummary+1)
	compacted = append(compacted, models.ChatMessage{
		Role:    models.RoleSystem,
		Content: "Summary of the conversation so far: " + summary,
	})
	compacted = append(compacted, history[len(history)-keepAfterSummary:]...)
	log.Printf("📦 Mentor history compacted for %s (%d -> %d messages)", username, len(history), len(compacted))
	return compacted, nil
}

// UploadHistory replaces the conversation with one parsed from plain text,
// one message per line in "User: ..." / "<MentorName>: ..." form. Lines
// without a recognized speaker continue the previous message.
func (s *MentorService) UploadHistory(ctx context.Context, username, text string) ([]models.ChatMessage, error) {
	cfg, err := s.Config(ctx, username)
	if err != nil {
		return nil, err
	}

	var history []models.ChatMessage
	mentorPrefix := cfg.Name + ":"
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "User:"):
			history = append(history, models.ChatMessage{
				Role:    models.RoleUser,
				Content: strings.TrimSpace(strings.TrimPrefix(line, "User:")),
			})
		case strings.HasPrefix(line, mentorPrefix):
			history = append(history, models.ChatMessage{
				Role:    models.RoleModel,
				Content: strings.TrimSpace(strings.TrimPrefix(line, mentorPrefix)),
			})
		case strings.TrimSpace(line) == "":
			// blank separator
		case len(history) > 0:
			history[len(history)-1].Content += "\n" + line
		}
	}
	if len(history) == 0 {
		return nil, apperrors.Validationf("no messages found in uploaded history")
	}

	if err := s.saveHistory(ctx, username, history); err != nil {
		return nil, err
	}
	log.Printf("📥 Mentor history uploaded for %s (%d messages)", username, len(history))
	return history, nil
}

// DownloadHistory renders the conversation in the same plain-text form
// UploadHistory accepts.
func (s *MentorService) DownloadHistory(ctx context.Context, username string) (string, error) {
	cfg, err := s.Config(ctx, username)
	if err != nil {
		return "", err
	}
	history, err := s.History(ctx, username)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, msg := range history {
		switch msg.Role {
		case models.RoleUser:
			fmt.Fprintf(&b, "User: %s\n\n", msg.Content)
		case models.RoleModel:
			fmt.Fprintf(&b, "%s: %s\n\n", cfg.Name, msg.Content)
		}
	}
	return b.String(), nil
}

// AudioEnabled reports the per-user spoken-replies flag.
func (s *MentorService) AudioEnabled(ctx context.Context, username string) (bool, error) {
	var enabled bool
	err := store.GetJSON(ctx, s.store, username, store.KeyAudioEnabled, &enabled)
	if errors.Is(err, store.ErrNoDocument) || errors.Is(err, apperrors.ErrStorage) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return enabled, nil
}

// SetAudioEnabled stores the per-user spoken-replies flag.
func (s *MentorService) SetAudioEnabled(ctx context.Context, username string, enabled bool) error {
	return store.SetJSON(ctx, s.store, username, store.KeyAudioEnabled, enabled)
}

// ActiveState returns the currently active protocol and treatment names.
func (s *MentorService) ActiveState(ctx context.Context, username string) (protocol, treatment string, err error) {
	protocol, err = s.activeValue(ctx, username, store.KeyActiveProtocol)
	if err != nil {
		return "", "", err
	}
	treatment, err = s.activeValue(ctx, username, store.KeyActiveTreatment)
	if err != nil {
		return "", "", err
	}
	return protocol, treatment, nil
}

func (s *MentorService) activeValue(ctx context.Context, username, key string) (string, error) {
	var value string
	err := store.GetJSON(ctx, s.store, username, key, &value)
	if errors.Is(err, store.ErrNoDocument) || errors.Is(err, apperrors.ErrStorage) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *MentorService) setActiveValue(ctx context.Context, username, key, value string) error {
	if value == "" {
		return s.store.Delete(ctx, username, key)
	}
	return store.SetJSON(ctx, s.store, username, key, value)
}
