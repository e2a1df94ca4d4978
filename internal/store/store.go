// Package store provides the per-user namespaced key-value storage the
// rest of the app persists through. Every document (timeline, analysis,
// report, conversations, notebook, flags) is a JSON value under a
// (username, key) pair; implementations only differ in where the bytes
// live. Writes are read-modify-write, last-write-wins: there is exactly
// one writer per user, the request path.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"biocode/internal/apperrors"
)

// Well-known document keys. Namespacing by user happens inside the store,
// not by string concatenation at call sites.
const (
	KeyTimeline           = "timeline"
	KeyAnalysis           = "analysis"
	KeyReport             = "report"
	KeyConversation       = "conversation"        // diagnostician chat
	KeyMentorConversation = "mentor_conversation" // mentor chat
	KeyMentorConfig       = "mentor_config"
	KeyNotebook           = "notebook"
	KeyAwareness          = "awareness_protocol"
	KeyActiveProtocol     = "active_protocol"
	KeyActiveTreatment    = "active_treatment"
	KeyAudioEnabled       = "audio_enabled"
	KeyDisclaimerAccepted = "disclaimer_accepted"
)

// AllKeys lists every per-user document key, for profile deletion.
var AllKeys = []string{
	KeyTimeline, KeyAnalysis, KeyReport, KeyConversation,
	KeyMentorConversation, KeyMentorConfig, KeyNotebook, KeyAwareness,
	KeyActiveProtocol, KeyActiveTreatment, KeyAudioEnabled,
	KeyDisclaimerAccepted,
}

// ErrNoDocument is returned by Get when a (user, key) pair has no value.
var ErrNoDocument = errors.New("store: no document")

// Store is the namespaced persistent KV capability injected into services.
type Store interface {
	// Get returns the raw JSON stored under (username, key), or
	// ErrNoDocument.
	Get(ctx context.Context, username, key string) ([]byte, error)
	// Set overwrites the value under (username, key).
	Set(ctx context.Context, username, key string, value []byte) error
	// Delete removes the value under (username, key); deleting an absent
	// key is a no-op.
	Delete(ctx context.Context, username, key string) error
}

// GetJSON unmarshals the document under (username, key) into out. A missing
// document returns ErrNoDocument untouched; a malformed document is
// reported as a storage error so callers can degrade to an empty state.
func GetJSON(ctx context.Context, s Store, username, key string, out any) error {
	raw, err := s.Get(ctx, username, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Storagef("decode %s for %s: %v", key, username, err)
	}
	return nil
}

// SetJSON marshals v and stores it under (username, key).
func SetJSON(ctx context.Context, s Store, username, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s for %s: %w", key, username, err)
	}
	return s.Set(ctx, username, key, raw)
}

// DeleteAll removes every known document for a user. Used by profile
// deletion; individual failures abort so the caller can surface them.
func DeleteAll(ctx context.Context, s Store, username string) error {
	for _, key := range AllKeys {
		if err := s.Delete(ctx, username, key); err != nil {
			return fmt.Errorf("delete %s for %s: %w", key, username, err)
		}
	}
	return nil
}
