package store

import (
	"context"
	"errors"
	"testing"
)

// storeContract runs the behavior every Store implementation must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "alice", KeyTimeline); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("Get on empty store err = %v, want ErrNoDocument", err)
	}

	if err := s.Set(ctx, "alice", KeyTimeline, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "alice", KeyTimeline)
	if err != nil || string(got) != `{"a":1}` {
		t.Fatalf("Get = %s, %v", got, err)
	}

	// Users are namespaced from each other.
	if _, err := s.Get(ctx, "bob", KeyTimeline); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("bob sees alice's document (err = %v)", err)
	}

	// Overwrite wins.
	if err := s.Set(ctx, "alice", KeyTimeline, []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = s.Get(ctx, "alice", KeyTimeline)
	if string(got) != `{"a":2}` {
		t.Fatalf("after overwrite = %s", got)
	}

	// Delete, then deleting again is a no-op.
	if err := s.Delete(ctx, "alice", KeyTimeline); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "alice", KeyTimeline); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("Get after delete err = %v", err)
	}
	if err := s.Delete(ctx, "alice", KeyTimeline); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestDiskStore(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	storeContract(t, s)
}

func TestGetJSONMalformedDocument(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Set(ctx, "alice", KeyAnalysis, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	err := GetJSON(ctx, s, "alice", KeyAnalysis, &out)
	if err == nil || errors.Is(err, ErrNoDocument) {
		t.Fatalf("malformed document err = %v, want a storage error", err)
	}
}

func TestDeleteAllRemovesEveryKnownKey(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, key := range AllKeys {
		if err := s.Set(ctx, "alice", key, []byte(`1`)); err != nil {
			t.Fatal(err)
		}
	}
	if err := DeleteAll(ctx, s, "alice"); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	for _, key := range AllKeys {
		if _, err := s.Get(ctx, "alice", key); !errors.Is(err, ErrNoDocument) {
			t.Errorf("key %s survived DeleteAll", key)
		}
	}
}
