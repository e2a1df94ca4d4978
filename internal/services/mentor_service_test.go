package services

import (
	"context"
	"strings"
	"testing"

	"biocode/internal/config"
	"biocode/internal/gateway"
	"biocode/internal/models"
	"biocode/internal/store"
)

func newMentorFixture(t *testing.T, gw *fakeGateway) (*MentorService, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	tl := NewTimelineService(st, gw)
	rs := NewReportService(st, gw, tl)
	as := NewAwarenessService(st, gw, tl, rs)
	personalities, err := config.LoadPersonalities("testdata/does-not-exist.yaml")
	if err != nil {
		t.Fatalf("LoadPersonalities: %v", err)
	}
	return NewMentorService(st, gw, rs, as, personalities), st
}

func TestMentorSendTracksProtocolState(t *testing.T) {
	replies := []string{
		"Let's begin. [PROTOCOL_START:Track_Neutralization] Close your eyes.",
		"Good work. [PROTOCOL_END] Rest now.",
	}
	var seen []gateway.MentorRequest
	gw := &fakeGateway{
		mentor: func(req gateway.MentorRequest) (string, error) {
			seen = append(seen, req)
			return replies[len(seen)-1], nil
		},
	}
	svc, _ := newMentorFixture(t, gw)
	ctx := context.Background()

	turn, err := svc.Send(ctx, "alice", "I feel stuck")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if turn.ActiveProtocol != "Track Neutralization" {
		t.Errorf("ActiveProtocol = %q", turn.ActiveProtocol)
	}
	if strings.Contains(turn.Reply, "[PROTOCOL_START") {
		t.Errorf("tags leaked into reply: %q", turn.Reply)
	}

	// The protocol survives to the next turn's request context.
	turn, err = svc.Send(ctx, "alice", "done")
	if err != nil {
		t.Fatalf("Send 2: %v", err)
	}
	if seen[1].ActiveProtocol != "Track Neutralization" {
		t.Errorf("second request ActiveProtocol = %q", seen[1].ActiveProtocol)
	}
	if turn.ActiveProtocol != "" {
		t.Errorf("ActiveProtocol after end = %q", turn.ActiveProtocol)
	}

	// Both exchanges stored: 2 user + 2 model messages.
	if len(turn.History) != 4 {
		t.Errorf("history = %d messages, want 4", len(turn.History))
	}
}

func TestMentorCompaction(t *testing.T) {
	gw := &fakeGateway{
		mentor: func(gateway.MentorRequest) (string, error) {
			return "a reply", nil
		},
		summarize: func(history []models.ChatMessage) (string, error) {
			return "they talked a lot", nil
		},
	}
	svc, st := newMentorFixture(t, gw)
	ctx := context.Background()

	// Seed a conversation right at the threshold; the next turn pushes it
	// past 10 messages and triggers compaction.
	seed := make([]models.ChatMessage, 10)
	for i := range seed {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleModel
		}
		seed[i] = models.ChatMessage{Role: role, Content: "old message"}
	}
	if err := store.SetJSON(ctx, st, "alice", store.KeyMentorConversation, seed); err != nil {
		t.Fatal(err)
	}

	turn, err := svc.Send(ctx, "alice", "one more")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	// Summary system message + last 8.
	if len(turn.History) != 9 {
		t.Fatalf("history = %d messages, want 9", len(turn.History))
	}
	if turn.History[0].Role != models.RoleSystem || !strings.Contains(turn.History[0].Content, "they talked a lot") {
		t.Errorf("history[0] = %+v, want the summary", turn.History[0])
	}
	if turn.History[8].Content != "a reply" {
		t.Errorf("last message = %+v, want the fresh reply", turn.History[8])
	}
}

func TestMentorHistoryUploadDownload(t *testing.T) {
	svc, _ := newMentorFixture(t, &fakeGateway{})
	ctx := context.Background()

	transcript := "User: hello\n\nMentor: welcome back\nand take a seat\n\nUser: thanks\n"
	history, err := svc.UploadHistory(ctx, "alice", transcript)
	if err != nil {
		t.Fatalf("UploadHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history = %+v, want 3 messages", history)
	}
	if history[1].Role != models.RoleModel || history[1].Content != "welcome back\nand take a seat" {
		t.Errorf("continuation line not folded: %+v", history[1])
	}

	out, err := svc.DownloadHistory(ctx, "alice")
	if err != nil {
		t.Fatalf("DownloadHistory: %v", err)
	}
	for _, want := range []string{"User: hello", "Mentor: welcome back", "User: thanks"} {
		if !strings.Contains(out, want) {
			t.Errorf("download missing %q:\n%s", want, out)
		}
	}

	if _, err := svc.UploadHistory(ctx, "alice", "no speakers here"); err == nil {
		t.Error("upload with no recognizable messages should fail")
	}
}

func TestMentorClearHistory(t *testing.T) {
	gw := &fakeGateway{
		mentor: func(gateway.MentorRequest) (string, error) {
			return "[PROTOCOL_START:Grounding] breathe", nil
		},
	}
	svc, _ := newMentorFixture(t, gw)
	ctx := context.Background()

	if _, err := svc.Send(ctx, "alice", "help"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := svc.ClearHistory(ctx, "alice"); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}

	history, err := svc.History(ctx, "alice")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history after clear = %+v", history)
	}
	protocol, treatment, err := svc.ActiveState(ctx, "alice")
	if err != nil {
		t.Fatalf("ActiveState: %v", err)
	}
	if protocol != "" || treatment != "" {
		t.Errorf("active state after clear = %q/%q", protocol, treatment)
	}
}
