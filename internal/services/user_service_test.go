package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"biocode/internal/apperrors"
	"biocode/internal/database"
	"biocode/internal/models"
	"biocode/internal/store"
	"biocode/pkg/auth"
)

func newUserFixture(t *testing.T, bypass string) (*UserService, store.Store) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Initialize(); err != nil {
		t.Fatalf("initialize database: %v", err)
	}

	jwtAuth, err := auth.NewLocalJWTAuth("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("jwt auth: %v", err)
	}

	st := store.NewMemoryStore()
	return NewUserService(db, st, jwtAuth, bypass), st
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newUserFixture(t, "")
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "alice", "hunter22", "favorite game")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if token == "" {
		t.Error("no token issued on register")
	}
	if user.TrialStartedAt.IsZero() {
		t.Error("trial start not set")
	}

	if _, _, err := svc.Register(ctx, "alice", "other", ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("duplicate register err = %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("bad password err = %v", err)
	}
	logged, token, err := svc.Login(ctx, "alice", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.Username != "alice" || token == "" {
		t.Errorf("login result = %+v, token %q", logged, token)
	}

	reminder, err := svc.Reminder(ctx, "alice")
	if err != nil || reminder != "favorite game" {
		t.Errorf("Reminder = %q, %v", reminder, err)
	}
}

func TestDeleteAndReactivatePreservesTrialStart(t *testing.T) {
	svc, st := newUserFixture(t, "")
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "alice", "hunter22", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := store.SetJSON(ctx, st, "alice", store.KeyTimeline, &models.TimelineData{}); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, "alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, "alice", store.KeyTimeline); !errors.Is(err, store.ErrNoDocument) {
		t.Error("stored documents survived profile deletion")
	}
	if _, _, err := svc.Login(ctx, "alice", "hunter22"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("login on deleted profile err = %v", err)
	}

	revived, _, err := svc.Reactivate(ctx, "alice", "newpass22", "new hint")
	if err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if !revived.TrialStartedAt.Equal(registered.TrialStartedAt) {
		t.Errorf("trial start changed: %v -> %v", registered.TrialStartedAt, revived.TrialStartedAt)
	}
	if _, _, err := svc.Login(ctx, "alice", "newpass22"); err != nil {
		t.Errorf("login after reactivate: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice", "hunter22"); err == nil {
		t.Error("old password still works after reactivate")
	}
}

func TestBypassPassword(t *testing.T) {
	svc, _ := newUserFixture(t, "letmein")
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "alice", "hunter22", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice", "letmein"); err != nil {
		t.Errorf("bypass login err = %v", err)
	}

	// Disabled bypass never matches, not even the empty password.
	svcOff, _ := newUserFixture(t, "")
	if _, _, err := svcOff.Register(ctx, "bob", "hunter22", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svcOff.Login(ctx, "bob", ""); err == nil {
		t.Error("empty password accepted with bypass disabled")
	}
}

func TestTrialStatus(t *testing.T) {
	svc, _ := newUserFixture(t, "")
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "alice", "hunter22", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	trial := NewTrialService(svc, 90)
	status, err := trial.Status(ctx, "alice")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.State != models.TrialActive || status.Remaining == nil {
		t.Fatalf("fresh trial status = %+v", status)
	}
	if status.Remaining.Days != 89 {
		t.Errorf("remaining days = %d, want 89", status.Remaining.Days)
	}

	// Move the clock past the trial end.
	trial.now = func() time.Time { return time.Now().Add(91 * 24 * time.Hour) }
	status, err = trial.Status(ctx, "alice")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.State != models.TrialExpired {
		t.Errorf("expired status = %+v", status)
	}
}

func TestTrialFailsClosedOnBadStartDate(t *testing.T) {
	svc, _ := newUserFixture(t, "")
	ctx := context.Background()

	// A row whose trial_started_at cannot be parsed must read as expired.
	_, err := svc.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, reminder, status, trial_started_at, created_at)
		VALUES ('mallory', 'x', '', 'active', 'garbage', '2026-01-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("seed row: %v", err)
	}

	trial := NewTrialService(svc, 90)
	status, err := trial.Status(ctx, "mallory")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.State != models.TrialExpired {
		t.Errorf("status with bad start date = %+v, want expired", status)
	}
}

func TestDisclaimerDefaultsToNotAccepted(t *testing.T) {
	svc, _ := newUserFixture(t, "")
	ctx := context.Background()

	accepted, err := svc.DisclaimerAccepted(ctx, "alice")
	if err != nil {
		t.Fatalf("DisclaimerAccepted: %v", err)
	}
	if accepted {
		t.Error("disclaimer should default to not accepted")
	}

	if err := svc.AcceptDisclaimer(ctx, "alice"); err != nil {
		t.Fatalf("AcceptDisclaimer: %v", err)
	}
	accepted, err = svc.DisclaimerAccepted(ctx, "alice")
	if err != nil {
		t.Fatalf("DisclaimerAccepted after accept: %v", err)
	}
	if !accepted {
		t.Error("disclaimer acceptance did not persist")
	}
}
