package services

import (
	"context"
	"time"

	"biocode/internal/models"
)

// TrialService computes the trial gate. The state is derived from the
// stored start date on every read; it never depends on a previously
// cached verdict. A missing or zero start date counts as expired.
type TrialService struct {
	users    *UserService
	duration time.Duration
	now      func() time.Time // swapped in tests
}

// NewTrialService creates a trial service with the given trial length in
// days.
func NewTrialService(users *UserService, days int) *TrialService {
	if days <= 0 {
		days = 90
	}
	return &TrialService{
		users:    users,
		duration: time.Duration(days) * 24 * time.Hour,
		now:      time.Now,
	}
}

// Status returns the current trial state and countdown for a user.
func (s *TrialService) Status(ctx context.Context, username string) (*models.TrialStatus, error) {
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.statusFor(user), nil
}

func (s *TrialService) statusFor(user *models.User) *models.TrialStatus {
	// Fail closed: no parseable start date means no trial time left.
	if user.TrialStartedAt.IsZero() {
		return &models.TrialStatus{State: models.TrialExpired}
	}

	endsAt := user.TrialStartedAt.Add(s.duration)
	now := s.now()
	if !now.Before(endsAt) {
		return &models.TrialStatus{State: models.TrialExpired, EndsAt: &endsAt}
	}

	left := endsAt.Sub(now)
	remaining := &models.TimeRemaining{
		Days:    int(left / (24 * time.Hour)),
		Hours:   int(left/time.Hour) % 24,
		Minutes: int(left/time.Minute) % 60,
		Seconds: int(left/time.Second) % 60,
	}
	return &models.TrialStatus{State: models.TrialActive, EndsAt: &endsAt, Remaining: remaining}
}
