package models

import "time"

// User account states.
const (
	UserStatusActive  = "active"
	UserStatusDeleted = "deleted"
)

// User is one row of the credential table. PasswordHash is an argon2id hash;
// TrialStartedAt is set exactly once at account creation and survives
// delete + reactivate so the trial clock is never reset.
type User struct {
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	Reminder       string    `json:"reminder"`
	Status         string    `json:"status"`
	TrialStartedAt time.Time `json:"trialStartedAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TrialState is the trial gate state machine: Active until wall-clock time
// reaches start + duration, then Expired with no reverse transition.
type TrialState string

const (
	TrialActive  TrialState = "active"
	TrialExpired TrialState = "expired"
)

// TimeRemaining is the countdown payload pushed to clients.
type TimeRemaining struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// TrialStatus is the REST view of a user's trial.
type TrialStatus struct {
	State     TrialState     `json:"state"`
	EndsAt    *time.Time     `json:"endsAt,omitempty"`
	Remaining *TimeRemaining `json:"remaining,omitempty"`
}
