package jobs

import (
	"context"
	"log"
	"time"

	"biocode/internal/database"
)

// TrialExpiryChecker sweeps the credential table and flags rows whose
// trial has run out. The trial gate recomputes expiry on every read, so
// this job only keeps the stored flag honest for operators querying the
// table directly.
type TrialExpiryChecker struct {
	db       *database.DB
	duration time.Duration
}

// NewTrialExpiryChecker creates a checker with the configured trial length.
func NewTrialExpiryChecker(db *database.DB, duration time.Duration) *TrialExpiryChecker {
	return &TrialExpiryChecker{db: db, duration: duration}
}

// Run flags all rows whose trial started more than the trial length ago.
// RFC3339 UTC timestamps compare correctly as strings.
func (c *TrialExpiryChecker) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-c.duration).Format(time.RFC3339)
	res, err := c.db.ExecContext(ctx, `
		UPDATE users SET trial_expired = 1
		WHERE trial_expired = 0 AND trial_started_at <= ?`, cutoff)
	if err != nil {
		log.Printf("❌ [TRIAL-CHECKER] Sweep failed: %v", err)
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("⏳ [TRIAL-CHECKER] Flagged %d expired trials", n)
	}
}
