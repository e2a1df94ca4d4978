package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"biocode/internal/apperrors"
	"biocode/internal/database"
	"biocode/internal/models"
	"biocode/internal/store"
	"biocode/pkg/auth"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{2,64}$`)

// UserService owns the credential table and the account lifecycle:
// register, login, reminder lookup, delete, reactivate. Trial start dates
// are written once at registration and never touched again.
type UserService struct {
	db             *database.DB
	store          store.Store
	jwt            *auth.LocalJWTAuth
	bypassPassword string // empty = disabled
}

// NewUserService creates a user service. bypassPassword, when non-empty,
// accepts any login; it exists for operator recovery only and is off by
// default.
func NewUserService(db *database.DB, st store.Store, jwt *auth.LocalJWTAuth, bypassPassword string) *UserService {
	if bypassPassword != "" {
		log.Println("⚠️  ACCESS_BYPASS_PASSWORD is set: any account can be opened with it")
	}
	return &UserService{db: db, store: st, jwt: jwt, bypassPassword: bypassPassword}
}

// Register creates a new account with the trial clock starting now.
func (s *UserService) Register(ctx context.Context, username, password, reminder string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, "", apperrors.Validationf("username must be 2-64 letters, digits, dots, dashes or underscores")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, "", apperrors.Validationf("%v", err)
	}

	existing, err := s.lookup(ctx, username)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", err
	}
	if existing != nil {
		if existing.Status == models.UserStatusDeleted {
			return nil, "", apperrors.Validationf("this username belonged to a deleted profile; reactivate it instead")
		}
		return nil, "", apperrors.Validationf("username already taken")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Username:       username,
		PasswordHash:   hash,
		Reminder:       reminder,
		Status:         models.UserStatusActive,
		TrialStartedAt: now,
		CreatedAt:      now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, reminder, status, trial_started_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username, user.PasswordHash, user.Reminder, user.Status,
		user.TrialStartedAt.Format(time.RFC3339), user.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, "", apperrors.Storagef("create user: %v", err)
	}

	token, err := s.jwt.GenerateToken(username)
	if err != nil {
		return nil, "", err
	}

	log.Printf("✅ User registered: %s", username)
	return user, token, nil
}

// Login verifies credentials and returns the user plus a fresh token.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.lookup(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, "", apperrors.Validationf("invalid username or password")
	}
	if user.Status == models.UserStatusDeleted {
		return nil, "", apperrors.Validationf("this profile was deleted; reactivate it to log in")
	}

	if s.bypassPassword == "" || password != s.bypassPassword {
		ok, err := auth.VerifyPassword(password, user.PasswordHash)
		if err != nil || !ok {
			return nil, "", apperrors.Validationf("invalid username or password")
		}
	} else {
		log.Printf("⚠️  Bypass login used for %s", username)
	}

	token, err := s.jwt.GenerateToken(user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Reminder returns the stored password reminder.
func (s *UserService) Reminder(ctx context.Context, username string) (string, error) {
	user, err := s.lookup(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	if user.Reminder == "" {
		return "", apperrors.NotFoundf("no reminder stored for %s", username)
	}
	return user.Reminder, nil
}

// Delete marks the account deleted and removes every stored document. The
// credential row stays so the trial start date survives reactivation.
func (s *UserService) Delete(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET status = ? WHERE username = ? AND status = ?`,
		models.UserStatusDeleted, username, models.UserStatusActive)
	if err != nil {
		return apperrors.Storagef("delete user: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFoundf("user %s", username)
	}

	if err := store.DeleteAll(ctx, s.store, username); err != nil {
		return err
	}
	log.Printf("🗑️  Profile deleted: %s", username)
	return nil
}

// Reactivate revives a deleted account with a new password and reminder.
// The original trial start date is kept, so an expired trial stays expired.
func (s *UserService) Reactivate(ctx context.Context, username, password, reminder string) (*models.User, string, error) {
	user, err := s.lookup(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, "", err
	}
	if user.Status != models.UserStatusDeleted {
		return nil, "", apperrors.Validationf("profile %s is not deleted", username)
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, "", apperrors.Validationf("%v", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, reminder = ?, status = ? WHERE username = ?`,
		hash, reminder, models.UserStatusActive, user.Username)
	if err != nil {
		return nil, "", apperrors.Storagef("reactivate user: %v", err)
	}

	user.PasswordHash = hash
	user.Reminder = reminder
	user.Status = models.UserStatusActive

	token, err := s.jwt.GenerateToken(user.Username)
	if err != nil {
		return nil, "", err
	}

	log.Printf("♻️  Profile reactivated: %s (trial started %s)", username, user.TrialStartedAt.Format(time.RFC3339))
	return user, token, nil
}

// Get returns the credential row for a username.
func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	return s.lookup(ctx, username)
}

// DisclaimerAccepted reports whether the user has acknowledged the
// educational-use disclaimer.
func (s *UserService) DisclaimerAccepted(ctx context.Context, username string) (bool, error) {
	var accepted bool
	err := store.GetJSON(ctx, s.store, username, store.KeyDisclaimerAccepted, &accepted)
	if errors.Is(err, store.ErrNoDocument) || errors.Is(err, apperrors.ErrStorage) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return accepted, nil
}

// AcceptDisclaimer records the disclaimer acknowledgement.
func (s *UserService) AcceptDisclaimer(ctx context.Context, username string) error {
	return store.SetJSON(ctx, s.store, username, store.KeyDisclaimerAccepted, true)
}

func (s *UserService) lookup(ctx context.Context, username string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT username, password_hash, reminder, status, trial_started_at, created_at
		FROM users WHERE username = ?`, username)

	var user models.User
	var trialStarted, created string
	err := row.Scan(&user.Username, &user.PasswordHash, &user.Reminder, &user.Status, &trialStarted, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("user %s", username)
	}
	if err != nil {
		return nil, apperrors.Storagef("lookup user: %v", err)
	}

	// Unparseable dates stay zero; the trial gate treats that as expired.
	user.TrialStartedAt, _ = time.Parse(time.RFC3339, trialStarted)
	user.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &user, nil
}
