package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/swipes/internal/model"
	"github.com/Veraticus/swipes/internal/service"
)

// GetUserProfile retrieves a profile by user id.
func (s *SQLiteStorage) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return s.getUserProfileTx(ctx, s.db, userID)
}

func (s *SQLiteStorage) getUserProfileTx(ctx context.Context, q queryable, userID string) (*model.UserProfile, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT doc FROM profiles WHERE id = ?`, userID).Scan(&doc)
	if err != nil {
		return nil, storeError("get profile "+userID, err)
	}

	var profile model.UserProfile
	if err := json.Unmarshal([]byte(doc), &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", userID, err)
	}
	if profile.Balances == nil {
		profile.Balances = make(model.Balances)
	}
	return &profile, nil
}

// SaveUserProfile creates or replaces a profile document.
func (s *SQLiteStorage) SaveUserProfile(ctx context.Context, profile *model.UserProfile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProfile(profile); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.saveUserProfileTx(ctx, tx, profile)
	})
}

func (s *SQLiteStorage) saveUserProfileTx(ctx context.Context, q queryable, profile *model.UserProfile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = profile.CreatedAt
	}

	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", profile.ID, err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO profiles (id, display_name, doc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			doc = excluded.doc,
			updated_at = excluded.updated_at
	`, profile.ID, profile.DisplayName, string(doc), toMillis(profile.CreatedAt), toMillis(profile.UpdatedAt))
	if err != nil {
		return storeError("save profile "+profile.ID, err)
	}
	return nil
}

// UpdateBalanceAndStreak applies a purchase's debit and streak counters to the stored profile.
func (s *SQLiteStorage) UpdateBalanceAndStreak(ctx context.Context, update service.BalanceUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBalanceUpdate(update); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.updateBalanceAndStreakTx(ctx, tx, update)
	})
}

func (s *SQLiteStorage) updateBalanceAndStreakTx(ctx context.Context, q queryable, update service.BalanceUpdate) error {
	profile, err := s.getUserProfileTx(ctx, q, update.UserID)
	if err != nil {
		return err
	}
	if _, err := profile.Balance(update.PaymentTypeID); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	profile.Balances[update.PaymentTypeID] = model.Round2(update.NewBalance)
	profile.CurrentStreak = update.CurrentStreak
	profile.LongestStreak = update.LongestStreak
	profile.LastLogDate = update.LastLogDate
	profile.UpdatedAt = time.Now()

	if err := validateProfile(profile); err != nil {
		return err
	}
	return s.saveUserProfileTx(ctx, q, profile)
}
