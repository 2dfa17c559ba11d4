// Package storage provides the data persistence layer for swipes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/Veraticus/swipes/internal/service"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidLimit     = errors.New("limit cannot be negative")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateProfile(profile *model.UserProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return nil
}

func validatePurchase(purchase *model.Purchase) error {
	if purchase == nil {
		return fmt.Errorf("%w: purchase", ErrNilParameter)
	}
	if err := purchase.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return nil
}

func validateSubscription(sub *model.Subscription) error {
	if sub == nil {
		return fmt.Errorf("%w: subscription", ErrNilParameter)
	}
	if err := sub.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return nil
}

func validateBalanceUpdate(update service.BalanceUpdate) error {
	if err := validateString(update.UserID, "userID"); err != nil {
		return err
	}
	if err := validateString(update.PaymentTypeID, "paymentTypeID"); err != nil {
		return err
	}
	if update.NewBalance < 0 {
		return common.Validationf("balance %s cannot go below zero (%.2f)", update.PaymentTypeID, update.NewBalance)
	}
	if update.CurrentStreak < 0 || update.LongestStreak < update.CurrentStreak {
		return common.Validationf("streak counters current=%d longest=%d", update.CurrentStreak, update.LongestStreak)
	}
	return nil
}

func validateFilter(filter service.PurchaseFilter) error {
	if filter.Limit < 0 {
		return ErrInvalidLimit
	}
	if filter.Since != nil && filter.Until != nil && filter.Until.Before(*filter.Since) {
		return fmt.Errorf("%w: until %v is before since %v", ErrInvalidDateRange, *filter.Until, *filter.Since)
	}
	return nil
}

func validateLeaderboardEntry(entry model.LeaderboardEntry) error {
	if err := validateString(entry.UserID, "userID"); err != nil {
		return err
	}
	if entry.CurrentStreak < 0 || entry.LongestStreak < entry.CurrentStreak {
		return common.Validationf("leaderboard streaks current=%d longest=%d", entry.CurrentStreak, entry.LongestStreak)
	}
	return nil
}

func validateCatalogItems(items []model.CatalogItem) error {
	if items == nil {
		return fmt.Errorf("%w: items", ErrNilParameter)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: items", ErrEmptySlice)
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("item at index %d: %w: name", i, ErrEmptyString)
		}
		if item.Price < 0 || item.SalePrice < 0 {
			return common.Validationf("item %q has a negative price", item.Name)
		}
	}
	return nil
}
