package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/ledger"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/Veraticus/swipes/internal/service"
)

// PurchaseRequest is a purchase as submitted by a user.
type PurchaseRequest struct {
	// Date defaults to now and may not be later than now.
	Date             time.Time
	UserID           string
	PaymentTypeID    string
	Store            string
	IdempotencyToken string
	Items            []model.LineItem
	Total            float64
}

// PurchaseResult describes the committed purchase and the profile after it.
type PurchaseResult struct {
	Purchase *model.Purchase
	Profile  *model.UserProfile
	// ResetBalances lists weekly balances restored before the debit.
	ResetBalances []string
	NewBalance    float64
	// Replayed is true when the idempotency token matched an earlier purchase
	// and nothing was debited.
	Replayed bool
}

// LogPurchase debits the payment balance, advances the streak and appends the purchase
// in one transaction while holding the user's lock.
func (e *Engine) LogPurchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	purchase, err := e.buildPurchase(req)
	if err != nil {
		return nil, err
	}

	var result *PurchaseResult
	err = e.withUserLock(ctx, purchase.UserID, func() error {
		err := e.inTx(ctx, func(tx service.Transaction) error {
			var txErr error
			result, txErr = e.logPurchaseTx(ctx, tx, purchase)
			return txErr
		})
		if err != nil {
			return err
		}
		// Still under the lock, so an opt-out cannot land between the commit and the publish.
		if !result.Replayed && result.Profile.LeaderboardOptIn {
			e.publishLeaderboard(ctx, result.Profile)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Replayed {
		e.logReplay(result)
		return result, nil
	}

	common.LogInfo("Purchase committed", common.Fields{
		"user_id":      purchase.UserID,
		"purchase_id":  result.Purchase.ID,
		"payment_type": purchase.PaymentTypeID,
		"total":        purchase.Total.Float(),
		"balance":      result.NewBalance,
		"streak":       result.Profile.CurrentStreak,
	})

	return result, nil
}

func (e *Engine) logPurchaseTx(ctx context.Context, tx service.Transaction, purchase *model.Purchase) (*PurchaseResult, error) {
	if purchase.IdempotencyToken != "" {
		existing, err := tx.GetPurchaseByToken(ctx, purchase.UserID, purchase.IdempotencyToken)
		switch {
		case err == nil:
			return e.replayResult(ctx, tx, existing)
		case !errors.Is(err, common.ErrNotFound):
			return nil, fmt.Errorf("failed to check idempotency token: %w", err)
		}
	}

	profile, err := tx.GetUserProfile(ctx, purchase.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	now := e.now()
	resets := ledger.ApplyWeeklyResets(profile, now, e.config.Location)

	balance, err := profile.Balance(purchase.PaymentTypeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	newBalance, err := ledger.Debit(balance, purchase.Total.Float())
	if err != nil {
		return nil, err
	}

	// The streak counts the day the purchase is logged, not the date it is filed under.
	streak := ledger.UpdateStreak(ledger.StreakFromProfile(profile), now, e.config.Location)

	stored, err := tx.AppendPurchase(ctx, purchase)
	if err != nil {
		if errors.Is(err, common.ErrDuplicatePurchase) && stored != nil {
			return e.replayResult(ctx, tx, stored)
		}
		return nil, fmt.Errorf("failed to append purchase: %w", err)
	}

	// Weekly resets and their marker land first; the debit and streak then apply on top.
	profile.UpdatedAt = now
	if err := tx.SaveUserProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	if err := tx.UpdateBalanceAndStreak(ctx, service.BalanceUpdate{
		UserID:        purchase.UserID,
		PaymentTypeID: purchase.PaymentTypeID,
		NewBalance:    newBalance,
		CurrentStreak: streak.Current,
		LongestStreak: streak.Longest,
		LastLogDate:   streak.LastLogDate,
	}); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	if profile.Balances == nil {
		profile.Balances = make(model.Balances)
	}
	profile.Balances[purchase.PaymentTypeID] = newBalance
	profile.CurrentStreak = streak.Current
	profile.LongestStreak = streak.Longest
	profile.LastLogDate = streak.LastLogDate

	return &PurchaseResult{
		Purchase:      stored,
		Profile:       profile,
		ResetBalances: resets,
		NewBalance:    newBalance,
	}, nil
}

func (e *Engine) replayResult(ctx context.Context, tx service.Transaction, existing *model.Purchase) (*PurchaseResult, error) {
	profile, err := tx.GetUserProfile(ctx, existing.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &PurchaseResult{
		Purchase:   existing,
		Profile:    profile,
		NewBalance: profile.Balances[existing.PaymentTypeID],
		Replayed:   true,
	}, nil
}

func (e *Engine) logReplay(result *PurchaseResult) {
	common.LogInfo("Purchase replayed from idempotency token", common.Fields{
		"user_id":     result.Purchase.UserID,
		"purchase_id": result.Purchase.ID,
		"token":       result.Purchase.IdempotencyToken,
	})
}

// buildPurchase normalizes and validates a request. Items typed without a category are
// classified by name.
func (e *Engine) buildPurchase(req PurchaseRequest) (*model.Purchase, error) {
	now := e.now()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	if date.After(now) {
		return nil, fmt.Errorf("%w: purchase date %s is in the future", common.ErrValidation, date.Format(time.RFC3339))
	}

	items := make([]model.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		item.Name = strings.TrimSpace(item.Name)
		if strings.TrimSpace(item.Category) == "" && item.Name != "" {
			item.Category = e.classifier.CategoryFor(item.Name)
		}
		items = append(items, item)
	}

	purchase := &model.Purchase{
		Date:             date,
		UserID:           strings.TrimSpace(req.UserID),
		PaymentTypeID:    strings.TrimSpace(req.PaymentTypeID),
		Store:            strings.TrimSpace(req.Store),
		IdempotencyToken: strings.TrimSpace(req.IdempotencyToken),
		Items:            items,
		Total:            model.Money(model.Round2(req.Total)),
	}
	if err := purchase.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return purchase, nil
}

// History returns a user's purchases.
func (e *Engine) History(ctx context.Context, userID string, filter service.PurchaseFilter) ([]model.Purchase, error) {
	return e.storage.ListPurchaseHistory(ctx, userID, filter)
}
