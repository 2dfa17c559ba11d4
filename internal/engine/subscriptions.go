package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/Veraticus/swipes/internal/service"
)

// StartSubscription subscribes the user to a weekly purchase of qty units of item.
func (e *Engine) StartSubscription(ctx context.Context, userID string, item model.CatalogItem, qty int) (*model.Subscription, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, fmt.Errorf("%w: subscription item needs a name", common.ErrValidation)
	}
	if item.Category == "" {
		e.classifier.Enrich(&item)
	}

	sub := &model.Subscription{
		UserID:    userID,
		Item:      item,
		Quantity:  qty,
		Status:    model.SubscriptionActive,
		StartDate: e.now(),
	}
	if err := sub.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	if _, err := e.storage.GetUserProfile(ctx, userID); err != nil {
		return nil, err
	}
	if err := e.storage.SaveSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	common.LogInfo("Subscription started", common.Fields{
		"user_id":         userID,
		"subscription_id": sub.ID,
		"item":            item.Name,
		"weekly_cost":     sub.WeeklyCost(),
	})
	return sub, nil
}

// EndSubscription marks an active subscription ended as of now.
func (e *Engine) EndSubscription(ctx context.Context, userID, id string) (*model.Subscription, error) {
	var sub *model.Subscription
	err := e.inTx(ctx, func(tx service.Transaction) error {
		var err error
		sub, err = tx.GetSubscription(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := sub.End(e.now()); err != nil {
			if errors.Is(err, model.ErrSubscriptionState) {
				return fmt.Errorf("%w: %w", common.ErrValidation, err)
			}
			return err
		}
		return tx.SaveSubscription(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Subscriptions lists the user's subscriptions, optionally only the active ones.
func (e *Engine) Subscriptions(ctx context.Context, userID string, activeOnly bool) ([]model.Subscription, error) {
	if activeOnly {
		return e.storage.ListActiveSubscriptions(ctx, userID)
	}
	return e.storage.ListSubscriptions(ctx, userID)
}
