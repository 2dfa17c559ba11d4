package engine

import (
	"context"
	"fmt"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/ledger"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/Veraticus/swipes/internal/service"
)

// Dashboard is the read model behind the home screen for one balance type.
type Dashboard struct {
	Profile       *model.UserProfile
	BalanceType   model.BalanceType
	Projection    ledger.SubscriptionProjection
	Forecast      ledger.Forecast
	Categories    []ledger.CategoryTotal
	Daily         []ledger.DayTotal
	Subscriptions []model.Subscription
	Balance       float64
	ActiveStreak  int
}

// Dashboard assembles balances, streak, subscription projection, depletion forecast and
// recent spending for the given balance type. An empty paymentTypeID picks the first
// balance type on the plan.
func (e *Engine) Dashboard(ctx context.Context, userID, paymentTypeID string) (*Dashboard, error) {
	profile, err := e.storage.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if paymentTypeID == "" {
		if len(profile.BalanceTypes) == 0 {
			return nil, fmt.Errorf("%w: user %s has no balance types", common.ErrValidation, userID)
		}
		paymentTypeID = profile.BalanceTypes[0].ID
	}
	bt, ok := profile.BalanceType(paymentTypeID)
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", common.ErrValidation, model.ErrUnknownBalance, paymentTypeID)
	}
	balance := profile.Balances[paymentTypeID]

	history, err := e.storage.ListPurchaseHistory(ctx, userID, service.PurchaseFilter{
		PaymentTypeID: paymentTypeID,
		Order:         service.OrderDateAsc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase history: %w", err)
	}

	subs, err := e.storage.ListActiveSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	now := e.now()
	since := model.StartOfDay(now, e.config.Location).AddDate(0, 0, -(e.config.HistoryDays - 1))
	var recent []model.Purchase
	for i := range history {
		if !history[i].Date.Before(since) {
			recent = append(recent, history[i])
		}
	}

	return &Dashboard{
		Profile:       profile,
		BalanceType:   bt,
		Balance:       balance,
		ActiveStreak:  ledger.ActiveStreak(ledger.StreakFromProfile(profile), now, e.config.Location),
		Projection:    ledger.ProjectSubscriptions(subs, balance, now),
		Forecast:      ledger.ComputeForecast(balance, ledger.PointsFromPurchases(history), e.config.Forecast),
		Categories:    ledger.SpendingByCategory(history),
		Daily:         ledger.FillDays(ledger.DailyTotals(recent, e.config.Location), since, now, e.config.Location),
		Subscriptions: subs,
	}, nil
}
