package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/swipes/internal/engine"
	"github.com/Veraticus/swipes/internal/ledger"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/stretchr/testify/assert"
)

var (
	dining = model.BalanceType{ID: "dining", Label: "Dining Dollars", Unit: model.UnitMoney}
	swipes = model.BalanceType{ID: "swipes", Label: "Meal Swipes", Unit: model.UnitCount, WeeklyReset: true, WeeklyAllowance: 14, ResetDay: time.Monday}
)

func sampleProfile() *model.UserProfile {
	return &model.UserProfile{
		ID:            "u1",
		DisplayName:   "Ada",
		Tier:          "first-year",
		BalanceTypes:  []model.BalanceType{swipes, dining},
		Balances:      model.Balances{"swipes": 9, "dining": 42.5},
		CurrentStreak: 3,
		LongestStreak: 8,
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$4.20", FormatAmount(dining, 4.2))
	assert.Equal(t, "14", FormatAmount(swipes, 14))
	assert.Equal(t, "2.5", FormatAmount(swipes, 2.5))
}

func TestFormatter_FormatBalances(t *testing.T) {
	f := NewFormatter(time.UTC)

	out := f.FormatBalances(sampleProfile())
	for _, want := range []string{"Ada", "first-year", "Meal Swipes", "9", "resets to 14 every Monday", "Dining Dollars", "$42.50", "Streak: 3 day(s), longest 8"} {
		assert.Contains(t, out, want)
	}

	assert.Contains(t, f.FormatBalances(nil), "No profile available")
}

func TestFormatter_FormatPurchaseResult(t *testing.T) {
	f := NewFormatter(time.UTC)
	profile := sampleProfile()
	purchase := &model.Purchase{ID: "p1", PaymentTypeID: "dining", Store: "Campus Market", Total: 4.2}

	tests := []struct {
		name     string
		result   *engine.PurchaseResult
		contains []string
	}{
		{
			name:     "new purchase",
			result:   &engine.PurchaseResult{Purchase: purchase, Profile: profile, NewBalance: 38.3},
			contains: []string{"Logged $4.20 at Campus Market", "Dining Dollars remaining: $38.30", "Streak: 3 (longest 8)"},
		},
		{
			name:     "replay",
			result:   &engine.PurchaseResult{Purchase: purchase, Profile: profile, NewBalance: 38.3, Replayed: true},
			contains: []string{"Already recorded as p1", "nothing was charged"},
		},
		{
			name:     "with reset",
			result:   &engine.PurchaseResult{Purchase: purchase, Profile: profile, ResetBalances: []string{"swipes"}},
			contains: []string{"Weekly reset applied to swipes"},
		},
		{
			name:     "nil",
			result:   nil,
			contains: []string{"No purchase recorded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := f.FormatPurchaseResult(tt.result)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestFormatter_FormatDashboard(t *testing.T) {
	f := NewFormatter(time.UTC)
	zero := time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		forecast    ledger.Forecast
		subs        []model.Subscription
		contains    []string
		notContains []string
	}{
		{
			name: "depletes",
			forecast: ledger.Forecast{
				Status: ledger.StatusDepletes, ZeroDate: &zero, AvgDailySpending: 10, SpendingDays: 3,
				Projected: make([]ledger.BalancePoint, 5),
			},
			contains:    []string{"Runs out around Sun Oct 19 at $10.00/day over 3 spending day(s)"},
			notContains: []string{"Subscriptions"},
		},
		{
			name:     "insufficient data",
			forecast: ledger.Forecast{Status: ledger.StatusInsufficientData, SpendingDays: 1},
			contains: []string{"Not enough history yet (1 spending day(s)"},
		},
		{
			name:     "no risk",
			forecast: ledger.Forecast{Status: ledger.StatusNoDepletionRisk},
			contains: []string{"No depletion risk"},
		},
		{
			name:     "beyond horizon",
			forecast: ledger.Forecast{Status: ledger.StatusBeyondHorizon, AvgDailySpending: 0.01},
			contains: []string{"beyond the forecast horizon at $0.01/day"},
		},
		{
			name:     "with subscriptions",
			forecast: ledger.Forecast{Status: ledger.StatusNoDepletionRisk},
			subs:     []model.Subscription{{ID: "s1"}},
			contains: []string{"Subscriptions", "$7.00/week × 3 week(s) left = $21.00", "balance after: $21.00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dash := &engine.Dashboard{
				Profile:       sampleProfile(),
				BalanceType:   dining,
				Balance:       42,
				ActiveStreak:  3,
				Forecast:      tt.forecast,
				Subscriptions: tt.subs,
				Projection:    ledger.SubscriptionProjection{WeeklyCost: 7, WeeksLeft: 3, ProjectedMonthlyCost: 21, ProjectedBalance: 21},
				Categories:    []ledger.CategoryTotal{{Category: "Drinks", Amount: 15}, {Category: "Bakery", Amount: 5}},
				Daily: []ledger.DayTotal{
					{Date: time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC), Total: 10},
					{Date: time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)},
					{Date: time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC), Total: 5},
				},
			}

			out := f.FormatDashboard(dash)
			assert.Contains(t, out, "Ada · Dining Dollars")
			assert.Contains(t, out, "Balance: $42.00")
			assert.Contains(t, out, "Last 3 days")
			assert.Contains(t, out, "Mon Oct 13 → Wed Oct 15")
			assert.Contains(t, out, "Drinks")
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, out, unwanted)
			}
		})
	}

	assert.Contains(t, f.FormatDashboard(nil), "No dashboard available")
}

func TestSparkline(t *testing.T) {
	days := []ledger.DayTotal{{Total: 8}, {Total: 0}, {Total: 4}, {Total: 1}}
	assert.Equal(t, "█ ▄▁", Sparkline(days))
	assert.Equal(t, "  ", Sparkline([]ledger.DayTotal{{}, {}}))
}

func TestFormatter_Tables(t *testing.T) {
	f := NewFormatter(time.UTC)
	at := time.Date(2025, 10, 15, 12, 30, 0, 0, time.UTC)

	t.Run("history", func(t *testing.T) {
		out := f.FormatHistory([]model.Purchase{{
			Date: at, Store: "Campus Market", PaymentTypeID: "dining", Total: 6.5,
			Items: []model.LineItem{{Name: "Bagel", Quantity: 2}, {Name: "Coffee", Quantity: 1}},
		}})
		for _, want := range []string{"Date", "2025-10-15 12:30", "Campus Market", "dining", "$6.50", "2× Bagel, Coffee"} {
			assert.Contains(t, out, want)
		}
		assert.Contains(t, f.FormatHistory(nil), "No purchases yet")
	})

	t.Run("subscriptions", func(t *testing.T) {
		out := f.FormatSubscriptions([]model.Subscription{{
			ID: "s1", Status: model.SubscriptionActive, StartDate: at, Quantity: 2,
			Item: model.CatalogItem{Name: "Oat Milk", Glyph: "🥛", Price: 3.5},
		}})
		for _, want := range []string{"s1", "🥛 Oat Milk", "$7.00", "active", "2025-10-15"} {
			assert.Contains(t, out, want)
		}
		assert.Contains(t, f.FormatSubscriptions(nil), "No subscriptions")
	})

	t.Run("leaderboard", func(t *testing.T) {
		out := f.FormatLeaderboard([]model.LeaderboardEntry{
			{Rank: 1, DisplayName: "Ada", CurrentStreak: 9, LongestStreak: 12},
			{Rank: 2, DisplayName: "Grace", CurrentStreak: 4, LongestStreak: 4},
		})
		assert.Contains(t, out, "Wall of Fame")
		assert.Less(t, strings.Index(out, "Ada"), strings.Index(out, "Grace"))
		assert.Contains(t, f.FormatLeaderboard(nil), "Nobody is on the wall of fame yet")
	})

	t.Run("catalog", func(t *testing.T) {
		out := f.FormatCatalog([]model.CatalogItem{
			{Name: "Cold Brew", Glyph: "☕", Category: "Drinks", Price: 4.5, SalePrice: 3.99},
			{Name: "Bagel", Category: "Bakery", Price: 2},
		})
		for _, want := range []string{"☕ Cold Brew", "$3.99", "(was $4.50)", "Bagel", "$2.00"} {
			assert.Contains(t, out, want)
		}
		assert.Contains(t, f.FormatCatalog(nil), "No matching catalog items")
	})
}
