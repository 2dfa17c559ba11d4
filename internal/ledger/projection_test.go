package ledger

import (
	"testing"
	"time"

	"github.com/Veraticus/swipes/internal/model"
	"github.com/stretchr/testify/assert"
)

func sub(price float64, qty int, status model.SubscriptionStatus) model.Subscription {
	return model.Subscription{
		Status:   status,
		Quantity: qty,
		Item:     model.CatalogItem{Name: "item", Price: model.Money(price)},
	}
}

func TestProjectWithWeeks_Scenario(t *testing.T) {
	subs := []model.Subscription{sub(3.50, 2, model.SubscriptionActive)}

	proj := ProjectWithWeeks(subs, 100, 2)

	assert.InDelta(t, 7.00, proj.WeeklyCost, 1e-9)
	assert.InDelta(t, 14.00, proj.ProjectedMonthlyCost, 1e-9)
	assert.InDelta(t, 86.00, proj.ProjectedBalance, 1e-9)
	assert.Equal(t, 2, proj.WeeksLeft)
	assert.Equal(t, 1, proj.ActiveCount)
	assert.Zero(t, proj.DaysRemaining)
}

func TestProjectSubscriptions_IgnoresEnded(t *testing.T) {
	subs := []model.Subscription{
		sub(3.50, 2, model.SubscriptionActive),
		sub(10, 1, model.SubscriptionEnded),
		sub(1.25, 4, model.SubscriptionActive),
	}

	// September 16th: 14 days left, two weeks.
	proj := ProjectSubscriptions(subs, 20, time.Date(2025, 9, 16, 10, 0, 0, 0, time.UTC))

	assert.InDelta(t, 12.00, proj.WeeklyCost, 1e-9)
	assert.Equal(t, 14, proj.DaysRemaining)
	assert.Equal(t, 2, proj.WeeksLeft)
	assert.InDelta(t, 24.00, proj.ProjectedMonthlyCost, 1e-9)
	assert.InDelta(t, -4.00, proj.ProjectedBalance, 1e-9)
	assert.Equal(t, 2, proj.ActiveCount)
}

func TestProjectSubscriptions_Empty(t *testing.T) {
	proj := ProjectSubscriptions(nil, 55.5, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))

	assert.Zero(t, proj.WeeklyCost)
	assert.Zero(t, proj.ProjectedMonthlyCost)
	assert.InDelta(t, 55.5, proj.ProjectedBalance, 1e-9)
}

func TestWeeksLeftInMonth(t *testing.T) {
	tests := []struct {
		date     time.Time
		name     string
		wantDays int
		want     int
	}{
		{name: "last day of month", date: time.Date(2025, 9, 30, 12, 0, 0, 0, time.UTC), wantDays: 0, want: 0},
		{name: "one day left", date: time.Date(2025, 9, 29, 12, 0, 0, 0, time.UTC), wantDays: 1, want: 1},
		{name: "exactly one week", date: time.Date(2025, 9, 23, 12, 0, 0, 0, time.UTC), wantDays: 7, want: 1},
		{name: "eight days", date: time.Date(2025, 9, 22, 12, 0, 0, 0, time.UTC), wantDays: 8, want: 2},
		{name: "first of a long month", date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), wantDays: 30, want: 5},
		{name: "leap february", date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), wantDays: 28, want: 4},
		{name: "december rolls into next year", date: time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC), wantDays: 11, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantDays, DaysRemainingInMonth(tt.date))
			assert.Equal(t, tt.want, WeeksLeftInMonth(tt.date))
		})
	}
}
