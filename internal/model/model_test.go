package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() UserProfile {
	last := time.Date(2025, 9, 14, 18, 30, 0, 0, time.UTC)
	return UserProfile{
		ID:          "user-1",
		DisplayName: "Jordan",
		PhotoURL:    "https://example.com/a.png",
		Tier:        "sophomore",
		BalanceTypes: []BalanceType{
			{ID: "dining", Label: "Dining Dollars", Unit: UnitMoney},
			{ID: "swipes", Label: "Meal Swipes", Unit: UnitCount, WeeklyReset: true, ResetDay: time.Sunday, WeeklyAllowance: 14},
		},
		Balances:         Balances{"dining": 412.37, "swipes": 9},
		CurrentStreak:    3,
		LongestStreak:    8,
		LastLogDate:      &last,
		LeaderboardOptIn: true,
		CreatedAt:        time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC),
		UpdatedAt:        last,
	}
}

func TestUserProfile_RoundTrip(t *testing.T) {
	profile := sampleProfile()

	data, err := json.Marshal(&profile)
	require.NoError(t, err)

	var decoded UserProfile
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, profile, decoded)
}

func TestPurchase_RoundTrip(t *testing.T) {
	purchase := Purchase{
		ID:            "p-1",
		UserID:        "user-1",
		PaymentTypeID: "dining",
		Store:         "Campus Market",
		Date:          time.Date(2025, 9, 15, 12, 5, 0, 0, time.UTC),
		Items: []LineItem{
			{Name: "Sparkling Water 12pk", Quantity: 1, Category: "Drinks"},
			{Name: "Granola Bar", Quantity: 3, Category: "Snacks"},
		},
		Total: 11.49,
	}

	data, err := json.Marshal(&purchase)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total":11.49`)

	var decoded Purchase
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, purchase, decoded)
}

func TestSubscription_RoundTrip(t *testing.T) {
	ended := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	sub := Subscription{
		ID:        "s-1",
		UserID:    "user-1",
		Status:    SubscriptionEnded,
		StartDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   &ended,
		Quantity:  2,
		Item:      CatalogItem{Name: "Cold Brew", Price: 4.25, SalePrice: 3.5, Category: "Drinks", Glyph: "☕"},
	}

	data, err := json.Marshal(&sub)
	require.NoError(t, err)

	var decoded Subscription
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sub, decoded)
}

func TestMoney_MarshalRoundsToCents(t *testing.T) {
	data, err := json.Marshal(Balances{"dining": 10.126, "bonus": 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bonus":2.00,"dining":10.13}`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte("3.14159"), &m))
	assert.Equal(t, Money(3.14), m)
	assert.Equal(t, "$3.14", m.String())
}

func TestUserProfile_Validate(t *testing.T) {
	tests := []struct {
		mutate  func(*UserProfile)
		wantErr error
		name    string
	}{
		{name: "valid", mutate: func(*UserProfile) {}},
		{
			name:    "negative balance",
			mutate:  func(p *UserProfile) { p.Balances["dining"] = -0.01 },
			wantErr: ErrNegativeBalance,
		},
		{
			name:    "longest below current",
			mutate:  func(p *UserProfile) { p.LongestStreak = 2 },
			wantErr: ErrStreakInvariant,
		},
		{
			name:    "balance without descriptor",
			mutate:  func(p *UserProfile) { p.Balances["credits"] = 5 },
			wantErr: ErrUnknownBalance,
		},
		{
			name:    "bad unit",
			mutate:  func(p *UserProfile) { p.BalanceTypes[0].Unit = "euros" },
			wantErr: ErrInvalidUnitKind,
		},
		{
			name:    "missing id",
			mutate:  func(p *UserProfile) { p.ID = "" },
			wantErr: ErrMissingIdentifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := sampleProfile()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubscription_EndAndValidate(t *testing.T) {
	sub := Subscription{
		ID:       "s-1",
		UserID:   "user-1",
		Status:   SubscriptionActive,
		Quantity: 2,
		Item:     CatalogItem{Name: "Bagel", Price: 3.5},
	}
	require.NoError(t, sub.Validate())
	assert.InDelta(t, 7.0, sub.WeeklyCost(), 1e-9)

	at := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, sub.End(at))
	assert.Equal(t, SubscriptionEnded, sub.Status)
	require.NotNil(t, sub.EndDate)
	assert.Equal(t, at, *sub.EndDate)
	require.NoError(t, sub.Validate())

	assert.ErrorIs(t, sub.End(at), ErrSubscriptionState)

	sub.EndDate = nil
	assert.ErrorIs(t, sub.Validate(), ErrSubscriptionState)
}

func TestPurchase_Validate(t *testing.T) {
	base := Purchase{
		UserID:        "u",
		PaymentTypeID: "dining",
		Date:          time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
		Items:         []LineItem{{Name: "Coffee", Quantity: 1}},
		Total:         2.5,
	}
	require.NoError(t, base.Validate())

	noItems := base
	noItems.Items = nil
	assert.ErrorIs(t, noItems.Validate(), ErrEmptyPurchase)

	zeroQty := base
	zeroQty.Items = []LineItem{{Name: "Coffee", Quantity: 0}}
	assert.ErrorIs(t, zeroQty.Validate(), ErrInvalidQuantity)

	negative := base
	negative.Total = -1
	assert.ErrorIs(t, negative.Validate(), ErrInvalidTotal)

	noDate := base
	noDate.Date = time.Time{}
	assert.ErrorIs(t, noDate.Validate(), ErrMissingDate)
}

func TestCatalogItem_EffectivePrice(t *testing.T) {
	assert.InDelta(t, 4.25, CatalogItem{Price: 4.25}.EffectivePrice(), 1e-9)
	assert.InDelta(t, 3.5, CatalogItem{Price: 4.25, SalePrice: 3.5}.EffectivePrice(), 1e-9)
}
