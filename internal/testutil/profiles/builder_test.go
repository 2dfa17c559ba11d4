package profiles

import (
	"testing"
	"time"

	"github.com/Veraticus/swipes/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	last := time.Date(2025, 9, 3, 12, 0, 0, 0, time.UTC)
	b := New("u1").
		WithName("Jordan").
		WithBalance(Dining, 42).
		WithBalanceType(model.BalanceType{ID: Credits, Unit: model.UnitMoney}, 10).
		WithStreak(2, 4, last).
		OptedIn()

	p := b.Build()
	require.NoError(t, p.Validate())
	assert.Equal(t, "Jordan", p.DisplayName)
	assert.InDelta(t, 42, p.Balances[Dining], 0.001)
	assert.InDelta(t, 10, p.Balances[Credits], 0.001)
	assert.Len(t, p.BalanceTypes, 3)
	assert.True(t, p.LeaderboardOptIn)
	require.NotNil(t, p.LastLogDate)
	assert.True(t, p.LastLogDate.Equal(last))

	// Built profiles do not share state with the builder.
	p.Balances[Dining] = 0
	assert.InDelta(t, 42, b.Build().Balances[Dining], 0.001)
}
