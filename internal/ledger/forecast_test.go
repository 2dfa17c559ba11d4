package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcOpts() ForecastOptions {
	opts := DefaultForecastOptions()
	opts.Location = time.UTC
	return opts
}

func TestComputeForecast_Scenario(t *testing.T) {
	history := []PurchasePoint{
		{Date: day(2025, 9, 1, 12), Total: 8},
		{Date: day(2025, 9, 1, 18), Total: 4},
		{Date: day(2025, 9, 3, 9), Total: 10},
		{Date: day(2025, 9, 4, 20), Total: 8},
	}

	fc := ComputeForecast(42, history, utcOpts())

	require.Equal(t, StatusDepletes, fc.Status)
	assert.Equal(t, 3, fc.SpendingDays)
	assert.InDelta(t, 30, fc.TotalSpent, 1e-9)
	assert.InDelta(t, 10, fc.AvgDailySpending, 1e-9)

	require.Len(t, fc.Actual, 3)
	assert.Equal(t, day(2025, 9, 1, 0), fc.Actual[0].Date)
	assert.InDelta(t, 60, fc.Actual[0].Balance, 1e-9)
	assert.InDelta(t, 50, fc.Actual[1].Balance, 1e-9)
	assert.InDelta(t, 42, fc.Actual[2].Balance, 1e-9)

	require.NotNil(t, fc.ZeroDate)
	assert.Equal(t, day(2025, 9, 9, 0), *fc.ZeroDate)

	want := []float64{32, 22, 12, 2, 0}
	require.Len(t, fc.Projected, len(want))
	for i, w := range want {
		assert.InDelta(t, w, fc.Projected[i].Balance, 1e-9)
		assert.Equal(t, day(2025, 9, 5+i, 0), fc.Projected[i].Date)
	}
}

func TestComputeForecast_Gate(t *testing.T) {
	twoDays := []PurchasePoint{
		{Date: day(2025, 9, 1, 12), Total: 5},
		{Date: day(2025, 9, 1, 13), Total: 5},
		{Date: day(2025, 9, 2, 12), Total: 5},
	}
	fc := ComputeForecast(100, twoDays, utcOpts())
	assert.Equal(t, StatusInsufficientData, fc.Status)
	assert.Empty(t, fc.Actual)
	assert.Empty(t, fc.Projected)
	assert.Nil(t, fc.ZeroDate)
	assert.Equal(t, 2, fc.SpendingDays)

	threeDays := append(twoDays, PurchasePoint{Date: day(2025, 9, 5, 12), Total: 5})
	fc = ComputeForecast(100, threeDays, utcOpts())
	assert.Equal(t, StatusDepletes, fc.Status)
	assert.Len(t, fc.Actual, 3)
	assert.NotEmpty(t, fc.Projected)
}

func TestComputeForecast_ZeroSpendDaysDoNotCount(t *testing.T) {
	history := []PurchasePoint{
		{Date: day(2025, 9, 1, 12), Total: 5},
		{Date: day(2025, 9, 2, 12), Total: 0},
		{Date: day(2025, 9, 3, 12), Total: 5},
	}
	fc := ComputeForecast(10, history, utcOpts())
	assert.Equal(t, StatusInsufficientData, fc.Status)
	assert.Equal(t, 2, fc.SpendingDays)
}

func TestComputeForecast_EmptyHistory(t *testing.T) {
	fc := ComputeForecast(0, nil, ForecastOptions{})
	assert.Equal(t, StatusInsufficientData, fc.Status)
	assert.Zero(t, fc.TotalSpent)
	assert.Zero(t, fc.SpendingDays)
}

func TestComputeForecast_SeriesShape(t *testing.T) {
	history := []PurchasePoint{
		{Date: day(2025, 9, 1, 12), Total: 3.33},
		{Date: day(2025, 9, 7, 12), Total: 1.17},
		{Date: day(2025, 9, 20, 12), Total: 7.01},
	}
	fc := ComputeForecast(123.45, history, utcOpts())
	require.Equal(t, StatusDepletes, fc.Status)

	prev := fc.Actual[len(fc.Actual)-1]
	for _, p := range fc.Projected {
		assert.Equal(t, prev.Date.AddDate(0, 0, 1), p.Date, "projection must be contiguous")
		assert.LessOrEqual(t, p.Balance, prev.Balance)
		assert.GreaterOrEqual(t, p.Balance, 0.0)
		prev = p
	}
	last := fc.Projected[len(fc.Projected)-1]
	assert.Zero(t, last.Balance)
	assert.Equal(t, last.Date, *fc.ZeroDate)
	for _, p := range fc.Projected[:len(fc.Projected)-1] {
		assert.Greater(t, p.Balance, 0.0)
	}
}

func TestComputeForecast_HorizonCap(t *testing.T) {
	history := []PurchasePoint{
		{Date: day(2025, 9, 1, 12), Total: 0.01},
		{Date: day(2025, 9, 2, 12), Total: 0.01},
		{Date: day(2025, 9, 3, 12), Total: 0.01},
	}
	opts := utcOpts()
	opts.HorizonDays = 30

	fc := ComputeForecast(1000, history, opts)

	assert.Equal(t, StatusBeyondHorizon, fc.Status)
	assert.Nil(t, fc.ZeroDate)
	assert.Len(t, fc.Projected, 30)

	fc = ComputeForecast(1e9, history, utcOpts())
	assert.Equal(t, StatusBeyondHorizon, fc.Status)
	assert.Len(t, fc.Projected, DefaultHorizonDays)
}

func TestComputeForecast_ZeroBalance(t *testing.T) {
	history := []PurchasePoint{
		{Date: day(2025, 9, 1, 12), Total: 2},
		{Date: day(2025, 9, 2, 12), Total: 2},
		{Date: day(2025, 9, 3, 12), Total: 2},
	}
	fc := ComputeForecast(0, history, utcOpts())

	require.Equal(t, StatusDepletes, fc.Status)
	require.Len(t, fc.Projected, 1)
	assert.Equal(t, day(2025, 9, 4, 0), *fc.ZeroDate)
}
