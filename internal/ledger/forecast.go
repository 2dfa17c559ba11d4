package ledger

import (
	"sort"
	"time"

	"github.com/Veraticus/swipes/internal/model"
)

// ForecastStatus describes which kind of answer a forecast carries.
type ForecastStatus string

const (
	// StatusInsufficientData means too few distinct spending days to extrapolate.
	StatusInsufficientData ForecastStatus = "insufficient_data"
	// StatusNoDepletionRisk means average spend is not positive, so the balance never drains.
	StatusNoDepletionRisk ForecastStatus = "no_depletion_risk"
	// StatusDepletes means the projection reaches zero within the horizon.
	StatusDepletes ForecastStatus = "depletes"
	// StatusBeyondHorizon means the horizon cap was hit before the projection reached zero.
	StatusBeyondHorizon ForecastStatus = "beyond_horizon"
)

const dayKeyLayout = "2006-01-02"

// Forecast defaults.
const (
	DefaultMinSpendingDays = 3
	DefaultHorizonDays     = 3650
)

// PurchasePoint is the minimum a forecast needs from a purchase.
type PurchasePoint struct {
	Date  time.Time
	Total float64
}

// BalancePoint is one day of a balance series.
type BalancePoint struct {
	Date    time.Time
	Balance float64
}

// ForecastOptions tunes ComputeForecast.
type ForecastOptions struct {
	Location        *time.Location
	MinSpendingDays int
	HorizonDays     int
}

// DefaultForecastOptions returns the three-day gate and ten-year horizon in local time.
func DefaultForecastOptions() ForecastOptions {
	return ForecastOptions{
		Location:        time.Local,
		MinSpendingDays: DefaultMinSpendingDays,
		HorizonDays:     DefaultHorizonDays,
	}
}

// Forecast is the reconstructed balance history plus the linear depletion projection.
type Forecast struct {
	ZeroDate         *time.Time
	Status           ForecastStatus
	Actual           []BalancePoint
	Projected        []BalancePoint
	TotalSpent       float64
	AvgDailySpending float64
	SpendingDays     int
}

// PointsFromPurchases adapts stored purchases to forecast input.
func PointsFromPurchases(purchases []model.Purchase) []PurchasePoint {
	points := make([]PurchasePoint, 0, len(purchases))
	for i := range purchases {
		points = append(points, PurchasePoint{Date: purchases[i].Date, Total: purchases[i].Total.Float()})
	}
	return points
}

// ComputeForecast replays purchase history backward from currentBalance and extrapolates the
// average spend per spending day forward until the balance reaches zero.
//
// currentBalance must reflect the balance after every purchase in history. Days whose spend is
// not positive do not count as spending days. The projection starts the day after the last
// spending day, is contiguous, never increases, and stops at its first zero point or after
// HorizonDays days, whichever comes first.
func ComputeForecast(currentBalance float64, history []PurchasePoint, opts ForecastOptions) Forecast {
	opts = normalizeForecastOptions(opts)
	if !finite(currentBalance) || currentBalance < 0 {
		currentBalance = 0
	}

	byDay := make(map[string]float64)
	dayStart := make(map[string]time.Time)
	for _, p := range history {
		if !finite(p.Total) || p.Total <= 0 || p.Date.IsZero() {
			continue
		}
		day := model.StartOfDay(p.Date, opts.Location)
		key := day.Format(dayKeyLayout)
		byDay[key] += p.Total
		dayStart[key] = day
	}

	days := make([]string, 0, len(byDay))
	var totalSpent float64
	for key, spent := range byDay {
		days = append(days, key)
		totalSpent += spent
	}
	sort.Strings(days)

	fc := Forecast{
		TotalSpent:   model.Round2(totalSpent),
		SpendingDays: len(days),
	}

	if len(days) < opts.MinSpendingDays {
		fc.Status = StatusInsufficientData
		return fc
	}

	running := currentBalance + totalSpent
	fc.Actual = make([]BalancePoint, 0, len(days))
	for _, key := range days {
		running -= byDay[key]
		fc.Actual = append(fc.Actual, BalancePoint{Date: dayStart[key], Balance: model.Round2(max(running, 0))})
	}

	avg := totalSpent / float64(len(days))
	fc.AvgDailySpending = model.Round2(avg)
	if avg <= 0 {
		fc.Status = StatusNoDepletionRisk
		return fc
	}

	start := fc.Actual[len(fc.Actual)-1].Balance
	last := dayStart[days[len(days)-1]]
	fc.Projected = make([]BalancePoint, 0, min(opts.HorizonDays, 64))
	for i := 1; i <= opts.HorizonDays; i++ {
		day := last.AddDate(0, 0, i)
		value := model.Round2(start - avg*float64(i))
		if value <= 0 {
			fc.Projected = append(fc.Projected, BalancePoint{Date: day, Balance: 0})
			zero := day
			fc.ZeroDate = &zero
			fc.Status = StatusDepletes
			return fc
		}
		fc.Projected = append(fc.Projected, BalancePoint{Date: day, Balance: value})
	}

	fc.Status = StatusBeyondHorizon
	return fc
}

func normalizeForecastOptions(opts ForecastOptions) ForecastOptions {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.MinSpendingDays <= 0 {
		opts.MinSpendingDays = DefaultMinSpendingDays
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = DefaultHorizonDays
	}
	return opts
}
