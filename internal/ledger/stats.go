package ledger

import (
	"sort"
	"time"

	"github.com/Veraticus/swipes/internal/model"
)

// DayTotal is the spend of one calendar day.
type DayTotal struct {
	Date      time.Time
	Total     float64
	Purchases int
}

// CategoryTotal is the spend attributed to one item category.
type CategoryTotal struct {
	Category string
	Amount   float64
	Items    int
}

// DailyTotals buckets purchases by calendar day in loc, oldest first. Only days with purchases
// appear; FillDays pads the gaps.
func DailyTotals(purchases []model.Purchase, loc *time.Location) []DayTotal {
	dayMap := make(map[string]*DayTotal)
	for i := range purchases {
		day := purchases[i].Day(loc)
		key := day.Format(dayKeyLayout)
		dt, ok := dayMap[key]
		if !ok {
			dt = &DayTotal{Date: day}
			dayMap[key] = dt
		}
		dt.Total += purchases[i].Total.Float()
		dt.Purchases++
	}

	out := make([]DayTotal, 0, len(dayMap))
	for _, dt := range dayMap {
		dt.Total = model.Round2(dt.Total)
		out = append(out, *dt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// FillDays returns one entry per calendar day from since to until inclusive, using zero for
// days without spending.
func FillDays(totals []DayTotal, since, until time.Time, loc *time.Location) []DayTotal {
	known := make(map[string]DayTotal, len(totals))
	for _, dt := range totals {
		known[dt.Date.Format(dayKeyLayout)] = dt
	}

	var out []DayTotal
	end := model.StartOfDay(until, loc)
	for day := model.StartOfDay(since, loc); !day.After(end); day = day.AddDate(0, 0, 1) {
		if dt, ok := known[day.Format(dayKeyLayout)]; ok {
			out = append(out, dt)
			continue
		}
		out = append(out, DayTotal{Date: day})
	}
	return out
}

// SpendingByCategory attributes each purchase total to its line item categories in proportion
// to quantity, largest category first. Items without a category count as "Miscellaneous".
func SpendingByCategory(purchases []model.Purchase) []CategoryTotal {
	byCategory := make(map[string]*CategoryTotal)
	var order []string

	for i := range purchases {
		units := 0
		for _, item := range purchases[i].Items {
			units += item.Quantity
		}
		if units <= 0 {
			continue
		}
		perUnit := purchases[i].Total.Float() / float64(units)

		for _, item := range purchases[i].Items {
			name := item.Category
			if name == "" {
				name = "Miscellaneous"
			}
			ct, ok := byCategory[name]
			if !ok {
				ct = &CategoryTotal{Category: name}
				byCategory[name] = ct
				order = append(order, name)
			}
			ct.Amount += perUnit * float64(item.Quantity)
			ct.Items += item.Quantity
		}
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, name := range order {
		ct := byCategory[name]
		ct.Amount = model.Round2(ct.Amount)
		out = append(out, *ct)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}
