package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/swipes/internal/engine"
	"github.com/Veraticus/swipes/internal/ledger"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/charmbracelet/lipgloss"
)

const dateLayout = "Mon Jan 2"

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Formatter renders ledger results for the terminal.
type Formatter struct {
	location *time.Location
	barWidth int
}

// NewFormatter creates a formatter that shows dates in loc.
func NewFormatter(loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{location: loc, barWidth: 30}
}

// FormatAmount renders an amount in the unit of its balance type.
func FormatAmount(bt model.BalanceType, amount float64) string {
	if bt.Unit == model.UnitCount {
		return fmt.Sprintf("%g", model.Round2(amount))
	}
	return model.Money(amount).String()
}

// FormatBalances lists every balance on a profile plus the streak counters.
func (f *Formatter) FormatBalances(p *model.UserProfile) string {
	if p == nil {
		return ErrorStyle.Render("No profile available")
	}

	var b strings.Builder
	b.WriteString(FormatTitle(p.DisplayName + " · " + p.Tier))
	b.WriteString("\n")

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, bt := range p.BalanceTypes {
		label := bt.Label
		if label == "" {
			label = bt.ID
		}
		note := ""
		if bt.WeeklyReset {
			note = SubtleStyle.Render(fmt.Sprintf("resets to %s every %s", FormatAmount(bt, bt.WeeklyAllowance), bt.ResetDay))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", BoldStyle.Render(label), FormatAmount(bt, p.Balances[bt.ID]), note)
	}
	_ = w.Flush()

	fmt.Fprintf(&b, "\n%s Streak: %d day(s), longest %d\n", StreakIcon, p.CurrentStreak, p.LongestStreak)
	return b.String()
}

// FormatPurchaseResult summarizes a logged purchase.
func (f *Formatter) FormatPurchaseResult(r *engine.PurchaseResult) string {
	if r == nil || r.Purchase == nil {
		return ErrorStyle.Render("No purchase recorded")
	}

	bt, _ := r.Profile.BalanceType(r.Purchase.PaymentTypeID)
	var lines []string
	if r.Replayed {
		lines = append(lines, FormatWarning(fmt.Sprintf("Already recorded as %s; nothing was charged", r.Purchase.ID)))
	} else {
		lines = append(lines, FormatSuccess(fmt.Sprintf("Logged %s at %s",
			FormatAmount(bt, r.Purchase.Total.Float()), storeName(r.Purchase.Store))))
	}
	if len(r.ResetBalances) > 0 {
		lines = append(lines, FormatInfo("Weekly reset applied to "+strings.Join(r.ResetBalances, ", ")))
	}
	lines = append(lines,
		fmt.Sprintf("  %s remaining: %s", labelOf(bt), BoldStyle.Render(FormatAmount(bt, r.NewBalance))),
		fmt.Sprintf("  %s Streak: %d (longest %d)", StreakIcon, r.Profile.CurrentStreak, r.Profile.LongestStreak),
	)
	return strings.Join(lines, "\n") + "\n"
}

// FormatDashboard renders the home screen for one balance type.
func (f *Formatter) FormatDashboard(d *engine.Dashboard) string {
	if d == nil || d.Profile == nil {
		return ErrorStyle.Render("No dashboard available")
	}

	sections := []string{
		FormatTitle(fmt.Sprintf("%s · %s", d.Profile.DisplayName, labelOf(d.BalanceType))),
		fmt.Sprintf("Balance: %s   %s Streak: %d (longest %d)",
			BoldStyle.Render(FormatAmount(d.BalanceType, d.Balance)), StreakIcon, d.ActiveStreak, d.Profile.LongestStreak),
		f.formatForecast(d.BalanceType, d.Forecast),
	}

	if len(d.Subscriptions) > 0 {
		sections = append(sections, f.formatProjection(d.BalanceType, d.Projection))
	}
	if len(d.Daily) > 0 {
		sections = append(sections, f.formatDaily(d.Daily))
	}
	if len(d.Categories) > 0 {
		sections = append(sections, f.formatCategories(d.BalanceType, d.Categories))
	}

	return strings.Join(sections, "\n\n") + "\n"
}

func (f *Formatter) formatForecast(bt model.BalanceType, fc ledger.Forecast) string {
	title := SubtitleStyle.Render(ChartIcon + " Forecast")
	var body string
	switch fc.Status {
	case ledger.StatusInsufficientData:
		body = InfoStyle.Render(fmt.Sprintf("Not enough history yet (%d spending day(s); log a few more purchases)", fc.SpendingDays))
	case ledger.StatusNoDepletionRisk:
		body = SuccessStyle.Render("No depletion risk at current spending")
	case ledger.StatusBeyondHorizon:
		body = SuccessStyle.Render(fmt.Sprintf("Lasts beyond the forecast horizon at %s/day", FormatAmount(bt, fc.AvgDailySpending)))
	case ledger.StatusDepletes:
		style := WarningStyle
		if fc.ZeroDate != nil && len(fc.Projected) <= 7 {
			style = ErrorStyle
		}
		zero := "soon"
		if fc.ZeroDate != nil {
			zero = fc.ZeroDate.In(f.location).Format(dateLayout)
		}
		body = style.Render(fmt.Sprintf("Runs out around %s at %s/day over %d spending day(s)",
			zero, FormatAmount(bt, fc.AvgDailySpending), fc.SpendingDays))
	default:
		body = SubtleStyle.Render("No forecast")
	}
	return title + "\n" + body
}

func (f *Formatter) formatProjection(bt model.BalanceType, p ledger.SubscriptionProjection) string {
	title := SubtitleStyle.Render(RepeatIcon + " Subscriptions")
	style := SuccessStyle
	if p.ProjectedBalance < 0 {
		style = ErrorStyle
	}
	return title + "\n" + fmt.Sprintf("%s/week × %d week(s) left = %s; balance after: %s",
		FormatAmount(bt, p.WeeklyCost), p.WeeksLeft, FormatAmount(bt, p.ProjectedMonthlyCost),
		style.Render(FormatAmount(bt, p.ProjectedBalance)))
}

func (f *Formatter) formatDaily(days []ledger.DayTotal) string {
	title := SubtitleStyle.Render(fmt.Sprintf("Last %d days", len(days)))
	first := days[0].Date.In(f.location).Format(dateLayout)
	last := days[len(days)-1].Date.In(f.location).Format(dateLayout)
	return title + "\n" + Sparkline(days) + "\n" + SubtleStyle.Render(first+" → "+last)
}

func (f *Formatter) formatCategories(bt model.BalanceType, cats []ledger.CategoryTotal) string {
	title := SubtitleStyle.Render("Spending by category")

	var total float64
	for _, c := range cats {
		total += c.Amount
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, c := range cats {
		share := 0.0
		if total > 0 {
			share = c.Amount / total
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Category, FormatAmount(bt, c.Amount), f.bar(share))
	}
	_ = w.Flush()
	return title + "\n" + strings.TrimRight(b.String(), "\n")
}

// bar draws share (0..1) as a fixed-width filled bar.
func (f *Formatter) bar(share float64) string {
	share = max(0, min(1, share))
	filled := int(share*float64(f.barWidth) + 0.5)
	return BarFillStyle.Render(strings.Repeat("█", filled)) +
		BarEmptyStyle.Render(strings.Repeat("░", f.barWidth-filled))
}

// Sparkline renders daily totals as block characters scaled to the busiest day.
func Sparkline(days []ledger.DayTotal) string {
	var peak float64
	for _, d := range days {
		peak = max(peak, d.Total)
	}

	out := make([]rune, 0, len(days))
	for _, d := range days {
		if peak <= 0 || d.Total <= 0 {
			out = append(out, ' ')
			continue
		}
		idx := int(d.Total / peak * float64(len(sparkBlocks)-1))
		out = append(out, sparkBlocks[idx])
	}
	return string(out)
}

// FormatHistory renders purchases as a table, newest first as given.
func (f *Formatter) FormatHistory(purchases []model.Purchase) string {
	if len(purchases) == 0 {
		return InfoStyle.Render("No purchases yet. Use 'swipes purchase log' to add one.") + "\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		TableHeaderStyle.Render("Date"),
		TableHeaderStyle.Render("Store"),
		TableHeaderStyle.Render("Paid With"),
		TableHeaderStyle.Render("Total"),
		TableHeaderStyle.Render("Items"))
	for i := range purchases {
		p := &purchases[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.Date.In(f.location).Format("2006-01-02 15:04"),
			storeName(p.Store),
			p.PaymentTypeID,
			p.Total.String(),
			summarizeItems(p.Items))
	}
	_ = w.Flush()
	return b.String()
}

// FormatSubscriptions renders subscriptions with their weekly cost.
func (f *Formatter) FormatSubscriptions(subs []model.Subscription) string {
	if len(subs) == 0 {
		return InfoStyle.Render("No subscriptions. Use 'swipes subscriptions add' to start one.") + "\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		TableHeaderStyle.Render("ID"),
		TableHeaderStyle.Render("Item"),
		TableHeaderStyle.Render("Qty"),
		TableHeaderStyle.Render("Weekly"),
		TableHeaderStyle.Render("Status"),
		TableHeaderStyle.Render("Since"))
	for i := range subs {
		s := &subs[i]
		status := SuccessStyle.Render(string(s.Status))
		if !s.IsActive() {
			status = SubtleStyle.Render(string(s.Status))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			s.ID,
			strings.TrimSpace(s.Item.Glyph+" "+s.Item.Name),
			s.Quantity,
			model.Money(s.WeeklyCost()).String(),
			status,
			s.StartDate.In(f.location).Format("2006-01-02"))
	}
	_ = w.Flush()
	return b.String()
}

// FormatLeaderboard renders the wall of fame.
func (f *Formatter) FormatLeaderboard(entries []model.LeaderboardEntry) string {
	if len(entries) == 0 {
		return InfoStyle.Render("Nobody is on the wall of fame yet.") + "\n"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(TrophyIcon + " Wall of Fame"))
	b.WriteString("\n")

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		TableHeaderStyle.Render("#"),
		TableHeaderStyle.Render("Name"),
		TableHeaderStyle.Render("Streak"),
		TableHeaderStyle.Render("Best"))
	for _, e := range entries {
		rank := fmt.Sprintf("%d", e.Rank)
		if e.Rank == 1 {
			rank = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).Render(rank)
		}
		fmt.Fprintf(w, "%s\t%s\t%s %d\t%d\n", rank, e.DisplayName, StreakIcon, e.CurrentStreak, e.LongestStreak)
	}
	_ = w.Flush()
	return b.String()
}

// FormatCatalog renders catalog items with their effective price.
func (f *Formatter) FormatCatalog(items []model.CatalogItem) string {
	if len(items) == 0 {
		return InfoStyle.Render("No matching catalog items.") + "\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		TableHeaderStyle.Render("Item"),
		TableHeaderStyle.Render("Category"),
		TableHeaderStyle.Render("Price"))
	for _, item := range items {
		price := model.Money(item.EffectivePrice()).String()
		if item.SalePrice > 0 && item.SalePrice < item.Price {
			price += " " + SubtleStyle.Render("(was "+item.Price.String()+")")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", strings.TrimSpace(item.Glyph+" "+item.Name), item.Category, price)
	}
	_ = w.Flush()
	return b.String()
}

func labelOf(bt model.BalanceType) string {
	if bt.Label != "" {
		return bt.Label
	}
	return bt.ID
}

func storeName(store string) string {
	if store == "" {
		return "-"
	}
	return store
}

func summarizeItems(items []model.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Quantity > 1 {
			parts = append(parts, fmt.Sprintf("%d× %s", item.Quantity, item.Name))
			continue
		}
		parts = append(parts, item.Name)
	}
	return strings.Join(parts, ", ")
}
