package ledger

import (
	"time"

	"github.com/Veraticus/swipes/internal/model"
)

// SubscriptionProjection is a point-in-time, non-compounding projection of subscription spend.
type SubscriptionProjection struct {
	WeeklyCost           float64
	ProjectedMonthlyCost float64
	ProjectedBalance     float64
	WeeksLeft            int
	DaysRemaining        int
	ActiveCount          int
}

// DaysRemainingInMonth is the last day of now's month minus today's day of month.
func DaysRemainingInMonth(now time.Time) int {
	y, m, d := now.Date()
	last := time.Date(y, m+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return last - d
}

// WeeksLeftInMonth rounds the remaining days of the month up to whole weeks.
func WeeksLeftInMonth(now time.Time) int {
	days := DaysRemainingInMonth(now)
	return (days + 6) / 7
}

// WeeklyCost sums price times quantity over active subscriptions.
func WeeklyCost(subs []model.Subscription) (float64, int) {
	var total float64
	active := 0
	for i := range subs {
		if !subs[i].IsActive() {
			continue
		}
		total += subs[i].WeeklyCost()
		active++
	}
	return model.Round2(total), active
}

// ProjectSubscriptions projects active subscription spend to the end of now's calendar month.
func ProjectSubscriptions(subs []model.Subscription, currentBalance float64, now time.Time) SubscriptionProjection {
	proj := ProjectWithWeeks(subs, currentBalance, WeeksLeftInMonth(now))
	proj.DaysRemaining = DaysRemainingInMonth(now)
	return proj
}

// ProjectWithWeeks projects active subscription spend over an explicit number of weeks.
// DaysRemaining is left zero since no calendar date is involved. The projected balance
// may be negative; it is never written back to a profile.
func ProjectWithWeeks(subs []model.Subscription, currentBalance float64, weeks int) SubscriptionProjection {
	if weeks < 0 {
		weeks = 0
	}
	weekly, active := WeeklyCost(subs)
	monthly := model.Round2(weekly * float64(weeks))

	return SubscriptionProjection{
		WeeklyCost:           weekly,
		WeeksLeft:            weeks,
		ProjectedMonthlyCost: monthly,
		ProjectedBalance:     model.Round2(currentBalance - monthly),
		ActiveCount:          active,
	}
}
