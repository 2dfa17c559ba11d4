package ledger

import (
	"time"

	"github.com/Veraticus/swipes/internal/model"
)

// LastResetBoundary returns the most recent midnight at or before now that falls on day.
func LastResetBoundary(now time.Time, day time.Weekday, loc *time.Location) time.Time {
	today := model.StartOfDay(now, loc)
	back := (int(today.Weekday()) - int(day) + 7) % 7
	return today.AddDate(0, 0, -back)
}

// ApplyWeeklyResets restores every weekly-reset balance to its allowance when a reset
// boundary has passed since the profile's LastResetAt. It returns the ids that were reset.
//
// A profile that has never been reset only gets its marker initialised; balances set at
// onboarding are kept.
func ApplyWeeklyResets(p *model.UserProfile, now time.Time, loc *time.Location) []string {
	if p.LastResetAt == nil {
		marker := now
		p.LastResetAt = &marker
		return nil
	}

	var reset []string
	for _, bt := range p.BalanceTypes {
		if !bt.WeeklyReset {
			continue
		}
		boundary := LastResetBoundary(now, bt.ResetDay, loc)
		if !p.LastResetAt.Before(boundary) {
			continue
		}
		if p.Balances == nil {
			p.Balances = make(model.Balances)
		}
		p.Balances[bt.ID] = model.Round2(bt.WeeklyAllowance)
		reset = append(reset, bt.ID)
	}

	if len(reset) > 0 || now.After(*p.LastResetAt) {
		marker := now
		p.LastResetAt = &marker
	}
	return reset
}
