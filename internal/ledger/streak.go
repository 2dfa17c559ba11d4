// Package ledger holds the pure balance, streak, projection and forecast computations.
// Every function takes its inputs explicitly, including "now", and keeps no state between calls.
package ledger

import (
	"time"

	"github.com/Veraticus/swipes/internal/model"
)

// StreakState is the streak portion of a user profile.
type StreakState struct {
	LastLogDate *time.Time
	Current     int
	Longest     int
}

// StreakFromProfile extracts the streak counters of a profile.
func StreakFromProfile(p *model.UserProfile) StreakState {
	return StreakState{
		Current:     p.CurrentStreak,
		Longest:     p.LongestStreak,
		LastLogDate: p.LastLogDate,
	}
}

// DiffDays returns the number of calendar days from `from` to `to`, both taken in loc.
func DiffDays(from, to time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// UpdateStreak advances the streak for one logged purchase at `event`.
//
// A repeat purchase on the same day leaves the counters alone, the next calendar day extends
// the streak, and any longer gap restarts it at one. An event dated before LastLogDate is
// ignored entirely: counters and LastLogDate are returned unchanged.
func UpdateStreak(state StreakState, event time.Time, loc *time.Location) StreakState {
	next := state
	if next.Current < 0 {
		next.Current = 0
	}

	if state.LastLogDate == nil {
		next.Current = 1
	} else {
		switch diff := DiffDays(*state.LastLogDate, event, loc); {
		case diff < 0:
			return state
		case diff == 0:
			if next.Current == 0 {
				next.Current = 1
			}
		case diff == 1:
			next.Current++
		default:
			next.Current = 1
		}
	}

	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	logged := event
	next.LastLogDate = &logged
	return next
}

// ActiveStreak returns the streak as it should be displayed at `now`: a streak whose last
// log is older than yesterday has lapsed and reads as zero.
func ActiveStreak(state StreakState, now time.Time, loc *time.Location) int {
	if state.LastLogDate == nil {
		return 0
	}
	if DiffDays(*state.LastLogDate, now, loc) > 1 {
		return 0
	}
	return state.Current
}
