package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestUpdateStreak(t *testing.T) {
	today := day(2025, 9, 15, 13)

	tests := []struct {
		state       StreakState
		name        string
		wantCurrent int
		wantLongest int
	}{
		{
			name:        "first purchase ever",
			state:       StreakState{},
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "first purchase keeps a larger longest",
			state:       StreakState{Longest: 9},
			wantCurrent: 1,
			wantLongest: 9,
		},
		{
			name:        "same day repeat",
			state:       StreakState{Current: 4, Longest: 6, LastLogDate: ptr(day(2025, 9, 15, 8))},
			wantCurrent: 4,
			wantLongest: 6,
		},
		{
			name:        "consecutive day extends",
			state:       StreakState{Current: 4, Longest: 6, LastLogDate: ptr(day(2025, 9, 14, 23))},
			wantCurrent: 5,
			wantLongest: 6,
		},
		{
			name:        "consecutive day sets new longest",
			state:       StreakState{Current: 6, Longest: 6, LastLogDate: ptr(day(2025, 9, 14, 1))},
			wantCurrent: 7,
			wantLongest: 7,
		},
		{
			name:        "gap of two days resets",
			state:       StreakState{Current: 6, Longest: 6, LastLogDate: ptr(day(2025, 9, 13, 12))},
			wantCurrent: 1,
			wantLongest: 6,
		},
		{
			name:        "long gap resets",
			state:       StreakState{Current: 2, Longest: 11, LastLogDate: ptr(day(2025, 6, 1, 12))},
			wantCurrent: 1,
			wantLongest: 11,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateStreak(tt.state, today, time.UTC)
			assert.Equal(t, tt.wantCurrent, got.Current)
			assert.Equal(t, tt.wantLongest, got.Longest)
			require.NotNil(t, got.LastLogDate)
			assert.Equal(t, today, *got.LastLogDate)
		})
	}
}

func TestUpdateStreak_BackdatedEventIsNoOp(t *testing.T) {
	state := StreakState{Current: 3, Longest: 5, LastLogDate: ptr(day(2025, 9, 15, 9))}

	got := UpdateStreak(state, day(2025, 9, 12, 9), time.UTC)

	assert.Equal(t, state, got)
}

func TestUpdateStreak_UsesCalendarDaysInLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 23:30 and 00:30 local are consecutive calendar days, one hour apart.
	last := time.Date(2025, 3, 8, 23, 30, 0, 0, ny)
	event := time.Date(2025, 3, 9, 0, 30, 0, 0, ny)

	got := UpdateStreak(StreakState{Current: 1, Longest: 1, LastLogDate: &last}, event, ny)
	assert.Equal(t, 2, got.Current)

	// Across the spring-forward transition the day difference is still one.
	assert.Equal(t, 1, DiffDays(time.Date(2025, 3, 9, 0, 0, 0, 0, ny), time.Date(2025, 3, 10, 0, 0, 0, 0, ny), ny))
}

func TestUpdateStreak_LongestNeverDecreases(t *testing.T) {
	state := StreakState{}
	events := []time.Time{
		day(2025, 9, 1, 9), day(2025, 9, 2, 9), day(2025, 9, 3, 9),
		day(2025, 9, 3, 20), day(2025, 9, 7, 9), day(2025, 9, 8, 9),
		day(2025, 9, 2, 9), day(2025, 9, 20, 9),
	}

	prevLongest := 0
	for _, ev := range events {
		state = UpdateStreak(state, ev, time.UTC)
		assert.GreaterOrEqual(t, state.Longest, prevLongest)
		assert.GreaterOrEqual(t, state.Longest, state.Current)
		prevLongest = state.Longest
	}
	assert.Equal(t, 3, state.Longest)
	assert.Equal(t, 1, state.Current)
}

func TestActiveStreak(t *testing.T) {
	now := day(2025, 9, 15, 12)
	assert.Equal(t, 0, ActiveStreak(StreakState{}, now, time.UTC))
	assert.Equal(t, 4, ActiveStreak(StreakState{Current: 4, LastLogDate: ptr(day(2025, 9, 14, 8))}, now, time.UTC))
	assert.Equal(t, 0, ActiveStreak(StreakState{Current: 4, LastLogDate: ptr(day(2025, 9, 13, 8))}, now, time.UTC))
}
