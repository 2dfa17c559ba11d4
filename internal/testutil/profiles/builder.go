// Package profiles builds user profiles for tests with a fluent API.
//
// Example usage:
//
//	p := profiles.New("u1").
//		WithTier("first-year").
//		WithBalance("dining", 42).
//		WithStreak(3, 5, lastLog).
//		Build()
package profiles

import (
	"time"

	"github.com/Veraticus/swipes/internal/model"
)

// Standard balance type ids used across tests.
const (
	Dining  = "dining"
	Credits = "credits"
	Swipes  = "swipes"
)

// Builder constructs a UserProfile.
type Builder struct {
	profile model.UserProfile
}

// CreatedAt is the creation time stamped on built profiles.
var CreatedAt = time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

// New starts a first-year profile with dining dollars and weekly meal swipes.
func New(id string) *Builder {
	return &Builder{profile: model.UserProfile{
		ID:          id,
		DisplayName: "Student " + id,
		Tier:        "first-year",
		CreatedAt:   CreatedAt,
		UpdatedAt:   CreatedAt,
		BalanceTypes: []model.BalanceType{
			{ID: Swipes, Label: "Meal Swipes", Unit: model.UnitCount, WeeklyAllowance: 14, WeeklyReset: true, ResetDay: time.Monday},
			{ID: Dining, Label: "Dining Dollars", Unit: model.UnitMoney},
		},
		Balances: model.Balances{Swipes: 14, Dining: 300},
	}}
}

// WithName sets the display name.
func (b *Builder) WithName(name string) *Builder {
	b.profile.DisplayName = name
	return b
}

// WithTier sets the tier label without changing balance types.
func (b *Builder) WithTier(tier string) *Builder {
	b.profile.Tier = tier
	return b
}

// WithBalanceType adds a balance type with a starting amount.
func (b *Builder) WithBalanceType(bt model.BalanceType, amount float64) *Builder {
	b.profile.BalanceTypes = append(b.profile.BalanceTypes, bt)
	b.profile.Balances[bt.ID] = amount
	return b
}

// WithBalance sets the amount of an existing balance type.
func (b *Builder) WithBalance(id string, amount float64) *Builder {
	b.profile.Balances[id] = amount
	return b
}

// WithStreak sets both streak counters and the last log date.
func (b *Builder) WithStreak(current, longest int, lastLog time.Time) *Builder {
	b.profile.CurrentStreak = current
	b.profile.LongestStreak = longest
	last := lastLog
	b.profile.LastLogDate = &last
	return b
}

// WithLastReset sets the weekly reset marker.
func (b *Builder) WithLastReset(at time.Time) *Builder {
	marker := at
	b.profile.LastResetAt = &marker
	return b
}

// OptedIn marks the profile as shown on the leaderboard.
func (b *Builder) OptedIn() *Builder {
	b.profile.LeaderboardOptIn = true
	b.profile.LeaderboardEverSet = true
	return b
}

// Build returns a copy of the profile.
func (b *Builder) Build() *model.UserProfile {
	p := b.profile
	p.BalanceTypes = append([]model.BalanceType(nil), b.profile.BalanceTypes...)
	p.Balances = make(model.Balances, len(b.profile.Balances))
	for k, v := range b.profile.Balances {
		p.Balances[k] = v
	}
	return &p
}
