// Package model defines the core domain models used throughout the application.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// UnitKind tells whether a balance is denominated in money or in a count of swipes.
type UnitKind string

const (
	// UnitMoney balances hold dollars (credits, dining dollars).
	UnitMoney UnitKind = "money"
	// UnitCount balances hold whole units (meal swipes, bonus swipes).
	UnitCount UnitKind = "count"
)

// Profile validation errors.
var (
	ErrNegativeBalance   = errors.New("balance cannot be negative")
	ErrStreakInvariant   = errors.New("longest streak must be at least the current streak")
	ErrUnknownBalance    = errors.New("unknown balance type")
	ErrInvalidUnitKind   = errors.New("invalid unit kind")
	ErrMissingIdentifier = errors.New("missing identifier")
)

// BalanceType describes one spendable unit on a user's plan.
type BalanceType struct {
	ID              string       `json:"id"`
	Label           string       `json:"label"`
	Unit            UnitKind     `json:"unit"`
	WeeklyAllowance float64      `json:"weeklyAllowance,omitempty"`
	ResetDay        time.Weekday `json:"resetDay,omitempty"`
	WeeklyReset     bool         `json:"weeklyReset,omitempty"`
}

// Validate checks that the descriptor is usable.
func (b BalanceType) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: balance type id", ErrMissingIdentifier)
	}
	switch b.Unit {
	case UnitMoney, UnitCount:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidUnitKind, b.Unit)
	}
	if b.WeeklyAllowance < 0 {
		return fmt.Errorf("%w: weekly allowance for %s", ErrNegativeBalance, b.ID)
	}
	return nil
}

// Balances maps a balance type id to its current amount.
type Balances map[string]float64

// MarshalJSON writes every amount rounded to two decimals with keys in sorted order.
func (b Balances) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			out = append(out, ',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := Money(b[k]).MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("balance %s: %w", k, err)
		}
		out = append(out, key...)
		out = append(out, ':')
		out = append(out, val...)
	}
	return append(out, '}'), nil
}

// UnmarshalJSON rounds every amount to two decimals.
func (b *Balances) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*b = nil
		return nil
	}
	out := make(Balances, len(raw))
	for k, v := range raw {
		out[k] = Round2(v)
	}
	*b = out
	return nil
}

// UserProfile is the per-user document: plan balances, streak counters and leaderboard opt-in.
type UserProfile struct {
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
	LastLogDate        *time.Time    `json:"lastLogDate,omitempty"`
	LastResetAt        *time.Time    `json:"lastResetAt,omitempty"`
	Balances           Balances      `json:"balances"`
	ID                 string        `json:"id"`
	DisplayName        string        `json:"displayName"`
	PhotoURL           string        `json:"photoURL,omitempty"`
	Email              string        `json:"email,omitempty"`
	Tier               string        `json:"tier"`
	BalanceTypes       []BalanceType `json:"balanceTypes"`
	CurrentStreak      int           `json:"currentStreak"`
	LongestStreak      int           `json:"longestStreak"`
	LeaderboardOptIn   bool          `json:"leaderboardOptIn"`
	LeaderboardEverSet bool          `json:"leaderboardEverSet,omitempty"`
}

// BalanceType returns the descriptor with the given id.
func (p *UserProfile) BalanceType(id string) (BalanceType, bool) {
	for _, bt := range p.BalanceTypes {
		if bt.ID == id {
			return bt, true
		}
	}
	return BalanceType{}, false
}

// Balance returns the current amount for a balance type id.
func (p *UserProfile) Balance(id string) (float64, error) {
	if _, ok := p.BalanceType(id); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownBalance, id)
	}
	return p.Balances[id], nil
}

// Validate enforces the profile invariants.
func (p *UserProfile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: user id", ErrMissingIdentifier)
	}
	seen := make(map[string]bool, len(p.BalanceTypes))
	for _, bt := range p.BalanceTypes {
		if err := bt.Validate(); err != nil {
			return err
		}
		if seen[bt.ID] {
			return fmt.Errorf("duplicate balance type %q", bt.ID)
		}
		seen[bt.ID] = true
	}
	for id, amount := range p.Balances {
		if !seen[id] {
			return fmt.Errorf("%w: %s", ErrUnknownBalance, id)
		}
		if amount < 0 {
			return fmt.Errorf("%w: %s = %.2f", ErrNegativeBalance, id, amount)
		}
	}
	if p.CurrentStreak < 0 || p.LongestStreak < p.CurrentStreak {
		return fmt.Errorf("%w: current=%d longest=%d", ErrStreakInvariant, p.CurrentStreak, p.LongestStreak)
	}
	return nil
}
