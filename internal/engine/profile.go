package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/identity"
	"github.com/Veraticus/swipes/internal/ledger"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/Veraticus/swipes/internal/service"
)

// OnboardRequest creates a profile for a verified identity on a plan tier.
type OnboardRequest struct {
	Identity         identity.Identity
	Tier             string
	LeaderboardOptIn bool
}

// Onboard creates the user's profile with the tier's balance types and starting balances.
func (e *Engine) Onboard(ctx context.Context, req OnboardRequest) (*model.UserProfile, error) {
	userID := strings.TrimSpace(req.Identity.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: identity has no user id", common.ErrValidation)
	}

	tierName := strings.TrimSpace(req.Tier)
	tier, ok := e.config.Tiers[tierName]
	if !ok {
		return nil, fmt.Errorf("%w: unknown tier %q (available: %s)",
			common.ErrValidation, tierName, strings.Join(e.tierNames(), ", "))
	}
	types, balances, err := tier.Plan()
	if err != nil {
		return nil, fmt.Errorf("%w: tier %s: %w", common.ErrValidation, tierName, err)
	}

	now := e.now()
	displayName := strings.TrimSpace(req.Identity.DisplayName)
	if displayName == "" {
		displayName = userID
	}
	profile := &model.UserProfile{
		ID:                 userID,
		DisplayName:        displayName,
		PhotoURL:           req.Identity.PhotoURL,
		Email:              req.Identity.Email,
		Tier:               tierName,
		BalanceTypes:       types,
		Balances:           balances,
		LeaderboardOptIn:   req.LeaderboardOptIn,
		LeaderboardEverSet: req.LeaderboardOptIn,
		LastResetAt:        &now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = e.withUserLock(ctx, userID, func() error {
		err := e.inTx(ctx, func(tx service.Transaction) error {
			_, getErr := tx.GetUserProfile(ctx, userID)
			switch {
			case getErr == nil:
				return fmt.Errorf("%w: user %s is already onboarded", common.ErrValidation, userID)
			case !errors.Is(getErr, common.ErrNotFound):
				return fmt.Errorf("failed to check existing profile: %w", getErr)
			}
			return tx.SaveUserProfile(ctx, profile)
		})
		if err != nil {
			return err
		}
		if profile.LeaderboardOptIn {
			e.publishLeaderboard(ctx, profile)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.LogInfo("User onboarded", common.Fields{
		"user_id": userID,
		"tier":    tierName,
	})
	return profile, nil
}

// Profile returns the stored profile.
func (e *Engine) Profile(ctx context.Context, userID string) (*model.UserProfile, error) {
	return e.storage.GetUserProfile(ctx, userID)
}

// UpdateBalances sets balances by hand. Amounts are rounded to cents and clamped at zero.
func (e *Engine) UpdateBalances(ctx context.Context, userID string, amounts map[string]float64) (*model.UserProfile, error) {
	if len(amounts) == 0 {
		return nil, fmt.Errorf("%w: no balances given", common.ErrValidation)
	}

	var profile *model.UserProfile
	err := e.withUserLock(ctx, userID, func() error {
		return e.inTx(ctx, func(tx service.Transaction) error {
			var err error
			profile, err = tx.GetUserProfile(ctx, userID)
			if err != nil {
				return err
			}
			if profile.Balances == nil {
				profile.Balances = make(model.Balances)
			}
			for id, amount := range amounts {
				if _, ok := profile.BalanceType(id); !ok {
					return fmt.Errorf("%w: %w: %s", common.ErrValidation, model.ErrUnknownBalance, id)
				}
				if math.IsNaN(amount) || math.IsInf(amount, 0) {
					return fmt.Errorf("%w: balance %s must be finite", common.ErrValidation, id)
				}
				profile.Balances[id] = math.Max(0, model.Round2(amount))
			}
			profile.UpdatedAt = e.now()
			return tx.SaveUserProfile(ctx, profile)
		})
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// SetLeaderboardOptIn publishes or withdraws the user's wall of fame entry.
func (e *Engine) SetLeaderboardOptIn(ctx context.Context, userID string, optIn bool) (*model.UserProfile, error) {
	var (
		profile  *model.UserProfile
		entryErr error
	)
	err := e.withUserLock(ctx, userID, func() error {
		err := e.inTx(ctx, func(tx service.Transaction) error {
			var err error
			profile, err = tx.GetUserProfile(ctx, userID)
			if err != nil {
				return err
			}
			profile.LeaderboardOptIn = optIn
			profile.LeaderboardEverSet = true
			profile.UpdatedAt = e.now()
			return tx.SaveUserProfile(ctx, profile)
		})
		if err != nil {
			return err
		}

		if optIn {
			entryErr = e.storage.UpsertLeaderboardEntry(ctx, model.EntryFromProfile(profile, e.now()))
		} else {
			entryErr = e.storage.DeleteLeaderboardEntry(ctx, profile.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if entryErr != nil {
		return profile, fmt.Errorf("failed to update leaderboard entry: %w", entryErr)
	}
	return profile, nil
}

// ApplyResets restores any weekly allowances whose reset day has passed and returns their ids.
func (e *Engine) ApplyResets(ctx context.Context, userID string) ([]string, error) {
	var reset []string
	err := e.withUserLock(ctx, userID, func() error {
		return e.inTx(ctx, func(tx service.Transaction) error {
			profile, err := tx.GetUserProfile(ctx, userID)
			if err != nil {
				return err
			}
			reset = ledger.ApplyWeeklyResets(profile, e.now(), e.config.Location)
			profile.UpdatedAt = e.now()
			return tx.SaveUserProfile(ctx, profile)
		})
	})
	if err != nil {
		return nil, err
	}
	if len(reset) > 0 {
		common.LogInfo("Weekly balances reset", common.Fields{
			"user_id":  userID,
			"balances": strings.Join(reset, ","),
		})
	}
	return reset, nil
}

func (e *Engine) tierNames() []string {
	names := make([]string, 0, len(e.config.Tiers))
	for name := range e.config.Tiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
