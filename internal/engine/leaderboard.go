package engine

import (
	"context"
	"fmt"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/model"
)

// Leaderboard returns the ranked wall of fame. A limit of zero returns every entry.
func (e *Engine) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", common.ErrValidation, limit)
	}
	entries, err := e.storage.ListLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaderboard: %w", err)
	}
	return entries, nil
}

// publishLeaderboard pushes the profile's public entry. Callers hold the user's lock.
// Failures are logged and dropped; the next purchase rewrites the whole entry.
func (e *Engine) publishLeaderboard(ctx context.Context, profile *model.UserProfile) {
	entry := model.EntryFromProfile(profile, e.now())
	err := common.WithRetry(ctx, func() error {
		return e.storage.UpsertLeaderboardEntry(ctx, entry)
	}, e.config.LeaderboardRetry)
	if err != nil {
		common.LogWarn("Leaderboard update failed", common.Fields{
			"user_id": profile.ID,
			"error":   err.Error(),
		})
	}
}
