// Package engine implements the ledger commands and queries: logging purchases,
// onboarding, subscriptions, dashboards and the leaderboard.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/swipes/internal/classification"
	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/config"
	"github.com/Veraticus/swipes/internal/ledger"
	"github.com/Veraticus/swipes/internal/service"
)

// Engine orchestrates ledger operations over storage.
type Engine struct {
	storage    service.Storage
	locker     service.Locker
	classifier *classification.Classifier
	config     Config
}

// Config holds configuration options for the engine.
type Config struct {
	Now              service.Clock
	Location         *time.Location
	Tiers            map[string]config.Tier
	LeaderboardRetry service.RetryOptions
	Forecast         ledger.ForecastOptions
	LockWait         time.Duration
	HistoryDays      int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Now:      time.Now,
		Location: time.Local,
		Tiers:    config.DefaultTiers(),
		LeaderboardRetry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2,
		},
		Forecast:    ledger.DefaultForecastOptions(),
		LockWait:    5 * time.Second,
		HistoryDays: 14,
	}
}

// ConfigFrom derives engine settings from the application configuration.
func ConfigFrom(cfg *config.Config) Config {
	c := DefaultConfig()
	c.Location = cfg.Location
	c.Tiers = cfg.Tiers
	c.Forecast = ledger.ForecastOptions{
		Location:        cfg.Location,
		MinSpendingDays: cfg.Forecast.MinSpendingDays,
		HorizonDays:     cfg.Forecast.HorizonDays,
	}
	if cfg.Lock.Wait > 0 {
		c.LockWait = cfg.Lock.Wait
	}
	if cfg.Leaderboard.RetryAttempts > 0 {
		c.LeaderboardRetry.MaxAttempts = cfg.Leaderboard.RetryAttempts
	}
	return c
}

// New creates an engine with the default configuration.
func New(storage service.Storage, locker service.Locker, classifier *classification.Classifier) *Engine {
	return NewWithConfig(storage, locker, classifier, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(storage service.Storage, locker service.Locker, classifier *classification.Classifier, cfg Config) *Engine {
	defaults := DefaultConfig()
	if cfg.Now == nil {
		cfg.Now = defaults.Now
	}
	if cfg.Location == nil {
		cfg.Location = defaults.Location
	}
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = defaults.Tiers
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = defaults.LockWait
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = defaults.HistoryDays
	}
	if cfg.Forecast.Location == nil {
		cfg.Forecast.Location = cfg.Location
	}
	if classifier == nil {
		classifier = classification.NewDefaultClassifier()
	}

	return &Engine{
		storage:    storage,
		locker:     locker,
		classifier: classifier,
		config:     cfg,
	}
}

func (e *Engine) now() time.Time {
	return e.config.Now().In(e.config.Location)
}

// withUserLock runs fn while holding the user's lock. A lock that cannot be taken
// within LockWait reports common.ErrInFlight.
func (e *Engine) withUserLock(ctx context.Context, userID string, fn func() error) error {
	lockCtx, cancel := context.WithTimeout(ctx, e.config.LockWait)
	defer cancel()

	release, err := e.locker.Lock(lockCtx, "user:"+userID)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", common.ErrInFlight, userID)
		}
		return fmt.Errorf("failed to lock user %s: %w", userID, err)
	}
	defer release()

	return fn()
}

// inTx runs fn in a storage transaction, committing when fn succeeds.
func (e *Engine) inTx(ctx context.Context, fn func(tx service.Transaction) error) error {
	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Debug("Rollback after failed transaction", "error", rbErr)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	committed = true
	return nil
}
