package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/swipes/internal/classification"
	"github.com/Veraticus/swipes/internal/cli"
	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/config"
	"github.com/Veraticus/swipes/internal/engine"
	"github.com/Veraticus/swipes/internal/identity"
	"github.com/Veraticus/swipes/internal/lock"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/Veraticus/swipes/internal/service"
	"github.com/Veraticus/swipes/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// app bundles everything a command needs. Close releases it.
type app struct {
	cfg     *config.Config
	store   *storage.SQLiteStorage
	engine  *engine.Engine
	format  *cli.Formatter
	closers []func() error
}

// openApp loads configuration, opens and migrates the database, and wires the engine.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &app{
		cfg:     cfg,
		store:   store,
		format:  cli.NewFormatter(cfg.Location),
		closers: []func() error{store.Close},
	}

	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closeLocker != nil {
		a.closers = append(a.closers, closeLocker)
	}

	a.engine = engine.NewWithConfig(store, locker, classification.NewDefaultClassifier(), engine.ConfigFrom(cfg))
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			common.LogError(err, "failed to close resource", nil)
		}
	}
}

// initStorage opens the configured database and runs migrations.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newLocker builds the configured per-user lock. The returned func, when non-nil, closes
// the backing client.
func newLocker(ctx context.Context, cfg *config.Config) (service.Locker, func() error, error) {
	switch cfg.Lock.Backend {
	case config.LockBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Lock.RedisAddr})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Lock.RedisAddr, err)
		}

		slog.Debug("Using redis lock backend", "addr", cfg.Lock.RedisAddr)
		return lock.NewRedisLocker(client, lock.RedisOptions{TTL: cfg.Lock.TTL}), client.Close, nil
	default:
		return lock.NewMemoryLocker(), nil, nil
	}
}

// newVerifier builds the identity token verifier from configuration.
func newVerifier(cfg *config.Config) (*identity.Verifier, error) {
	v, err := identity.NewVerifier(identity.Options{
		Secret:   cfg.Identity.Secret,
		Issuer:   cfg.Identity.Issuer,
		Audience: cfg.Identity.Audience,
		Leeway:   30 * time.Second,
	})
	if err != nil {
		return nil, common.NewUserError("Set identity.secret (or SWIPES_IDENTITY_SECRET) to verify identity tokens", err)
	}
	return v, nil
}

// currentIdentity verifies the token given with --token or SWIPES_AUTH_TOKEN.
func (a *app) currentIdentity() (identity.Identity, error) {
	token := viper.GetString("auth.token")
	if strings.TrimSpace(token) == "" {
		return identity.Identity{}, common.NewUserError(
			"No identity token: pass --token or set SWIPES_AUTH_TOKEN (see 'swipes token issue')", identity.ErrInvalidToken)
	}

	return verifyToken(a.cfg, token)
}

func verifyToken(cfg *config.Config, token string) (identity.Identity, error) {
	v, err := newVerifier(cfg)
	if err != nil {
		return identity.Identity{}, err
	}
	id, err := v.Verify(token)
	if err != nil {
		return identity.Identity{}, common.NewUserError("Identity token rejected", err)
	}
	return id, nil
}

// currentUserID is currentIdentity for commands that only need the id.
func (a *app) currentUserID() (string, error) {
	id, err := a.currentIdentity()
	if err != nil {
		return "", err
	}
	return id.UserID, nil
}

// friendlyError turns ledger failures into messages a student can act on.
func friendlyError(err error) error {
	if err == nil {
		return nil
	}
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return err
	}

	switch {
	case errors.Is(err, common.ErrInsufficientFunds):
		return common.NewUserError("Not enough balance for this purchase", err)
	case errors.Is(err, common.ErrInFlight):
		return common.NewUserError("Another purchase is still being recorded; try again in a moment", err)
	case errors.Is(err, common.ErrNotFound):
		return common.NewUserError("Not found. Have you run 'swipes onboard'?", err)
	case errors.Is(err, common.ErrValidation):
		return common.NewUserError("Invalid input", err)
	case common.IsRetryable(err):
		return common.NewUserError("The ledger is busy; retry with the same --idempotency-key", err)
	default:
		return err
	}
}

// parseItems parses "name[:qty[:category]]" specs.
func parseItems(specs []string) ([]model.LineItem, error) {
	items := make([]model.LineItem, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		item := model.LineItem{Name: strings.TrimSpace(parts[0]), Quantity: 1}
		if item.Name == "" {
			return nil, common.Validationf("item %q has no name", spec)
		}
		if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
			qty, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil || qty <= 0 {
				return nil, common.Validationf("item %q has an invalid quantity", spec)
			}
			item.Quantity = qty
		}
		if len(parts) > 2 {
			item.Category = strings.TrimSpace(strings.Join(parts[2:], ":"))
		}
		items = append(items, item)
	}
	return items, nil
}

// parseAssignments parses "id=amount" pairs.
func parseAssignments(args []string) (map[string]float64, error) {
	out := make(map[string]float64, len(args))
	for _, arg := range args {
		id, raw, ok := strings.Cut(arg, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, common.Validationf("expected id=amount, got %q", arg)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, common.Validationf("invalid amount for %s: %q", id, raw)
		}
		out[id] = amount
	}
	return out, nil
}

// parseDate accepts YYYY-MM-DD in loc or an RFC 3339 timestamp. Empty yields nil.
func parseDate(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, common.Validationf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return &t, nil
}
