// Package config loads swipes configuration from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/ledger"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/spf13/viper"
)

// Lock backends.
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "$HOME/.local/share/swipes/swipes.db"

// Config is the resolved application configuration.
type Config struct {
	Location     *time.Location
	Tiers        map[string]Tier
	DatabasePath string
	Identity     IdentityConfig
	Lock         LockConfig
	Forecast     ForecastConfig
	Leaderboard  LeaderboardConfig
}

// IdentityConfig configures ID token verification.
type IdentityConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// LockConfig selects and tunes the per-user lock.
type LockConfig struct {
	Backend   string
	RedisAddr string
	TTL       time.Duration
	Wait      time.Duration
}

// ForecastConfig tunes the depletion forecast.
type ForecastConfig struct {
	HorizonDays     int
	MinSpendingDays int
}

// LeaderboardConfig tunes the wall of fame.
type LeaderboardConfig struct {
	RetryAttempts int
	DefaultLimit  int
}

// Tier is a class-year plan: the balance types a new profile starts with.
type Tier struct {
	Label    string        `mapstructure:"label"`
	Balances []TierBalance `mapstructure:"balances"`
}

// TierBalance is one balance type of a tier with its starting amount.
type TierBalance struct {
	ID              string  `mapstructure:"id"`
	Label           string  `mapstructure:"label"`
	Unit            string  `mapstructure:"unit"`
	ResetDay        string  `mapstructure:"reset_day"`
	Starting        float64 `mapstructure:"starting"`
	WeeklyAllowance float64 `mapstructure:"weekly_allowance"`
	WeeklyReset     bool    `mapstructure:"weekly_reset"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("timezone", "Local")
	v.SetDefault("forecast.horizon_days", ledger.DefaultHorizonDays)
	v.SetDefault("forecast.min_spending_days", ledger.DefaultMinSpendingDays)
	v.SetDefault("lock.backend", LockBackendMemory)
	v.SetDefault("lock.redis_addr", "localhost:6379")
	v.SetDefault("lock.ttl", 30*time.Second)
	v.SetDefault("lock.wait", 5*time.Second)
	v.SetDefault("leaderboard.retry_attempts", 3)
	v.SetDefault("leaderboard.default_limit", 25)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load resolves the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString("database.path")),
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = ExpandPath(DefaultDatabasePath)
	}

	loc, err := loadLocation(v.GetString("timezone"))
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	// Sections are read key by key so defaults fill whatever a file leaves out.
	cfg.Identity = IdentityConfig{
		Secret:   v.GetString("identity.secret"),
		Issuer:   v.GetString("identity.issuer"),
		Audience: v.GetString("identity.audience"),
	}
	cfg.Lock = LockConfig{
		Backend:   strings.ToLower(v.GetString("lock.backend")),
		RedisAddr: v.GetString("lock.redis_addr"),
		TTL:       v.GetDuration("lock.ttl"),
		Wait:      v.GetDuration("lock.wait"),
	}
	cfg.Forecast = ForecastConfig{
		HorizonDays:     v.GetInt("forecast.horizon_days"),
		MinSpendingDays: v.GetInt("forecast.min_spending_days"),
	}
	cfg.Leaderboard = LeaderboardConfig{
		RetryAttempts: v.GetInt("leaderboard.retry_attempts"),
		DefaultLimit:  v.GetInt("leaderboard.default_limit"),
	}

	cfg.Tiers = DefaultTiers()
	if v.IsSet("tiers") {
		var tiers map[string]Tier
		if err := v.UnmarshalKey("tiers", &tiers); err != nil {
			return nil, fmt.Errorf("%w: tiers: %w", common.ErrInvalidConfig, err)
		}
		cfg.Tiers = tiers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	switch c.Lock.Backend {
	case LockBackendMemory:
	case LockBackendRedis:
		if c.Lock.RedisAddr == "" {
			return fmt.Errorf("%w: lock.redis_addr is required for the redis backend", common.ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: unknown lock backend %q", common.ErrInvalidConfig, c.Lock.Backend)
	}
	if c.Forecast.HorizonDays <= 0 || c.Forecast.MinSpendingDays <= 0 {
		return fmt.Errorf("%w: forecast horizon and minimum spending days must be positive", common.ErrInvalidConfig)
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("%w: no tiers configured", common.ErrMissingConfig)
	}
	for name, tier := range c.Tiers {
		if _, _, err := tier.Plan(); err != nil {
			return fmt.Errorf("%w: tier %s: %w", common.ErrInvalidConfig, name, err)
		}
	}
	return nil
}

// TierNames lists configured tiers in sorted order.
func (c *Config) TierNames() []string {
	names := make([]string, 0, len(c.Tiers))
	for name := range c.Tiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Plan converts the tier into balance types and starting balances.
func (t Tier) Plan() ([]model.BalanceType, model.Balances, error) {
	if len(t.Balances) == 0 {
		return nil, nil, fmt.Errorf("tier has no balances")
	}

	types := make([]model.BalanceType, 0, len(t.Balances))
	balances := make(model.Balances, len(t.Balances))
	for _, b := range t.Balances {
		day, err := ParseWeekday(b.ResetDay)
		if err != nil {
			return nil, nil, err
		}
		bt := model.BalanceType{
			ID:              b.ID,
			Label:           b.Label,
			Unit:            model.UnitKind(b.Unit),
			WeeklyAllowance: b.WeeklyAllowance,
			ResetDay:        day,
			WeeklyReset:     b.WeeklyReset,
		}
		if err := bt.Validate(); err != nil {
			return nil, nil, err
		}
		if b.Starting < 0 {
			return nil, nil, fmt.Errorf("%w: starting amount for %s", model.ErrNegativeBalance, b.ID)
		}
		if _, dup := balances[b.ID]; dup {
			return nil, nil, fmt.Errorf("duplicate balance type %q", b.ID)
		}
		types = append(types, bt)
		balances[b.ID] = model.Round2(b.Starting)
	}
	return types, balances, nil
}

// DefaultTiers are the plans used when the config file defines none.
func DefaultTiers() map[string]Tier {
	swipes := func(allowance float64) TierBalance {
		return TierBalance{
			ID: "swipes", Label: "Meal Swipes", Unit: string(model.UnitCount),
			Starting: allowance, WeeklyAllowance: allowance, WeeklyReset: true, ResetDay: "monday",
		}
	}
	return map[string]Tier{
		"first-year": {Label: "First Year", Balances: []TierBalance{
			swipes(14),
			{ID: "dining", Label: "Dining Dollars", Unit: string(model.UnitMoney), Starting: 300},
		}},
		"upperclass": {Label: "Upperclass", Balances: []TierBalance{
			swipes(10),
			{ID: "credits", Label: "Campus Credits", Unit: string(model.UnitMoney), Starting: 500},
		}},
		"off-campus": {Label: "Off Campus", Balances: []TierBalance{
			{ID: "credits", Label: "Campus Credits", Unit: string(model.UnitMoney), Starting: 750},
		}},
	}
}

// ParseWeekday accepts full or three-letter weekday names. Empty means Sunday.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Sunday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", s)
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", common.ErrInvalidConfig, name, err)
	}
	return loc, nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
