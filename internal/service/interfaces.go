// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/swipes/internal/model"
)

// HistoryOrder selects the sort direction of purchase history queries.
type HistoryOrder int

const (
	// OrderDateDesc returns the most recent purchase first.
	OrderDateDesc HistoryOrder = iota
	// OrderDateAsc returns the oldest purchase first.
	OrderDateAsc
)

// PurchaseFilter defines filtering options for purchase history queries.
type PurchaseFilter struct {
	Since         *time.Time
	Until         *time.Time
	PaymentTypeID string
	Limit         int
	Order         HistoryOrder
}

// BalanceUpdate is the profile mutation committed together with a purchase.
type BalanceUpdate struct {
	LastLogDate   *time.Time
	UserID        string
	PaymentTypeID string
	NewBalance    float64
	CurrentStreak int
	LongestStreak int
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	SaveUserProfile(ctx context.Context, profile *model.UserProfile) error
}

// PurchaseStore persists the append-only purchase history.
type PurchaseStore interface {
	// AppendPurchase records a purchase. A repeated idempotency token for the same user
	// yields common.ErrDuplicatePurchase and leaves the history unchanged.
	AppendPurchase(ctx context.Context, purchase *model.Purchase) (*model.Purchase, error)
	GetPurchaseByToken(ctx context.Context, userID, token string) (*model.Purchase, error)
	ListPurchaseHistory(ctx context.Context, userID string, filter PurchaseFilter) ([]model.Purchase, error)
}

// BalanceStore applies the balance debit and streak counters of a purchase.
type BalanceStore interface {
	UpdateBalanceAndStreak(ctx context.Context, update BalanceUpdate) error
}

// SubscriptionStore persists subscriptions.
type SubscriptionStore interface {
	SaveSubscription(ctx context.Context, sub *model.Subscription) error
	GetSubscription(ctx context.Context, userID, id string) (*model.Subscription, error)
	ListActiveSubscriptions(ctx context.Context, userID string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context, userID string) ([]model.Subscription, error)
}

// LeaderboardStore persists the public wall of fame. Each user only writes their own entry.
type LeaderboardStore interface {
	UpsertLeaderboardEntry(ctx context.Context, entry model.LeaderboardEntry) error
	DeleteLeaderboardEntry(ctx context.Context, userID string) error
	ListLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

// CatalogStore persists the read-only store catalog.
type CatalogStore interface {
	SaveCatalogItems(ctx context.Context, items []model.CatalogItem) error
	GetCatalogItem(ctx context.Context, name string) (*model.CatalogItem, error)
	SearchCatalog(ctx context.Context, query string, limit int) ([]model.CatalogItem, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	ProfileStore
	PurchaseStore
	BalanceStore
	SubscriptionStore
	LeaderboardStore
	CatalogStore

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction covering the purchase write path.
type Transaction interface {
	ProfileStore
	PurchaseStore
	BalanceStore
	SubscriptionStore

	Commit() error
	Rollback() error
}

// Locker grants at-most-one-in-flight execution per key.
type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (func(), error)
}

// Clock supplies the current time so callers can pin "now" in tests.
type Clock func() time.Time

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}
