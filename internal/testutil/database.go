// Package testutil provides test utilities for swipes: isolated SQLite databases
// and seeded fixtures.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Veraticus/swipes/internal/model"
	"github.com/Veraticus/swipes/internal/service"
	"github.com/Veraticus/swipes/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Profiles       []*model.UserProfile
	Catalog        []model.CatalogItem
	SkipMigrations bool
}

// SetupTestDB creates a migrated database under t.TempDir, seeded with profiles.
// It automatically handles cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		profiles.New("u1").WithTier("first-year").Build(),
//	)
func SetupTestDB(t *testing.T, seed ...*model.UserProfile) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Profiles: seed})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "swipes-test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	for _, p := range opts.Profiles {
		if err := store.SaveUserProfile(ctx, p); err != nil {
			t.Fatalf("failed to seed profile %q: %v", p.ID, err)
		}
	}

	if len(opts.Catalog) > 0 {
		if err := store.SaveCatalogItems(ctx, opts.Catalog); err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustGetProfile returns the stored profile or fails the test.
func (db *TestDB) MustGetProfile(userID string) *model.UserProfile {
	db.t.Helper()
	p, err := db.Storage.GetUserProfile(context.Background(), userID)
	if err != nil {
		db.t.Fatalf("failed to load profile %q: %v", userID, err)
	}
	return p
}

// MustListPurchases returns a user's purchases, newest first, or fails the test.
func (db *TestDB) MustListPurchases(userID string) []model.Purchase {
	db.t.Helper()
	purchases, err := db.Storage.ListPurchaseHistory(context.Background(), userID, service.PurchaseFilter{})
	if err != nil {
		db.t.Fatalf("failed to list purchases for %q: %v", userID, err)
	}
	return purchases
}

// WithTransaction executes the given function within a database transaction.
// The transaction is always rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
