package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/Veraticus/swipes/internal/service"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't benefit from multiple connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// NewSnapshotManager creates a snapshot manager for this storage instance.
func (s *SQLiteStorage) NewSnapshotManager() (*SnapshotManager, error) {
	return NewSnapshotManager(s.db, s.dbPath)
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError("begin transaction", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// inTx runs fn inside a transaction that is committed when fn succeeds.
func (s *SQLiteStorage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeError("commit transaction", err)
	}
	return nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return storeError("commit transaction", err)
	}
	return nil
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTransaction) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return t.storage.getUserProfileTx(ctx, t.tx, userID)
}

func (t *sqliteTransaction) SaveUserProfile(ctx context.Context, profile *model.UserProfile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProfile(profile); err != nil {
		return err
	}
	return t.storage.saveUserProfileTx(ctx, t.tx, profile)
}

func (t *sqliteTransaction) AppendPurchase(ctx context.Context, purchase *model.Purchase) (*model.Purchase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validatePurchase(purchase); err != nil {
		return nil, err
	}
	return t.storage.appendPurchaseTx(ctx, t.tx, purchase)
}

func (t *sqliteTransaction) GetPurchaseByToken(ctx context.Context, userID, token string) (*model.Purchase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(token, "token"); err != nil {
		return nil, err
	}
	return t.storage.getPurchaseByTokenTx(ctx, t.tx, userID, token)
}

func (t *sqliteTransaction) ListPurchaseHistory(ctx context.Context, userID string, filter service.PurchaseFilter) ([]model.Purchase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return t.storage.listPurchaseHistoryTx(ctx, t.tx, userID, filter)
}

func (t *sqliteTransaction) UpdateBalanceAndStreak(ctx context.Context, update service.BalanceUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBalanceUpdate(update); err != nil {
		return err
	}
	return t.storage.updateBalanceAndStreakTx(ctx, t.tx, update)
}

func (t *sqliteTransaction) SaveSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}
	return t.storage.saveSubscriptionTx(ctx, t.tx, sub)
}

func (t *sqliteTransaction) GetSubscription(ctx context.Context, userID, id string) (*model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getSubscriptionTx(ctx, t.tx, userID, id)
}

func (t *sqliteTransaction) ListActiveSubscriptions(ctx context.Context, userID string) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return t.storage.listSubscriptionsTx(ctx, t.tx, userID, true)
}

func (t *sqliteTransaction) ListSubscriptions(ctx context.Context, userID string) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return t.storage.listSubscriptionsTx(ctx, t.tx, userID, false)
}

// storeError maps driver errors onto the shared error vocabulary.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: %w: %w", op, common.ErrDuplicateEntry, err)
		case sqliteErr.Code == sqlite3.ErrBusy, sqliteErr.Code == sqlite3.ErrLocked:
			return common.NewTransientError(op, err)
		}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}

// Timestamps are stored as unix milliseconds so range queries compare integers.
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// queryable is an interface satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
