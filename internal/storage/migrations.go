package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS profiles (
					id TEXT PRIMARY KEY,
					display_name TEXT NOT NULL DEFAULT '',
					doc TEXT NOT NULL,
					created_at INTEGER NOT NULL,
					updated_at INTEGER NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS purchases (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					idempotency_token TEXT,
					payment_type_id TEXT NOT NULL,
					purchased_at INTEGER NOT NULL,
					total REAL NOT NULL,
					doc TEXT NOT NULL,
					created_at INTEGER NOT NULL,
					FOREIGN KEY (user_id) REFERENCES profiles(id)
				)`,
				`CREATE UNIQUE INDEX idx_purchases_token ON purchases(user_id, idempotency_token)`,
				`CREATE INDEX idx_purchases_user_date ON purchases(user_id, purchased_at)`,

				`CREATE TABLE IF NOT EXISTS subscriptions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					status TEXT NOT NULL,
					start_date INTEGER NOT NULL,
					doc TEXT NOT NULL,
					FOREIGN KEY (user_id) REFERENCES profiles(id)
				)`,
				`CREATE INDEX idx_subscriptions_user_status ON subscriptions(user_id, status)`,

				`CREATE TABLE IF NOT EXISTS leaderboard (
					user_id TEXT PRIMARY KEY,
					display_name TEXT NOT NULL DEFAULT '',
					photo_url TEXT NOT NULL DEFAULT '',
					current_streak INTEGER NOT NULL DEFAULT 0,
					longest_streak INTEGER NOT NULL DEFAULT 0,
					updated_at INTEGER NOT NULL
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add catalog items",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS catalog_items (
					name_key TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					category TEXT NOT NULL DEFAULT '',
					glyph TEXT NOT NULL DEFAULT '',
					department_id TEXT NOT NULL DEFAULT '',
					price REAL NOT NULL DEFAULT 0,
					sale_price REAL NOT NULL DEFAULT 0,
					updated_at INTEGER NOT NULL
				)`,
				`CREATE INDEX idx_catalog_category ON catalog_items(category)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Index leaderboard ranking order",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_leaderboard_rank
				ON leaderboard(current_streak DESC, longest_streak DESC, display_name)
			`)
			return err
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
