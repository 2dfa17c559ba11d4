package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SnapshotManager keeps point-in-time copies of the ledger database, for example
// before a semester rollover or a bulk catalog import.
type SnapshotManager struct {
	db           *sql.DB
	dbPath       string
	snapshotsDir string
}

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	ID            string         `json:"id"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
}

// Snapshot errors.
var (
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrSnapshotCorrupted = errors.New("snapshot integrity check failed")
	ErrSnapshotExists    = errors.New("snapshot already exists")
	ErrInvalidSnapshotID = errors.New("invalid snapshot id: cannot contain path separators or quotes")
)

var snapshotTables = []string{"profiles", "purchases", "subscriptions", "leaderboard", "catalog_items"}

// NewSnapshotManager creates a snapshot manager that stores copies next to dbPath.
func NewSnapshotManager(db *sql.DB, dbPath string) (*SnapshotManager, error) {
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	snapshotsDir := filepath.Join(filepath.Dir(absPath), "snapshots")

	if err := os.MkdirAll(snapshotsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}

	return &SnapshotManager{
		db:           db,
		dbPath:       absPath,
		snapshotsDir: snapshotsDir,
	}, nil
}

// Create writes a consistent copy of the database under the given id.
func (sm *SnapshotManager) Create(ctx context.Context, id, description string) (*SnapshotInfo, error) {
	if id == "" {
		id = fmt.Sprintf("snapshot-%s", time.Now().Format("2006-01-02-150405"))
	}
	if err := validateSnapshotID(id); err != nil {
		return nil, err
	}

	snapshotPath := sm.dataPath(id)
	if _, err := os.Stat(snapshotPath); err == nil {
		return nil, ErrSnapshotExists
	}

	var schemaVersion int
	if err := sm.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&schemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	rowCounts := sm.collectRowCounts(ctx)

	if _, err := sm.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	// #nosec G201 - id is validated and quotes in the directory are escaped
	quoted := strings.ReplaceAll(snapshotPath, "'", "''")
	if _, err := sm.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", quoted)); err != nil {
		return nil, fmt.Errorf("failed to copy database: %w", err)
	}

	stat, err := os.Stat(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	info := SnapshotInfo{
		ID:            id,
		CreatedAt:     time.Now(),
		Description:   description,
		FileSize:      stat.Size(),
		RowCounts:     rowCounts,
		SchemaVersion: schemaVersion,
	}

	if err := sm.saveMetadata(info); err != nil {
		if rmErr := os.Remove(snapshotPath); rmErr != nil {
			slog.Error("failed to remove snapshot after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	return &info, nil
}

// List returns all snapshots, newest first.
func (sm *SnapshotManager) List(_ context.Context) ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(sm.snapshotsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots directory: %w", err)
	}

	snapshots := make([]SnapshotInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}
		info, err := sm.loadMetadata(strings.TrimSuffix(entry.Name(), ".meta.json"))
		if err != nil {
			slog.Debug("skipping unreadable snapshot metadata", "file", entry.Name(), "error", err)
			continue
		}
		snapshots = append(snapshots, *info)
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})

	return snapshots, nil
}

// Restore replaces the database file with a snapshot. The storage that owns the
// connection is closed by this call and must be reopened afterwards.
func (sm *SnapshotManager) Restore(_ context.Context, id string) error {
	if err := validateSnapshotID(id); err != nil {
		return err
	}

	snapshotPath := sm.dataPath(id)
	if _, err := os.Stat(snapshotPath); err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to access snapshot: %w", err)
	}

	if err := verifyIntegrity(snapshotPath); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotCorrupted, err)
	}

	if err := sm.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	backupPath := sm.dbPath + ".restore-backup"
	if err := copyFile(sm.dbPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup current database: %w", err)
	}

	if err := copyFile(snapshotPath, sm.dbPath); err != nil {
		if restoreErr := copyFile(backupPath, sm.dbPath); restoreErr != nil {
			slog.Error("failed to put back the original database", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	// Stale WAL files belong to the replaced database.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(sm.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove stale WAL file", "error", err)
		}
	}

	if err := os.Remove(backupPath); err != nil {
		slog.Error("failed to remove backup file", "error", err)
	}

	return nil
}

// Delete removes a snapshot and its metadata.
func (sm *SnapshotManager) Delete(_ context.Context, id string) error {
	if err := validateSnapshotID(id); err != nil {
		return err
	}

	if err := os.Remove(sm.dataPath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to remove snapshot file: %w", err)
	}

	if err := os.Remove(sm.metaPath(id)); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "id", id)
	}

	return nil
}

func (sm *SnapshotManager) dataPath(id string) string {
	return filepath.Join(sm.snapshotsDir, id+".db")
}

func (sm *SnapshotManager) metaPath(id string) string {
	return filepath.Join(sm.snapshotsDir, id+".meta.json")
}

func (sm *SnapshotManager) collectRowCounts(ctx context.Context) map[string]int {
	counts := make(map[string]int, len(snapshotTables))
	for _, table := range snapshotTables {
		var count int
		// #nosec G201 - table names come from a fixed list
		if err := sm.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			// Table might not exist in older schemas
			continue
		}
		counts[table] = count
	}
	return counts
}

func (sm *SnapshotManager) saveMetadata(info SnapshotInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	path := sm.metaPath(info.ID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (sm *SnapshotManager) loadMetadata(id string) (*SnapshotInfo, error) {
	data, err := os.ReadFile(sm.metaPath(id))
	if err != nil {
		return nil, err
	}

	var info SnapshotInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func validateSnapshotID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, `/\'";`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidSnapshotID, id)
	}
	return nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// copyFile copies src to dst through a temporary file and an atomic rename.
func copyFile(src, dst string) error {
	source, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	tmpDst := dst + ".tmp"
	destination, err := os.Create(filepath.Clean(tmpDst))
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		_ = os.Remove(tmpDst)
		return err
	}
	if err := destination.Close(); err != nil {
		_ = os.Remove(tmpDst)
		return err
	}

	return os.Rename(tmpDst, dst)
}
