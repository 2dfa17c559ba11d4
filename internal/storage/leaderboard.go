package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/swipes/internal/model"
)

// UpsertLeaderboardEntry writes a user's entry. Nothing is written unless the user's stored
// profile is opted in, and an entry older than the one stored does not replace it.
func (s *SQLiteStorage) UpsertLeaderboardEntry(ctx context.Context, entry model.LeaderboardEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLeaderboardEntry(entry); err != nil {
		return err
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leaderboard (user_id, display_name, photo_url, current_streak, longest_streak, updated_at)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE EXISTS (
			SELECT 1 FROM profiles
			WHERE id = ? AND json_extract(doc, '$.leaderboardOptIn') = 1
		)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			photo_url = excluded.photo_url,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			updated_at = excluded.updated_at
		WHERE excluded.updated_at >= leaderboard.updated_at
	`, entry.UserID, entry.DisplayName, entry.PhotoURL, entry.CurrentStreak, entry.LongestStreak, toMillis(entry.UpdatedAt),
		entry.UserID)
	if err != nil {
		return storeError("upsert leaderboard entry", err)
	}
	return nil
}

// DeleteLeaderboardEntry removes a user's entry. Deleting a missing entry is not an error.
func (s *SQLiteStorage) DeleteLeaderboardEntry(ctx context.Context, userID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM leaderboard WHERE user_id = ?`, userID); err != nil {
		return storeError("delete leaderboard entry", err)
	}
	return nil
}

// ListLeaderboard returns entries ranked by current streak, then longest streak, then name.
// A limit of zero returns every entry.
func (s *SQLiteStorage) ListLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	query := `
		SELECT user_id, display_name, photo_url, current_streak, longest_streak, updated_at
		FROM leaderboard
		ORDER BY current_streak DESC, longest_streak DESC, display_name ASC, user_id ASC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("query leaderboard", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var (
			entry     model.LeaderboardEntry
			updatedAt int64
			photoURL  sql.NullString
		)
		if err := rows.Scan(
			&entry.UserID,
			&entry.DisplayName,
			&photoURL,
			&entry.CurrentStreak,
			&entry.LongestStreak,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.PhotoURL = photoURL.String
		entry.UpdatedAt = fromMillis(updatedAt)
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
