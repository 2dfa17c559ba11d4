package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/swipes/internal/model"
	"github.com/google/uuid"
)

// SaveSubscription creates or replaces a subscription. A missing id is generated.
func (s *SQLiteStorage) SaveSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.saveSubscriptionTx(ctx, tx, sub)
	})
}

func (s *SQLiteStorage) saveSubscriptionTx(ctx context.Context, q queryable, sub *model.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	doc, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to encode subscription: %w", err)
	}

	// A subscription never moves between users.
	result, err := q.ExecContext(ctx, `
		INSERT INTO subscriptions (id, user_id, status, start_date, doc)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			start_date = excluded.start_date,
			doc = excluded.doc
		WHERE subscriptions.user_id = excluded.user_id
	`, sub.ID, sub.UserID, string(sub.Status), toMillis(sub.StartDate), string(doc))
	if err != nil {
		return storeError("save subscription", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return storeError("save subscription "+sub.ID, sql.ErrNoRows)
	}
	return nil
}

// GetSubscription returns one of a user's subscriptions.
func (s *SQLiteStorage) GetSubscription(ctx context.Context, userID, id string) (*model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getSubscriptionTx(ctx, s.db, userID, id)
}

func (s *SQLiteStorage) getSubscriptionTx(ctx context.Context, q queryable, userID, id string) (*model.Subscription, error) {
	var doc string
	err := q.QueryRowContext(ctx, `
		SELECT doc FROM subscriptions WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&doc)
	if err != nil {
		return nil, storeError("get subscription "+id, err)
	}
	return decodeSubscription(doc)
}

// ListActiveSubscriptions returns a user's active subscriptions in start order.
func (s *SQLiteStorage) ListActiveSubscriptions(ctx context.Context, userID string) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return s.listSubscriptionsTx(ctx, s.db, userID, true)
}

// ListSubscriptions returns all of a user's subscriptions in start order.
func (s *SQLiteStorage) ListSubscriptions(ctx context.Context, userID string) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return s.listSubscriptionsTx(ctx, s.db, userID, false)
}

func (s *SQLiteStorage) listSubscriptionsTx(ctx context.Context, q queryable, userID string, activeOnly bool) ([]model.Subscription, error) {
	query := `SELECT doc FROM subscriptions WHERE user_id = ?`
	args := []any{userID}
	if activeOnly {
		query += ` AND status = ?`
		args = append(args, string(model.SubscriptionActive))
	}
	query += ` ORDER BY start_date, id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("query subscriptions", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []model.Subscription
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		sub, err := decodeSubscription(doc)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}

	return subs, rows.Err()
}

func decodeSubscription(doc string) (*model.Subscription, error) {
	var sub model.Subscription
	if err := json.Unmarshal([]byte(doc), &sub); err != nil {
		return nil, fmt.Errorf("failed to decode subscription: %w", err)
	}
	return &sub, nil
}
