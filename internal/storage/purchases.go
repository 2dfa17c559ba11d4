package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/Veraticus/swipes/internal/service"
	"github.com/google/uuid"
)

// AppendPurchase records a purchase and returns the stored copy with its id assigned.
func (s *SQLiteStorage) AppendPurchase(ctx context.Context, purchase *model.Purchase) (*model.Purchase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validatePurchase(purchase); err != nil {
		return nil, err
	}

	var stored *model.Purchase
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		stored, txErr = s.appendPurchaseTx(ctx, tx, purchase)
		return txErr
	})
	// On a duplicate token stored holds the originally recorded purchase.
	return stored, err
}

func (s *SQLiteStorage) appendPurchaseTx(ctx context.Context, q queryable, purchase *model.Purchase) (*model.Purchase, error) {
	stored := *purchase
	stored.Items = append([]model.LineItem(nil), purchase.Items...)
	stored.IdempotencyToken = strings.TrimSpace(stored.IdempotencyToken)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	doc, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode purchase: %w", err)
	}

	var token sql.NullString
	if stored.IdempotencyToken != "" {
		token = sql.NullString{String: stored.IdempotencyToken, Valid: true}
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO purchases (id, user_id, idempotency_token, payment_type_id, purchased_at, total, doc, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, stored.ID, stored.UserID, token, stored.PaymentTypeID, toMillis(stored.Date),
		stored.Total.Float(), string(doc), toMillis(time.Now()))
	if err != nil {
		err = storeError("append purchase", err)
		if errors.Is(err, common.ErrDuplicateEntry) && token.Valid {
			existing, getErr := s.getPurchaseByTokenTx(ctx, q, stored.UserID, token.String)
			if getErr != nil {
				return nil, fmt.Errorf("%w: %w", common.ErrDuplicatePurchase, getErr)
			}
			return existing, fmt.Errorf("%w: token %s", common.ErrDuplicatePurchase, token.String)
		}
		return nil, err
	}

	return &stored, nil
}

// GetPurchaseByToken returns the purchase recorded under an idempotency token.
func (s *SQLiteStorage) GetPurchaseByToken(ctx context.Context, userID, token string) (*model.Purchase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(token, "token"); err != nil {
		return nil, err
	}
	return s.getPurchaseByTokenTx(ctx, s.db, userID, token)
}

func (s *SQLiteStorage) getPurchaseByTokenTx(ctx context.Context, q queryable, userID, token string) (*model.Purchase, error) {
	var doc string
	err := q.QueryRowContext(ctx, `
		SELECT doc FROM purchases WHERE user_id = ? AND idempotency_token = ?
	`, userID, strings.TrimSpace(token)).Scan(&doc)
	if err != nil {
		return nil, storeError("get purchase by token", err)
	}
	return decodePurchase(doc)
}

// ListPurchaseHistory returns a user's purchases, newest first unless the filter asks otherwise.
// Since is inclusive and Until is exclusive.
func (s *SQLiteStorage) ListPurchaseHistory(ctx context.Context, userID string, filter service.PurchaseFilter) ([]model.Purchase, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.listPurchaseHistoryTx(ctx, s.db, userID, filter)
}

func (s *SQLiteStorage) listPurchaseHistoryTx(ctx context.Context, q queryable, userID string, filter service.PurchaseFilter) ([]model.Purchase, error) {
	query := `SELECT doc FROM purchases WHERE user_id = ?`
	args := []any{userID}

	if filter.PaymentTypeID != "" {
		query += ` AND payment_type_id = ?`
		args = append(args, filter.PaymentTypeID)
	}
	if filter.Since != nil {
		query += ` AND purchased_at >= ?`
		args = append(args, toMillis(*filter.Since))
	}
	if filter.Until != nil {
		query += ` AND purchased_at < ?`
		args = append(args, toMillis(*filter.Until))
	}

	if filter.Order == service.OrderDateAsc {
		query += ` ORDER BY purchased_at ASC, created_at ASC`
	} else {
		query += ` ORDER BY purchased_at DESC, created_at DESC`
	}

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("query purchases", err)
	}
	defer func() { _ = rows.Close() }()

	var purchases []model.Purchase
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		p, err := decodePurchase(doc)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, *p)
	}

	return purchases, rows.Err()
}

func decodePurchase(doc string) (*model.Purchase, error) {
	var p model.Purchase
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("failed to decode purchase: %w", err)
	}
	return &p, nil
}
