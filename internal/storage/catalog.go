package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/swipes/internal/model"
)

const defaultSearchLimit = 25

// SaveCatalogItems upserts items keyed by their case-folded name.
func (s *SQLiteStorage) SaveCatalogItems(ctx context.Context, items []model.CatalogItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCatalogItems(items); err != nil {
		return err
	}

	now := toMillis(time.Now())
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO catalog_items (name_key, name, category, glyph, department_id, price, sale_price, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(name_key) DO UPDATE SET
				name = excluded.name,
				category = excluded.category,
				glyph = excluded.glyph,
				department_id = excluded.department_id,
				price = excluded.price,
				sale_price = excluded.sale_price,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, item := range items {
			name := strings.TrimSpace(item.Name)
			if _, err := stmt.ExecContext(ctx,
				catalogKey(name), name, item.Category, item.Glyph, item.DepartmentID,
				item.Price.Float(), item.SalePrice.Float(), now,
			); err != nil {
				return storeError("save catalog item "+name, err)
			}
		}
		return nil
	})
}

// GetCatalogItem looks up an item by name, ignoring case.
func (s *SQLiteStorage) GetCatalogItem(ctx context.Context, name string) (*model.CatalogItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT name, category, glyph, department_id, price, sale_price
		FROM catalog_items
		WHERE name_key = ?
	`, catalogKey(name))

	item, err := scanCatalogItem(row)
	if err != nil {
		return nil, storeError("get catalog item "+name, err)
	}
	return item, nil
}

// SearchCatalog returns items whose name contains query, ignoring case.
func (s *SQLiteStorage) SearchCatalog(ctx context.Context, query string, limit int) ([]model.CatalogItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if limit == 0 {
		limit = defaultSearchLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, category, glyph, department_id, price, sale_price
		FROM catalog_items
		WHERE name_key LIKE ? ESCAPE '\'
		ORDER BY name_key
		LIMIT ?
	`, "%"+escapeLike(catalogKey(query))+"%", limit)
	if err != nil {
		return nil, storeError("search catalog", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.CatalogItem
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCatalogItem(row rowScanner) (*model.CatalogItem, error) {
	var (
		item             model.CatalogItem
		price, salePrice float64
	)
	if err := row.Scan(&item.Name, &item.Category, &item.Glyph, &item.DepartmentID, &price, &salePrice); err != nil {
		return nil, err
	}
	item.Price = model.Money(price)
	item.SalePrice = model.Money(salePrice)
	return &item, nil
}

func catalogKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
