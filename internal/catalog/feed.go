// Package catalog loads the static store feed into the catalog store.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/swipes/internal/classification"
	"github.com/Veraticus/swipes/internal/model"
)

// ErrInvalidFeed indicates the feed could not be decoded.
var ErrInvalidFeed = errors.New("invalid catalog feed")

// feedItem mirrors one entry of the store feed.
type feedItem struct {
	Name       string          `json:"name"`
	Department json.RawMessage `json:"department"`
	Price      model.Money     `json:"price"`
	SalePrice  model.Money     `json:"salePrice"`
}

type feedEnvelope struct {
	Items []feedItem `json:"items"`
}

// LoadFeed decodes a feed given either as a bare JSON array or as {"items": [...]}.
// Every item is classified with c. Entries without a name are skipped, and later
// duplicates of a name replace earlier ones.
func LoadFeed(ctx context.Context, r io.Reader, c *classification.Classifier) ([]model.CatalogItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog feed: %w", err)
	}

	raw, err := decodeFeed(data)
	if err != nil {
		return nil, err
	}

	items := make([]model.CatalogItem, 0, len(raw))
	index := make(map[string]int, len(raw))
	for _, fi := range raw {
		name := strings.TrimSpace(fi.Name)
		if name == "" {
			continue
		}
		if fi.Price < 0 || fi.SalePrice < 0 {
			return nil, fmt.Errorf("%w: negative price for %q", ErrInvalidFeed, name)
		}

		item := model.CatalogItem{
			Name:         name,
			DepartmentID: departmentID(fi.Department),
			Price:        fi.Price,
			SalePrice:    fi.SalePrice,
		}

		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			items[i] = item
			continue
		}
		index[key] = len(items)
		items = append(items, item)
	}

	if c != nil {
		if err := c.EnrichBatch(ctx, items); err != nil {
			return nil, err
		}
	}

	return items, nil
}

func decodeFeed(data []byte) ([]feedItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidFeed)
	}

	if trimmed[0] == '[' {
		var items []feedItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFeed, err)
		}
		return items, nil
	}

	var env feedEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFeed, err)
	}
	return env.Items, nil
}

// departmentID accepts the department as either a string or a number.
func departmentID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
