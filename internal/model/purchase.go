package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Purchase validation errors.
var (
	ErrEmptyPurchase   = errors.New("purchase has no line items")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidTotal    = errors.New("total must be a finite non-negative amount")
	ErrMissingDate     = errors.New("purchase date is required")
)

// LineItem is one entry of a purchase.
type LineItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

// Purchase is an immutable, append-only record of spending against one balance type.
type Purchase struct {
	Date             time.Time  `json:"date"`
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	PaymentTypeID    string     `json:"paymentType"`
	Store            string     `json:"store"`
	IdempotencyToken string     `json:"idempotencyToken,omitempty"`
	Items            []LineItem `json:"items"`
	Total            Money      `json:"total"`
}

// Day returns the purchase date truncated to midnight in loc.
func (p *Purchase) Day(loc *time.Location) time.Time {
	return StartOfDay(p.Date, loc)
}

// Validate checks the fields a caller must supply before a purchase is recorded.
func (p *Purchase) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("%w: user id", ErrMissingIdentifier)
	}
	if strings.TrimSpace(p.PaymentTypeID) == "" {
		return fmt.Errorf("%w: payment type", ErrMissingIdentifier)
	}
	if len(p.Items) == 0 {
		return ErrEmptyPurchase
	}
	for i, item := range p.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("item %d: %w: name", i, ErrMissingIdentifier)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d (%s): %w", i, item.Name, ErrInvalidQuantity)
		}
	}
	if !isFiniteNonNegative(float64(p.Total)) {
		return fmt.Errorf("%w: %v", ErrInvalidTotal, float64(p.Total))
	}
	if p.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// StartOfDay returns midnight of t's calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func isFiniteNonNegative(v float64) bool {
	return v >= 0 && v <= 1e12
}
