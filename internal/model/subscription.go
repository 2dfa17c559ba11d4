package model

import (
	"errors"
	"fmt"
	"time"
)

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	// SubscriptionActive subscriptions are counted in projections.
	SubscriptionActive SubscriptionStatus = "active"
	// SubscriptionEnded subscriptions carry an end date and are ignored by projections.
	SubscriptionEnded SubscriptionStatus = "ended"
)

// ErrSubscriptionState reports a status/endDate mismatch or an invalid transition.
var ErrSubscriptionState = errors.New("invalid subscription state")

// Subscription is a recurring weekly purchase of one catalog item.
type Subscription struct {
	StartDate time.Time          `json:"startDate"`
	EndDate   *time.Time         `json:"endDate,omitempty"`
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	Status    SubscriptionStatus `json:"status"`
	Item      CatalogItem        `json:"item"`
	Quantity  int                `json:"quantity"`
}

// WeeklyCost is the unit price times quantity.
func (s *Subscription) WeeklyCost() float64 {
	return Round2(s.Item.EffectivePrice() * float64(s.Quantity))
}

// IsActive reports whether the subscription counts toward projections.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionActive
}

// End transitions an active subscription to ended at the given time.
func (s *Subscription) End(at time.Time) error {
	if s.Status != SubscriptionActive {
		return fmt.Errorf("%w: subscription %s is %s", ErrSubscriptionState, s.ID, s.Status)
	}
	end := at
	s.Status = SubscriptionEnded
	s.EndDate = &end
	return nil
}

// Validate enforces that EndDate is set if and only if the subscription has ended.
func (s *Subscription) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("%w: user id", ErrMissingIdentifier)
	}
	if s.Quantity <= 0 {
		return fmt.Errorf("subscription %s: %w", s.ID, ErrInvalidQuantity)
	}
	switch s.Status {
	case SubscriptionActive:
		if s.EndDate != nil {
			return fmt.Errorf("%w: active subscription has an end date", ErrSubscriptionState)
		}
	case SubscriptionEnded:
		if s.EndDate == nil {
			return fmt.Errorf("%w: ended subscription has no end date", ErrSubscriptionState)
		}
	default:
		return fmt.Errorf("%w: unknown status %q", ErrSubscriptionState, s.Status)
	}
	return nil
}
