package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/swipes/internal/common"
	"github.com/Veraticus/swipes/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubscription(userID, name string, start time.Time) *model.Subscription {
	return &model.Subscription{
		UserID:    userID,
		Status:    model.SubscriptionActive,
		StartDate: start,
		Quantity:  2,
		Item:      model.CatalogItem{Name: name, Category: "Drinks", Price: 3.5},
	}
}

func TestSubscriptions_Lifecycle(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	createTestProfile(t, store, "u1")

	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	water := testSubscription("u1", "Sparkling Water 12pk", start)
	coffee := testSubscription("u1", "Cold Brew", start.AddDate(0, 0, 1))
	require.NoError(t, store.SaveSubscription(ctx, water))
	require.NoError(t, store.SaveSubscription(ctx, coffee))
	require.NotEmpty(t, water.ID)

	active, err := store.ListActiveSubscriptions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, water.ID, active[0].ID)

	got, err := store.GetSubscription(ctx, "u1", water.ID)
	require.NoError(t, err)
	require.NoError(t, got.End(start.AddDate(0, 0, 7)))
	require.NoError(t, store.SaveSubscription(ctx, got))

	active, err = store.ListActiveSubscriptions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, coffee.ID, active[0].ID)

	all, err := store.ListSubscriptions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.SubscriptionEnded, all[0].Status)
	require.NotNil(t, all[0].EndDate)
}

func TestSubscriptions_Errors(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	createTestProfile(t, store, "u1")
	createTestProfile(t, store, "u2")

	sub := testSubscription("u1", "Cold Brew", time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.SaveSubscription(ctx, sub))

	_, err := store.GetSubscription(ctx, "u2", sub.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	stolen := *sub
	stolen.UserID = "u2"
	assert.ErrorIs(t, store.SaveSubscription(ctx, &stolen), common.ErrNotFound)

	inconsistent := testSubscription("u1", "Bagel", time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	inconsistent.Status = model.SubscriptionEnded
	assert.ErrorIs(t, store.SaveSubscription(ctx, inconsistent), common.ErrValidation)
}
