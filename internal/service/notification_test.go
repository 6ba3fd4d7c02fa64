package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/haatbazar-api/internal/model"
)

func TestNotificationService_PendingWindow(t *testing.T) {
	carts := newMockCartRepo()
	orders := newMockOrderRepo(carts)
	shops := newMockShopRepo()
	owner := uuid.New()
	shop := shops.add(owner, "FreshBite", 23.8, 90.4)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	seed := func(name string, status model.OrderStatus, age time.Duration) {
		o := &model.Order{ShopID: shop.ID, CustomerName: name, Status: status, CreatedAt: now.Add(-age)}
		require.NoError(t, orders.CreateAndClearCart(context.Background(), o, uuid.New(), nil))
	}
	seed("Rahim", model.OrderStatusPending, time.Minute)
	seed("Karim", model.OrderStatusPending, 15*time.Minute)
	seed("Salma", model.OrderStatusConfirmed, time.Minute)

	svc := NewNotificationService(orders, shops, nil, 10*time.Minute, 10*time.Second)
	svc.now = func() time.Time { return now }

	list, err := svc.ForOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "New Order from Rahim", list[0].Message)
	assert.Equal(t, shop.ID, list[0].ShopID)

	// Recomputed on every call, so repeated polls keep returning it.
	again, err := svc.ForOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, list, again)

	active, err := svc.ActiveShops(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{shop.ID}, active)

	_, err = svc.ForOwner(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestNotificationService_SnapshotClearedAfterConfirm(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	orders := newMockOrderRepo(newMockCartRepo())
	shops := newMockShopRepo()
	owner := uuid.New()
	shop := shops.add(owner, "FreshBite", 23.8, 90.4)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	order := &model.Order{ShopID: shop.ID, CustomerName: "Rahim", Status: model.OrderStatusPending, CreatedAt: now.Add(-time.Minute)}
	require.NoError(t, orders.CreateAndClearCart(context.Background(), order, uuid.New(), nil))

	svc := NewNotificationService(orders, shops, rdb, 10*time.Minute, time.Minute)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := svc.Refresh(ctx, shop.ID)
	require.NoError(t, err)
	list, err := svc.ForOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, mr.Exists(notificationKey(shop.ID)))

	require.NoError(t, orders.UpdateStatus(ctx, order, model.OrderStatusConfirmed))

	// No pending orders remain, but the shop is still listed for one more refresh.
	active, err := svc.ActiveShops(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{shop.ID}, active)

	for _, id := range active {
		_, err := svc.Refresh(ctx, id)
		require.NoError(t, err)
	}
	list, err = svc.ForOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	active, err = svc.ActiveShops(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestNotificationService_ActiveShopsAfterAgeOut(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	orders := newMockOrderRepo(newMockCartRepo())
	shops := newMockShopRepo()
	owner := uuid.New()
	shop := shops.add(owner, "FreshBite", 23.8, 90.4)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, orders.CreateAndClearCart(context.Background(),
		&model.Order{ShopID: shop.ID, CustomerName: "Rahim", Status: model.OrderStatusPending, CreatedAt: now}, uuid.New(), nil))

	svc := NewNotificationService(orders, shops, rdb, 10*time.Minute, time.Hour)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := svc.Refresh(ctx, shop.ID)
	require.NoError(t, err)

	now = now.Add(11 * time.Minute)
	active, err := svc.ActiveShops(ctx)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{shop.ID}, active)

	_, err = svc.Refresh(ctx, shop.ID)
	require.NoError(t, err)
	list, err := svc.ForOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}
