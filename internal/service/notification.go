package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/haatbazar-api/internal/model"
	"github.com/flicky/haatbazar-api/internal/repository"
)

// NotificationService derives the "new order" list an owner sees. The list is
// recomputed from scratch each time: a pending order shows up on every poll
// until it leaves PENDING or ages out of the window.
type NotificationService struct {
	orderRepo   repository.OrderRepository
	shopRepo    repository.ShopRepository
	redisClient *redis.Client
	window      time.Duration
	snapshotTTL time.Duration
	now         func() time.Time
}

func NewNotificationService(
	orderRepo repository.OrderRepository,
	shopRepo repository.ShopRepository,
	redisClient *redis.Client,
	window, pollInterval time.Duration,
) *NotificationService {
	return &NotificationService{
		orderRepo: orderRepo, shopRepo: shopRepo, redisClient: redisClient,
		window: window, snapshotTTL: 2 * pollInterval, now: time.Now,
	}
}

// Pending recomputes the notification list for a shop.
func (s *NotificationService) Pending(ctx context.Context, shopID uuid.UUID) ([]model.Notification, error) {
	orders, err := s.orderRepo.ListPendingSince(ctx, shopID, s.now().Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	out := make([]model.Notification, 0, len(orders))
	for _, o := range orders {
		out = append(out, model.Notification{
			OrderID:   o.ID,
			ShopID:    o.ShopID,
			Message:   "New Order from " + o.CustomerName,
			CreatedAt: o.CreatedAt,
		})
	}
	return out, nil
}

// ActiveShops lists shops that have pending orders, plus shops whose stored
// snapshot is still non-empty so the next refresh can clear it.
func (s *NotificationService) ActiveShops(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.orderRepo.ShopsWithPendingSince(ctx, s.now().Add(-s.window))
	if err != nil {
		return nil, fmt.Errorf("list active shops: %w", err)
	}
	if s.redisClient == nil {
		return ids, nil
	}

	members, err := s.redisClient.SMembers(ctx, activeShopsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read active shops: %w", err)
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// Refresh recomputes a shop's list and stores it as the current snapshot.
func (s *NotificationService) Refresh(ctx context.Context, shopID uuid.UUID) ([]model.Notification, error) {
	list, err := s.Pending(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if s.redisClient != nil {
		data, err := json.Marshal(list)
		if err != nil {
			return nil, fmt.Errorf("marshal notifications: %w", err)
		}
		_, err = s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, notificationKey(shopID), data, s.snapshotTTL)
			if len(list) > 0 {
				pipe.SAdd(ctx, activeShopsKey, shopID.String())
			} else {
				pipe.SRem(ctx, activeShopsKey, shopID.String())
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("store notifications: %w", err)
		}
	}
	return list, nil
}

// ForOwner returns the latest snapshot for the owner's shop, recomputing when
// the poller has not produced one.
func (s *NotificationService) ForOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Notification, error) {
	shop, err := s.shopRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get owner shop: %w", err)
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, notificationKey(shop.ID)).Result()
		switch {
		case err == nil:
			var list []model.Notification
			if json.Unmarshal([]byte(cached), &list) == nil {
				return list, nil
			}
		case !errors.Is(err, redis.Nil):
			return nil, fmt.Errorf("read notifications: %w", err)
		}
	}
	return s.Refresh(ctx, shop.ID)
}

// activeShopsKey holds the ids of shops whose last snapshot was non-empty.
const activeShopsKey = "notifications:active"

func notificationKey(shopID uuid.UUID) string { return "notifications:" + shopID.String() }
