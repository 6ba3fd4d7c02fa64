package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/haatbazar-api/internal/events"
	"github.com/flicky/haatbazar-api/internal/model"
)

// Refresher rebuilds the notification snapshot of a shop.
type Refresher interface {
	Refresh(ctx context.Context, shopID uuid.UUID) ([]model.Notification, error)
	ActiveShops(ctx context.Context) ([]uuid.UUID, error)
}

// OrderEventHandler consumes order events and keeps owner notifications fresh
// without waiting for the next poller tick.
type OrderEventHandler struct {
	notifier       Refresher
	redisClient    *redis.Client
	idempotencyTTL time.Duration
	log            *slog.Logger
}

func NewOrderEventHandler(notifier Refresher, redisClient *redis.Client, idempotencyTTL time.Duration, log *slog.Logger) *OrderEventHandler {
	return &OrderEventHandler{
		notifier:       notifier,
		redisClient:    redisClient,
		idempotencyTTL: idempotencyTTL,
		log:            log,
	}
}

// Handle is an events.Handler.
func (h *OrderEventHandler) Handle(ctx context.Context, ev events.OrderEvent) error {
	log := h.log.With("event_id", ev.ID, "order_id", ev.OrderID, "shop_id", ev.ShopID, "type", ev.Type)

	// Idempotency check via Redis
	key := "event_processed:" + ev.ID.String()
	if h.redisClient != nil {
		exists, err := h.redisClient.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("check idempotency key: %w", err)
		}
		if exists > 0 {
			log.Info("event already processed, skipping")
			return nil
		}
	}

	switch ev.Type {
	case events.OrderCreated, events.OrderStatusChanged:
		if _, err := h.notifier.Refresh(ctx, ev.ShopID); err != nil {
			return fmt.Errorf("refresh notifications: %w", err)
		}
	default:
		log.Warn("unknown event type, ignoring")
	}

	if h.redisClient != nil {
		if err := h.redisClient.Set(ctx, key, "1", h.idempotencyTTL).Err(); err != nil {
			log.Error("set idempotency key", "error", err)
		}
	}
	log.Info("event processed")
	return nil
}
