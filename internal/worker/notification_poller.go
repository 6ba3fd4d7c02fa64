package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/flicky/haatbazar-api/internal/metrics"
)

// NotificationPoller recomputes every active shop's notifications on a fixed
// interval. Each tick starts from the database, never from the last result.
type NotificationPoller struct {
	notifier Refresher
	interval time.Duration
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewNotificationPoller(notifier Refresher, interval time.Duration, m *metrics.Metrics, log *slog.Logger) *NotificationPoller {
	return &NotificationPoller{notifier: notifier, interval: interval, metrics: m, log: log}
}

// Run blocks until ctx is cancelled.
func (p *NotificationPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("notification poller started", "interval", p.interval)
	for {
		p.Tick(ctx)
		select {
		case <-ctx.Done():
			p.log.Info("notification poller stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick refreshes every shop with pending orders in the window. A failing shop
// does not stop the others.
func (p *NotificationPoller) Tick(ctx context.Context) {
	if p.metrics != nil {
		p.metrics.PollerRuns.Inc()
	}
	shops, err := p.notifier.ActiveShops(ctx)
	if err != nil {
		p.log.Error("list active shops", "error", err)
		return
	}
	for _, id := range shops {
		if ctx.Err() != nil {
			return
		}
		if _, err := p.notifier.Refresh(ctx, id); err != nil {
			p.log.Error("refresh notifications", "shop_id", id, "error", err)
		}
	}
}
