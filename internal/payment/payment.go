// Package payment settles checkout payments. There is no gateway: UPI is
// verified by waiting a fixed delay, cash and QR are collected later.
package payment

import (
	"context"
	"time"

	"github.com/flicky/haatbazar-api/internal/model"
)

type Settlement struct {
	Status  model.PaymentStatus
	Advance int64
}

// Settler decides the payment state of a new order.
type Settler interface {
	Settle(ctx context.Context, method model.PaymentMethod, total, advance int64) (Settlement, error)
}

type Simulator struct {
	Delay time.Duration
}

func NewSimulator(delay time.Duration) *Simulator {
	return &Simulator{Delay: delay}
}

// Settle blocks for Delay on UPI and returns ctx.Err() if cancelled first.
func (s *Simulator) Settle(ctx context.Context, method model.PaymentMethod, total, advance int64) (Settlement, error) {
	if method != model.PaymentUPI {
		return Settlement{Status: model.PaymentUnpaid}, nil
	}

	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return Settlement{}, ctx.Err()
		}
	}

	if advance <= 0 || advance > total {
		advance = total
	}
	return Settlement{Status: model.PaymentPaid, Advance: advance}, nil
}
