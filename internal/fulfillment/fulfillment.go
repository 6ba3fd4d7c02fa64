// Package fulfillment is the order state machine. Every order follows one of
// three paths chosen at creation:
//
//	PICKUP:        PENDING -> CONFIRMED -> READY -> COMPLETED
//	HOME_DELIVERY: PENDING -> CONFIRMED -> DISPATCHED -> OUT_FOR_DELIVERY -> DELIVERED
//	SERVICE_VISIT: PENDING -> CONFIRMED -> ACCEPTED -> COMPLETED
//
// A pending order may also be REJECTED by the owner or CANCELLED by the customer.
package fulfillment

import (
	"errors"
	"fmt"

	"github.com/flicky/haatbazar-api/internal/model"
)

var ErrInvalidTransition = errors.New("invalid status transition")

type Action string

const (
	ActionAccept      Action = "ACCEPT"
	ActionReject      Action = "REJECT"
	ActionCancel      Action = "CANCEL"
	ActionMarkReady   Action = "MARK_READY"
	ActionDispatch    Action = "DISPATCH"
	ActionStartTravel Action = "START_TRAVEL"
	ActionDepart      Action = "DEPART"
	ActionDeliver     Action = "DELIVER"
	ActionComplete    Action = "COMPLETE"
)

type edge struct {
	from   model.OrderStatus
	action Action
}

// shared edges apply to every kind.
var shared = map[edge]model.OrderStatus{
	{model.OrderStatusPending, ActionAccept}: model.OrderStatusConfirmed,
	{model.OrderStatusPending, ActionReject}: model.OrderStatusRejected,
	{model.OrderStatusPending, ActionCancel}: model.OrderStatusCancelled,
}

var byKind = map[model.FulfillmentKind]map[edge]model.OrderStatus{
	model.FulfillmentPickup: {
		{model.OrderStatusConfirmed, ActionMarkReady}: model.OrderStatusReady,
		{model.OrderStatusReady, ActionComplete}:      model.OrderStatusCompleted,
	},
	model.FulfillmentHomeDelivery: {
		{model.OrderStatusConfirmed, ActionDispatch}:     model.OrderStatusDispatched,
		{model.OrderStatusDispatched, ActionDepart}:      model.OrderStatusOutForDelivery,
		{model.OrderStatusOutForDelivery, ActionDeliver}: model.OrderStatusDelivered,
	},
	model.FulfillmentServiceVisit: {
		{model.OrderStatusConfirmed, ActionStartTravel}: model.OrderStatusAccepted,
		{model.OrderStatusAccepted, ActionComplete}:     model.OrderStatusCompleted,
	},
}

// KindFor picks the fulfillment path for a new order.
func KindFor(bt model.BusinessType, isDelivery bool) model.FulfillmentKind {
	switch {
	case bt == model.BusinessService:
		return model.FulfillmentServiceVisit
	case isDelivery:
		return model.FulfillmentHomeDelivery
	default:
		return model.FulfillmentPickup
	}
}

// Next applies action to state along the kind's path.
func Next(state model.OrderStatus, kind model.FulfillmentKind, action Action) (model.OrderStatus, error) {
	e := edge{state, action}
	if to, ok := shared[e]; ok {
		return to, nil
	}
	if to, ok := byKind[kind][e]; ok {
		return to, nil
	}
	return state, fmt.Errorf("%w: %s on %s order in %s", ErrInvalidTransition, action, kind, state)
}

// ActionFor finds the single action that moves state to target.
func ActionFor(state model.OrderStatus, kind model.FulfillmentKind, target model.OrderStatus) (Action, error) {
	for e, to := range shared {
		if e.from == state && to == target {
			return e.action, nil
		}
	}
	for e, to := range byKind[kind] {
		if e.from == state && to == target {
			return e.action, nil
		}
	}
	return "", fmt.Errorf("%w: %s -> %s on %s order", ErrInvalidTransition, state, target, kind)
}

// Advance validates a one-step move from state to target.
func Advance(state model.OrderStatus, kind model.FulfillmentKind, target model.OrderStatus) error {
	_, err := ActionFor(state, kind, target)
	return err
}

// Allowed returns the statuses reachable in one step, excluding customer cancellation.
func Allowed(state model.OrderStatus, kind model.FulfillmentKind) []model.OrderStatus {
	var out []model.OrderStatus
	for _, a := range []Action{ActionAccept, ActionReject, ActionMarkReady, ActionDispatch, ActionStartTravel, ActionDepart, ActionDeliver, ActionComplete} {
		if to, err := Next(state, kind, a); err == nil {
			out = append(out, to)
		}
	}
	return out
}

func IsTerminal(s model.OrderStatus) bool {
	switch s {
	case model.OrderStatusCompleted, model.OrderStatusDelivered,
		model.OrderStatusCancelled, model.OrderStatusRejected:
		return true
	}
	return false
}
