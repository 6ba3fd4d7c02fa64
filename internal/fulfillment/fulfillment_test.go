package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/haatbazar-api/internal/model"
)

func TestKindFor(t *testing.T) {
	assert.Equal(t, model.FulfillmentPickup, KindFor(model.BusinessRetail, false))
	assert.Equal(t, model.FulfillmentHomeDelivery, KindFor(model.BusinessRetail, true))
	assert.Equal(t, model.FulfillmentServiceVisit, KindFor(model.BusinessService, true))
	assert.Equal(t, model.FulfillmentServiceVisit, KindFor(model.BusinessService, false))
}

func TestNext_HappyPaths(t *testing.T) {
	tests := []struct {
		kind    model.FulfillmentKind
		actions []Action
		final   model.OrderStatus
	}{
		{model.FulfillmentPickup, []Action{ActionAccept, ActionMarkReady, ActionComplete}, model.OrderStatusCompleted},
		{model.FulfillmentHomeDelivery, []Action{ActionAccept, ActionDispatch, ActionDepart, ActionDeliver}, model.OrderStatusDelivered},
		{model.FulfillmentServiceVisit, []Action{ActionAccept, ActionStartTravel, ActionComplete}, model.OrderStatusCompleted},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			state := model.OrderStatusPending
			for _, a := range tt.actions {
				next, err := Next(state, tt.kind, a)
				require.NoError(t, err, "action %s from %s", a, state)
				state = next
			}
			assert.Equal(t, tt.final, state)
			assert.True(t, IsTerminal(state))
		})
	}
}

func TestNext_RejectsWrongBranch(t *testing.T) {
	_, err := Next(model.OrderStatusConfirmed, model.FulfillmentPickup, ActionDispatch)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Next(model.OrderStatusConfirmed, model.FulfillmentHomeDelivery, ActionStartTravel)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Next(model.OrderStatusCompleted, model.FulfillmentPickup, ActionCancel)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNext_KeepsStateOnError(t *testing.T) {
	state, err := Next(model.OrderStatusReady, model.FulfillmentPickup, ActionDeliver)
	assert.Error(t, err)
	assert.Equal(t, model.OrderStatusReady, state)
}

func TestAdvance_NoSkipping(t *testing.T) {
	err := Advance(model.OrderStatusPending, model.FulfillmentHomeDelivery, model.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = Advance(model.OrderStatusConfirmed, model.FulfillmentHomeDelivery, model.OrderStatusOutForDelivery)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.NoError(t, Advance(model.OrderStatusPending, model.FulfillmentPickup, model.OrderStatusRejected))
	assert.NoError(t, Advance(model.OrderStatusConfirmed, model.FulfillmentServiceVisit, model.OrderStatusAccepted))
}

func TestAdvance_NoRegression(t *testing.T) {
	err := Advance(model.OrderStatusReady, model.FulfillmentPickup, model.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = Advance(model.OrderStatusConfirmed, model.FulfillmentPickup, model.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAllowed(t *testing.T) {
	assert.ElementsMatch(t,
		[]model.OrderStatus{model.OrderStatusConfirmed, model.OrderStatusRejected},
		Allowed(model.OrderStatusPending, model.FulfillmentPickup))
	assert.Equal(t,
		[]model.OrderStatus{model.OrderStatusDispatched},
		Allowed(model.OrderStatusConfirmed, model.FulfillmentHomeDelivery))
	assert.Empty(t, Allowed(model.OrderStatusDelivered, model.FulfillmentHomeDelivery))
}
