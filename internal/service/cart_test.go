package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/haatbazar-api/internal/model"
)

type cartFixture struct {
	svc      *CartService
	carts    *mockCartRepo
	products *mockProductRepo
	orders   *mockOrderRepo
}

func newCartFixture() *cartFixture {
	carts := newMockCartRepo()
	products := newMockProductRepo()
	orders := newMockOrderRepo(carts)
	return &cartFixture{svc: NewCartService(carts, products, orders), carts: carts, products: products, orders: orders}
}

func TestCartService_AddItem_MergesQuantity(t *testing.T) {
	f := newCartFixture()
	shopID := uuid.New()
	rice := f.products.add(shopID, "Rice", 60)
	customer := uuid.New()

	_, err := f.svc.AddItem(context.Background(), customer, rice.ID, 2, false)
	require.NoError(t, err)
	cart, err := f.svc.AddItem(context.Background(), customer, rice.ID, 3, false)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, int64(60), cart.Items[0].Price)
	assert.Equal(t, shopID, cart.ShopID())
}

func TestCartService_AddItem_PriceSnapshot(t *testing.T) {
	f := newCartFixture()
	rice := f.products.add(uuid.New(), "Rice", 60)
	customer := uuid.New()

	_, err := f.svc.AddItem(context.Background(), customer, rice.ID, 1, false)
	require.NoError(t, err)
	f.products.products[0].Price = 80

	cart, err := f.svc.GetCart(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, int64(60), cart.Items[0].Price)
}

func TestCartService_AddItem_ShopMismatch(t *testing.T) {
	f := newCartFixture()
	rice := f.products.add(uuid.New(), "Rice", 60)
	medicine := f.products.add(uuid.New(), "Napa", 12)
	customer := uuid.New()

	_, err := f.svc.AddItem(context.Background(), customer, rice.ID, 1, false)
	require.NoError(t, err)

	_, err = f.svc.AddItem(context.Background(), customer, medicine.ID, 1, false)
	assert.ErrorIs(t, err, ErrCartShopMismatch)

	cart, err := f.svc.GetCart(context.Background(), customer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, rice.ID, cart.Items[0].ProductID)
}

func TestCartService_AddItem_ReplaceSwitchesShop(t *testing.T) {
	f := newCartFixture()
	rice := f.products.add(uuid.New(), "Rice", 60)
	medicine := f.products.add(uuid.New(), "Napa", 12)
	customer := uuid.New()

	_, err := f.svc.AddItem(context.Background(), customer, rice.ID, 4, false)
	require.NoError(t, err)
	cart, err := f.svc.AddItem(context.Background(), customer, medicine.ID, 2, true)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, medicine.ID, cart.Items[0].ProductID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, medicine.ShopID, cart.ShopID())
}

func TestCartService_AddItem_Errors(t *testing.T) {
	f := newCartFixture()
	rice := f.products.add(uuid.New(), "Rice", 60)

	_, err := f.svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1, false)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = f.svc.AddItem(context.Background(), uuid.New(), rice.ID, 0, false)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.svc.AddItem(context.Background(), uuid.New(), rice.ID, model.MaxItemQuantity+1, false)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartService_AddItem_MergedQuantityCapped(t *testing.T) {
	f := newCartFixture()
	rice := f.products.add(uuid.New(), "Rice", 60)
	customer := uuid.New()

	_, err := f.svc.AddItem(context.Background(), customer, rice.ID, model.MaxItemQuantity, false)
	require.NoError(t, err)
	_, err = f.svc.AddItem(context.Background(), customer, rice.ID, 1, false)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	cart, err := f.svc.GetCart(context.Background(), customer)
	require.NoError(t, err)
	assert.Equal(t, model.MaxItemQuantity, cart.Items[0].Quantity)

	_, err = f.svc.UpdateItem(context.Background(), customer, rice.ID, model.MaxItemQuantity+1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartService_UpdateAndDeleteItem(t *testing.T) {
	f := newCartFixture()
	rice := f.products.add(uuid.New(), "Rice", 60)
	customer := uuid.New()
	_, err := f.svc.AddItem(context.Background(), customer, rice.ID, 1, false)
	require.NoError(t, err)

	cart, err := f.svc.UpdateItem(context.Background(), customer, rice.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, cart.Items[0].Quantity)

	_, err = f.svc.UpdateItem(context.Background(), customer, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	require.NoError(t, f.svc.DeleteItem(context.Background(), customer, rice.ID))
	assert.ErrorIs(t, f.svc.DeleteItem(context.Background(), customer, rice.ID), ErrCartItemNotFound)

	cart, err = f.svc.GetCart(context.Background(), customer)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, uuid.Nil, cart.ShopID())
}

func TestCartService_Reorder(t *testing.T) {
	f := newCartFixture()
	customer := uuid.New()
	shopID := uuid.New()
	past := &model.Order{
		ShopID: shopID, CustomerID: customer, Status: model.OrderStatusCompleted,
		Items: []model.OrderItem{
			{ProductID: uuid.New(), Name: "Rice", Price: 55, Quantity: 2},
			{ProductID: uuid.New(), Name: "Dal", Price: 90, Quantity: 1},
		},
	}
	require.NoError(t, f.orders.CreateAndClearCart(context.Background(), past, uuid.New(), nil))

	other := f.products.add(uuid.New(), "Napa", 12)
	_, err := f.svc.AddItem(context.Background(), customer, other.ID, 1, false)
	require.NoError(t, err)

	cart, err := f.svc.Reorder(context.Background(), customer, past.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, shopID, cart.ShopID())
	assert.Equal(t, int64(55), cart.Items[0].Price)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	_, err = f.svc.Reorder(context.Background(), uuid.New(), past.ID)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)
}
