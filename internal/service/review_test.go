package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/haatbazar-api/internal/metrics"
	"github.com/flicky/haatbazar-api/internal/model"
)

func TestReviewService_AddReview_Aggregates(t *testing.T) {
	users := newMockUserRepo()
	shops := newMockShopRepo()
	m := metrics.New()
	catalog := NewCatalogService(shops, newMockProductRepo(), users, nil)
	svc := NewReviewService(&mockReviewRepo{shops: shops}, users, newMockOrderRepo(newMockCartRepo()), catalog, m)

	customer := users.add("Rahim", "1", model.RoleCustomer)
	shop := shops.add(uuid.New(), "FreshBite", 23.8, 90.4)

	_, summary, err := svc.AddReview(context.Background(), customer.ID, ReviewInput{ShopID: shop.ID, Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, model.RatingSummary{Rating: 3, Count: 1}, summary)

	review, summary, err := svc.AddReview(context.Background(), customer.ID, ReviewInput{ShopID: shop.ID, Rating: 5, Comment: "Fresh"})
	require.NoError(t, err)
	assert.Equal(t, model.RatingSummary{Rating: 4, Count: 2}, summary)
	assert.Equal(t, "Rahim", review.UserName)

	stored, err := catalog.GetShop(context.Background(), shop.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, stored.Rating)
	assert.Equal(t, 2, stored.RatingCount)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReviewsAdded))

	list, err := svc.ListForShop(context.Background(), shop.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Fresh", list[0].Comment)
}

func TestReviewService_AddReview_Errors(t *testing.T) {
	users := newMockUserRepo()
	shops := newMockShopRepo()
	svc := NewReviewService(&mockReviewRepo{shops: shops}, users, newMockOrderRepo(newMockCartRepo()),
		NewCatalogService(shops, newMockProductRepo(), users, nil), metrics.New())
	customer := users.add("Rahim", "1", model.RoleCustomer)

	_, _, err := svc.AddReview(context.Background(), customer.ID, ReviewInput{ShopID: uuid.New(), Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, _, err = svc.AddReview(context.Background(), customer.ID, ReviewInput{ShopID: uuid.New(), Rating: 4})
	assert.ErrorIs(t, err, ErrShopNotFound)

	_, _, err = svc.AddReview(context.Background(), uuid.New(), ReviewInput{ShopID: uuid.New(), Rating: 4})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAggregateRating(t *testing.T) {
	assert.Equal(t, model.RatingSummary{}, AggregateRating(nil))

	reviews := []model.Review{{Rating: 5}, {Rating: 4}, {Rating: 4}}
	assert.Equal(t, model.RatingSummary{Rating: 4.3, Count: 3}, AggregateRating(reviews))

	reviews = []model.Review{{Rating: 1}, {Rating: 2}}
	assert.Equal(t, model.RatingSummary{Rating: 1.5, Count: 2}, AggregateRating(reviews))
}

func TestReviewService_AddReview_OrderReference(t *testing.T) {
	users := newMockUserRepo()
	shops := newMockShopRepo()
	orders := newMockOrderRepo(newMockCartRepo())
	svc := NewReviewService(&mockReviewRepo{shops: shops}, users, orders,
		NewCatalogService(shops, newMockProductRepo(), users, nil), metrics.New())

	customer := users.add("Rahim", "1", model.RoleCustomer)
	stranger := users.add("Someone", "2", model.RoleCustomer)
	shop := shops.add(uuid.New(), "FreshBite", 23.8, 90.4)
	other := shops.add(uuid.New(), "MedLife", 23.8, 90.4)

	order := &model.Order{ShopID: shop.ID, CustomerID: customer.ID, Status: model.OrderStatusCompleted}
	require.NoError(t, orders.CreateAndClearCart(context.Background(), order, uuid.New(), nil))

	review, _, err := svc.AddReview(context.Background(), customer.ID, ReviewInput{ShopID: shop.ID, OrderID: &order.ID, Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, order.ID, *review.OrderID)

	_, _, err = svc.AddReview(context.Background(), stranger.ID, ReviewInput{ShopID: shop.ID, OrderID: &order.ID, Rating: 1})
	assert.ErrorIs(t, err, ErrReviewOrderMismatch)

	_, _, err = svc.AddReview(context.Background(), customer.ID, ReviewInput{ShopID: other.ID, OrderID: &order.ID, Rating: 1})
	assert.ErrorIs(t, err, ErrReviewOrderMismatch)

	missing := uuid.New()
	_, _, err = svc.AddReview(context.Background(), customer.ID, ReviewInput{ShopID: shop.ID, OrderID: &missing, Rating: 1})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
