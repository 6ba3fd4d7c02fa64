package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/haatbazar-api/internal/metrics"
	"github.com/flicky/haatbazar-api/internal/model"
	"github.com/flicky/haatbazar-api/internal/repository"
)

var (
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrReviewOrderMismatch = errors.New("order does not belong to this customer and shop")
)

type ReviewInput struct {
	ShopID  uuid.UUID
	OrderID *uuid.UUID
	Rating  int
	Comment string
}

type ReviewService struct {
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
	orderRepo  repository.OrderRepository
	catalog    *CatalogService
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	catalog *CatalogService,
	m *metrics.Metrics,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo, userRepo: userRepo, orderRepo: orderRepo,
		catalog: catalog, metrics: m, now: time.Now,
	}
}

// AddReview stores the review and recomputes the shop's rating from every
// review it has. Repeat reviews by the same customer are all counted.
func (s *ReviewService) AddReview(ctx context.Context, userID uuid.UUID, in ReviewInput) (*model.Review, model.RatingSummary, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, model.RatingSummary{}, ErrInvalidRating
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, model.RatingSummary{}, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, model.RatingSummary{}, ErrUserNotFound
	}
	if in.OrderID != nil {
		if err := s.checkOrder(ctx, userID, in.ShopID, *in.OrderID); err != nil {
			return nil, model.RatingSummary{}, err
		}
	}

	review := &model.Review{
		ShopID:    in.ShopID,
		UserID:    userID,
		OrderID:   in.OrderID,
		UserName:  user.Name,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: s.now(),
	}
	summary, err := s.reviewRepo.Add(ctx, review, AggregateRating)
	if err != nil {
		if errors.Is(err, repository.ErrShopMissing) {
			return nil, model.RatingSummary{}, ErrShopNotFound
		}
		return nil, model.RatingSummary{}, fmt.Errorf("add review: %w", err)
	}

	s.catalog.InvalidateShop(ctx, in.ShopID)
	s.metrics.ReviewsAdded.Inc()
	return review, summary, nil
}

// checkOrder requires a referenced order to be the reviewer's own order at the reviewed shop.
func (s *ReviewService) checkOrder(ctx context.Context, userID, shopID, orderID uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.CustomerID != userID || order.ShopID != shopID {
		return ErrReviewOrderMismatch
	}
	return nil
}

func (s *ReviewService) ListForShop(ctx context.Context, shopID uuid.UUID) ([]model.Review, error) {
	reviews, err := s.reviewRepo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// AggregateRating is the mean rating rounded to one decimal, and the count.
func AggregateRating(reviews []model.Review) model.RatingSummary {
	if len(reviews) == 0 {
		return model.RatingSummary{}
	}
	var sum int64
	for _, r := range reviews {
		sum += int64(r.Rating)
	}
	mean := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(reviews)))).Round(1)
	return model.RatingSummary{Rating: mean.InexactFloat64(), Count: len(reviews)}
}
