package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/haatbazar-api/internal/model"
)

// ErrShopMissing is returned when a review targets an unknown shop.
var ErrShopMissing = errors.New("shop missing")

// Aggregator derives a shop rating from all of its reviews.
type Aggregator func(reviews []model.Review) model.RatingSummary

type ReviewRepository interface {
	// Add stores the review and rewrites the shop rating from the full review set
	// while holding the shop row lock.
	Add(ctx context.Context, review *model.Review, aggregate Aggregator) (model.RatingSummary, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Review, error)
}

type pgReviewRepo struct{ pool *pgxpool.Pool }

func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &pgReviewRepo{pool: pool}
}

const reviewColumns = `id, shop_id, user_id, order_id, user_name, rating, comment, created_at`

func (r *pgReviewRepo) Add(ctx context.Context, rv *model.Review, aggregate Aggregator) (model.RatingSummary, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.RatingSummary{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM shops WHERE id = $1 FOR UPDATE`, rv.ShopID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RatingSummary{}, ErrShopMissing
		}
		return model.RatingSummary{}, fmt.Errorf("lock shop: %w", err)
	}

	rv.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO reviews (`+reviewColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`,
		rv.ID, rv.ShopID, rv.UserID, rv.OrderID, rv.UserName, rv.Rating, rv.Comment, rv.CreatedAt,
	).Scan(&rv.CreatedAt)
	if err != nil {
		return model.RatingSummary{}, fmt.Errorf("insert review: %w", err)
	}

	rows, err := tx.Query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE shop_id = $1 ORDER BY created_at`, rv.ShopID)
	if err != nil {
		return model.RatingSummary{}, fmt.Errorf("list reviews: %w", err)
	}
	reviews, err := pgx.CollectRows(rows, scanReview)
	if err != nil {
		return model.RatingSummary{}, err
	}

	summary := aggregate(reviews)
	if _, err := tx.Exec(ctx,
		`UPDATE shops SET rating = $2, rating_count = $3, updated_at = NOW() WHERE id = $1`,
		rv.ShopID, summary.Rating, summary.Count,
	); err != nil {
		return model.RatingSummary{}, fmt.Errorf("update shop rating: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.RatingSummary{}, fmt.Errorf("commit review: %w", err)
	}
	return summary, nil
}

func (r *pgReviewRepo) ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE shop_id = $1 ORDER BY created_at DESC`, shopID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return pgx.CollectRows(rows, scanReview)
}

func scanReview(row pgx.CollectableRow) (model.Review, error) {
	var rv model.Review
	if err := row.Scan(&rv.ID, &rv.ShopID, &rv.UserID, &rv.OrderID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
		return rv, fmt.Errorf("scan review: %w", err)
	}
	return rv, nil
}
