package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/haatbazar-api/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.MarketingPost) error
	List(ctx context.Context) ([]model.MarketingPost, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.MarketingPost, error)
}

type pgPostRepo struct{ pool *pgxpool.Pool }

func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &pgPostRepo{pool: pool}
}

const postColumns = `id, shop_id, type, content, summary_bn, image_url, offer_details, channels, created_at, expires_at`

func (r *pgPostRepo) Create(ctx context.Context, p *model.MarketingPost) error {
	p.ID = uuid.New()
	if p.Channels == nil {
		p.Channels = []string{}
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING created_at`,
		p.ID, p.ShopID, p.Type, p.Content, p.SummaryBn, p.ImageURL, p.OfferDetails, p.Channels, p.CreatedAt, p.ExpiresAt,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// List returns every post, newest first.
func (r *pgPostRepo) List(ctx context.Context) ([]model.MarketingPost, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return pgx.CollectRows(rows, scanPost)
}

func (r *pgPostRepo) ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.MarketingPost, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postColumns+` FROM posts WHERE shop_id = $1 ORDER BY created_at DESC`, shopID)
	if err != nil {
		return nil, fmt.Errorf("list shop posts: %w", err)
	}
	return pgx.CollectRows(rows, scanPost)
}

func scanPost(row pgx.CollectableRow) (model.MarketingPost, error) {
	var p model.MarketingPost
	err := row.Scan(&p.ID, &p.ShopID, &p.Type, &p.Content, &p.SummaryBn, &p.ImageURL, &p.OfferDetails,
		&p.Channels, &p.CreatedAt, &p.ExpiresAt)
	if err != nil {
		return p, fmt.Errorf("scan post: %w", err)
	}
	return p, nil
}
