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

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `id, shop_id, name, name_bn, description, price, category, stock, image_url,
	enable_booking, duration_minutes, created_at, updated_at`

func (r *pgProductRepo) Create(ctx context.Context, p *model.Product) error {
	p.ID = uuid.New()
	query := `INSERT INTO products (` + productColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.ShopID, p.Name, p.NameBn, p.Description, p.Price, p.Category, p.Stock, p.ImageURL,
		p.EnableBooking, p.DurationMinutes,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListByShop returns the newest products first.
func (r *pgProductRepo) ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE shop_id = $1 ORDER BY created_at DESC, id`, shopID)
}

func (r *pgProductRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id`)
}

func (r *pgProductRepo) list(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *pgProductRepo) Update(ctx context.Context, p *model.Product) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE products SET name = $2, name_bn = $3, description = $4, price = $5, category = $6, stock = $7,
		 image_url = $8, enable_booking = $9, duration_minutes = $10, updated_at = NOW()
		 WHERE id = $1 RETURNING updated_at`,
		p.ID, p.Name, p.NameBn, p.Description, p.Price, p.Category, p.Stock,
		p.ImageURL, p.EnableBooking, p.DurationMinutes,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(
		&p.ID, &p.ShopID, &p.Name, &p.NameBn, &p.Description, &p.Price, &p.Category, &p.Stock, &p.ImageURL,
		&p.EnableBooking, &p.DurationMinutes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
