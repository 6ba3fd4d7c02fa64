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

type ShopRepository interface {
	// Create also sets the owner's shop_id in the same transaction.
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*model.Shop, error)
	List(ctx context.Context) ([]model.Shop, error)
	Update(ctx context.Context, shop *model.Shop) error
}

// ErrOwnerMissing is returned when a shop is created for an unknown user.
var ErrOwnerMissing = errors.New("owner missing")

type pgShopRepo struct{ pool *pgxpool.Pool }

func NewShopRepository(pool *pgxpool.Pool) ShopRepository {
	return &pgShopRepo{pool: pool}
}

const shopColumns = `id, owner_id, name, category, business_type, description, image_url, owner_name, phone,
	lat, lng, address, opening_time, closing_time, is_pickup_available, is_delivery_available, is_cod_available,
	upi_id, refund_policy, rating, rating_count, experience_years, visiting_charge, portfolio_urls,
	max_booking_distance, is_verified, delivery_partner_name, created_at, updated_at`

// Create inserts the shop and points its owner's shop_id at it in one transaction.
func (r *pgShopRepo) Create(ctx context.Context, s *model.Shop) error {
	s.ID = uuid.New()
	if s.PortfolioURLs == nil {
		s.PortfolioURLs = []string{}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, s.OwnerID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOwnerMissing
	}
	if err != nil {
		return fmt.Errorf("lock owner: %w", err)
	}

	query := `INSERT INTO shops (` + shopColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21,
			          $22, $23, $24, $25, $26, $27, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err = tx.QueryRow(ctx, query,
		s.ID, s.OwnerID, s.Name, s.Category, s.BusinessType, s.Description, s.ImageURL, s.OwnerName, s.Phone,
		s.Lat, s.Lng, s.Address, s.OpeningTime, s.ClosingTime, s.IsPickupAvailable, s.IsDeliveryAvailable,
		s.IsCodAvailable, s.UpiID, s.RefundPolicy, s.Rating, s.RatingCount, s.ExperienceYears, s.VisitingCharge,
		s.PortfolioURLs, s.MaxBookingDistance, s.IsVerified, s.DeliveryPartnerName,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create shop: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET shop_id = $1, updated_at = NOW() WHERE id = $2`, s.ID, s.OwnerID); err != nil {
		return fmt.Errorf("link shop to owner: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit shop: %w", err)
	}
	return nil
}

func (r *pgShopRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	shop, err := scanShop(r.pool.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shop: %w", err)
	}
	return shop, nil
}

func (r *pgShopRepo) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*model.Shop, error) {
	shop, err := scanShop(r.pool.QueryRow(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE owner_id = $1 ORDER BY created_at LIMIT 1`, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shop by owner: %w", err)
	}
	return shop, nil
}

// List returns every shop in registration order.
func (r *pgShopRepo) List(ctx context.Context) ([]model.Shop, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+shopColumns+` FROM shops ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	var shops []model.Shop
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		shops = append(shops, *s)
	}
	return shops, rows.Err()
}

// Update writes profile fields. Rating columns are owned by the review repository.
func (r *pgShopRepo) Update(ctx context.Context, s *model.Shop) error {
	if s.PortfolioURLs == nil {
		s.PortfolioURLs = []string{}
	}
	err := r.pool.QueryRow(ctx,
		`UPDATE shops SET name = $2, category = $3, description = $4, image_url = $5, owner_name = $6, phone = $7,
		 lat = $8, lng = $9, address = $10, opening_time = $11, closing_time = $12, is_pickup_available = $13,
		 is_delivery_available = $14, is_cod_available = $15, upi_id = $16, refund_policy = $17,
		 experience_years = $18, visiting_charge = $19, portfolio_urls = $20, max_booking_distance = $21,
		 delivery_partner_name = $22, updated_at = NOW()
		 WHERE id = $1 RETURNING updated_at`,
		s.ID, s.Name, s.Category, s.Description, s.ImageURL, s.OwnerName, s.Phone,
		s.Lat, s.Lng, s.Address, s.OpeningTime, s.ClosingTime, s.IsPickupAvailable,
		s.IsDeliveryAvailable, s.IsCodAvailable, s.UpiID, s.RefundPolicy,
		s.ExperienceYears, s.VisitingCharge, s.PortfolioURLs, s.MaxBookingDistance,
		s.DeliveryPartnerName,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update shop: %w", err)
	}
	return nil
}

func scanShop(row pgx.Row) (*model.Shop, error) {
	s := &model.Shop{}
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Category, &s.BusinessType, &s.Description, &s.ImageURL, &s.OwnerName, &s.Phone,
		&s.Lat, &s.Lng, &s.Address, &s.OpeningTime, &s.ClosingTime, &s.IsPickupAvailable, &s.IsDeliveryAvailable,
		&s.IsCodAvailable, &s.UpiID, &s.RefundPolicy, &s.Rating, &s.RatingCount, &s.ExperienceYears, &s.VisitingCharge,
		&s.PortfolioURLs, &s.MaxBookingDistance, &s.IsVerified, &s.DeliveryPartnerName, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}
