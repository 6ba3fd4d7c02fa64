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

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByMobile(ctx context.Context, mobile string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type pgUserRepo struct{ pool *pgxpool.Pool }

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepo{pool: pool}
}

const userColumns = `id, name, mobile, role, shop_id, lat, lng, location_label, saved_address, created_at, updated_at`

func (r *pgUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = uuid.New()
	lat, lng, label := locationArgs(user.Location)
	query := `INSERT INTO users (id, name, mobile, role, shop_id, lat, lng, location_label, saved_address, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		user.ID, user.Name, user.Mobile, user.Role, user.ShopID, lat, lng, label, user.SavedAddress,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *pgUserRepo) GetByMobile(ctx context.Context, mobile string) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE mobile = $1`, mobile))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by mobile: %w", err)
	}
	return user, nil
}

func (r *pgUserRepo) Update(ctx context.Context, user *model.User) error {
	return updateUser(ctx, r.pool, user)
}

func updateUser(ctx context.Context, q queryRower, user *model.User) error {
	lat, lng, label := locationArgs(user.Location)
	err := q.QueryRow(ctx,
		`UPDATE users SET name = $2, mobile = $3, shop_id = $4, lat = $5, lng = $6, location_label = $7,
		 saved_address = $8, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		user.ID, user.Name, user.Mobile, user.ShopID, lat, lng, label, user.SavedAddress,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	var lat, lng *float64
	var label *string
	err := row.Scan(
		&user.ID, &user.Name, &user.Mobile, &user.Role, &user.ShopID,
		&lat, &lng, &label, &user.SavedAddress, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		user.Location = &model.Location{Lat: *lat, Lng: *lng}
		if label != nil {
			user.Location.Label = *label
		}
	}
	return user, nil
}

func locationArgs(loc *model.Location) (*float64, *float64, *string) {
	if loc == nil {
		return nil, nil, nil
	}
	return &loc.Lat, &loc.Lng, &loc.Label
}
