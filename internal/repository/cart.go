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

type CartRepository interface {
	GetOrCreateCart(ctx context.Context, customerID uuid.UUID) (*model.Cart, error)
	GetCartWithItems(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)
	// AddItem merges item into the cart under the cart row lock. An item from
	// another shop fails with ErrCartOtherShop unless replace is set.
	AddItem(ctx context.Context, item *model.CartItem, replace bool) error
	UpdateQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error
	// ReplaceItems empties the cart and inserts items in one transaction.
	ReplaceItems(ctx context.Context, cartID uuid.UUID, items []model.CartItem) error
}

var (
	// ErrCartItemMissing is returned when a product is not in the cart.
	ErrCartItemMissing = errors.New("cart item missing")

	ErrCartMissing = errors.New("cart missing")

	// ErrCartOtherShop is returned when the cart already holds another shop's items.
	ErrCartOtherShop = errors.New("cart holds another shop's items")

	// ErrQuantityLimit is returned when a merged line would exceed model.MaxItemQuantity.
	ErrQuantityLimit = errors.New("quantity limit exceeded")
)

type pgCartRepo struct{ pool *pgxpool.Pool }

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &pgCartRepo{pool: pool}
}

func (r *pgCartRepo) GetOrCreateCart(ctx context.Context, customerID uuid.UUID) (*model.Cart, error) {
	cart := &model.Cart{ID: uuid.New(), CustomerID: customerID}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO carts (id, customer_id, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())
		 ON CONFLICT (customer_id) DO UPDATE SET customer_id = EXCLUDED.customer_id
		 RETURNING id`,
		cart.ID, customerID,
	).Scan(&cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	return cart, nil
}

const cartItemColumns = `id, cart_id, product_id, shop_id, name, price, quantity, enable_booking, duration_minutes, created_at`

func (r *pgCartRepo) GetCartWithItems(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	cart := &model.Cart{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, customer_id FROM carts WHERE id = $1`, cartID,
	).Scan(&cart.ID, &cart.CustomerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE cart_id = $1 ORDER BY created_at, id`, cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(
			&it.ID, &it.CartID, &it.ProductID, &it.ShopID, &it.Name, &it.Price, &it.Quantity,
			&it.EnableBooking, &it.DurationMinutes, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, it)
	}
	return cart, rows.Err()
}

// AddItem inserts a line or sums its quantity into the existing one.
// The first snapshot of name and price is kept. With replace set, another
// shop's lines are dropped first.
func (r *pgCartRepo) AddItem(ctx context.Context, item *model.CartItem, replace bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockCart(ctx, tx, item.CartID); err != nil {
		return err
	}

	var otherShop bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cart_items WHERE cart_id = $1 AND shop_id <> $2)`,
		item.CartID, item.ShopID,
	).Scan(&otherShop)
	if err != nil {
		return fmt.Errorf("check cart shop: %w", err)
	}
	if otherShop {
		if !replace {
			return ErrCartOtherShop
		}
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, item.CartID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
	}

	if err := addCartItem(ctx, tx, item); err != nil {
		return err
	}
	if item.Quantity > model.MaxItemQuantity {
		return ErrQuantityLimit
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cart item: %w", err)
	}
	return nil
}

// lockCart holds the cart row until the transaction ends. Every writer that
// depends on the cart's current lines takes it first.
func lockCart(ctx context.Context, q queryRower, cartID uuid.UUID) error {
	var id uuid.UUID
	if err := q.QueryRow(ctx, `SELECT id FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCartMissing
		}
		return fmt.Errorf("lock cart: %w", err)
	}
	return nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func addCartItem(ctx context.Context, q queryRower, item *model.CartItem) error {
	item.ID = uuid.New()
	query := `INSERT INTO cart_items (` + cartItemColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, clock_timestamp())
			  ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
			  RETURNING id, quantity, created_at`
	err := q.QueryRow(ctx, query,
		item.ID, item.CartID, item.ProductID, item.ShopID, item.Name, item.Price, item.Quantity,
		item.EnableBooking, item.DurationMinutes,
	).Scan(&item.ID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *pgCartRepo) UpdateQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrCartItemMissing
	}
	return nil
}

func (r *pgCartRepo) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrCartItemMissing
	}
	return nil
}

func (r *pgCartRepo) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (r *pgCartRepo) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []model.CartItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockCart(ctx, tx, cartID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	for i := range items {
		items[i].CartID = cartID
		if err := addCartItem(ctx, tx, &items[i]); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
