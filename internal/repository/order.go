package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/haatbazar-api/internal/model"
)

type OrderRepository interface {
	// CreateAndClearCart persists the order with its items and empties the cart in one
	// transaction. The cart is locked and must still hold exactly the order's lines.
	// A non-nil profile is written in the same transaction.
	CreateAndClearCart(ctx context.Context, order *model.Order, cartID uuid.UUID, profile *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Order, error)
	ListPendingSince(ctx context.Context, shopID uuid.UUID, since time.Time) ([]model.Order, error)
	ShopsWithPendingSince(ctx context.Context, since time.Time) ([]uuid.UUID, error)
	CountByMobileSince(ctx context.Context, mobile string, since time.Time) (int, error)
	// UpdateStatus applies status only if the row is still at version, then bumps it.
	UpdateStatus(ctx context.Context, order *model.Order, status model.OrderStatus) error
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

const orderColumns = `id, shop_id, customer_id, customer_name, customer_mobile, total_amount, status, fulfillment_kind,
	payment_method, payment_status, advance_amount, is_delivery, delivery_address, visit_date, visit_time,
	booking_notes, otp, is_fake_flagged, version, created_at, updated_at`

func (r *pgOrderRepo) CreateAndClearCart(ctx context.Context, o *model.Order, cartID uuid.UUID, profile *model.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockCart(ctx, tx, cartID); err != nil {
		return err
	}
	rows, err := tx.Query(ctx,
		`SELECT product_id, shop_id, price, quantity FROM cart_items WHERE cart_id = $1 FOR UPDATE`, cartID)
	if err != nil {
		return fmt.Errorf("read cart: %w", err)
	}
	lines, err := pgx.CollectRows(rows, pgx.RowToStructByPos[cartLine])
	if err != nil {
		return fmt.Errorf("scan cart: %w", err)
	}
	if err := matchCart(o, lines); err != nil {
		return err
	}

	o.ID = uuid.New()
	o.Version = 1
	var visitDate, visitTime, notes, otp *string
	if b := o.Booking; b != nil {
		visitDate, visitTime, notes, otp = &b.VisitDate, &b.VisitTime, &b.Notes, &b.OTP
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $20)
		 RETURNING created_at, updated_at`,
		o.ID, o.ShopID, o.CustomerID, o.CustomerName, o.CustomerMobile, o.TotalAmount, o.Status, o.Kind,
		o.PaymentMethod, o.PaymentStatus, o.AdvanceAmount, o.IsDelivery, o.DeliveryAddress,
		visitDate, visitTime, notes, otp, o.IsFakeFlagged, o.Version, o.CreatedAt,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.ID = uuid.New()
		it.OrderID = o.ID
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, position, product_id, name, price, quantity, enable_booking, duration_minutes)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, it.OrderID, i, it.ProductID, it.Name, it.Price, it.Quantity, it.EnableBooking, it.DurationMinutes,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if _, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	if profile != nil {
		if err := updateUser(ctx, tx, profile); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

type cartLine struct {
	ProductID uuid.UUID
	ShopID    uuid.UUID
	Price     int64
	Quantity  int
}

// matchCart checks that the locked cart lines are exactly the order's items.
func matchCart(o *model.Order, lines []cartLine) error {
	if len(lines) == 0 {
		return ErrCartEmpty
	}
	if len(lines) != len(o.Items) {
		return ErrCartChanged
	}
	want := make(map[uuid.UUID]model.OrderItem, len(o.Items))
	for _, it := range o.Items {
		want[it.ProductID] = it
	}
	for _, l := range lines {
		it, ok := want[l.ProductID]
		if !ok || l.ShopID != o.ShopID || l.Price != it.Price || l.Quantity != it.Quantity {
			return ErrCartChanged
		}
	}
	return nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	orders, err := r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}

func (r *pgOrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	orders, err := r.query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	return orders, nil
}

func (r *pgOrderRepo) ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Order, error) {
	orders, err := r.query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE shop_id = $1 ORDER BY created_at DESC`, shopID)
	if err != nil {
		return nil, fmt.Errorf("list shop orders: %w", err)
	}
	return orders, nil
}

func (r *pgOrderRepo) ListPendingSince(ctx context.Context, shopID uuid.UUID, since time.Time) ([]model.Order, error) {
	orders, err := r.query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE shop_id = $1 AND status = $2 AND created_at >= $3
		 ORDER BY created_at DESC`, shopID, model.OrderStatusPending, since)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	return orders, nil
}

func (r *pgOrderRepo) ShopsWithPendingSince(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT shop_id FROM orders WHERE status = $1 AND created_at >= $2`,
		model.OrderStatusPending, since)
	if err != nil {
		return nil, fmt.Errorf("list shops with pending orders: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan shop id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgOrderRepo) CountByMobileSince(ctx context.Context, mobile string, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_mobile = $1 AND created_at > $2`, mobile, since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count recent orders: %w", err)
	}
	return n, nil
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, o *model.Order, status model.OrderStatus) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE orders SET status = $3, version = version + 1, updated_at = NOW()
		 WHERE id = $1 AND version = $2 RETURNING version, updated_at`,
		o.ID, o.Version, status,
	).Scan(&o.Version, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrVersionConflict
		}
		return fmt.Errorf("update order status: %w", err)
	}
	o.Status = status
	return nil
}

func (r *pgOrderRepo) query(ctx context.Context, sql string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	byID := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID.String()
		byID[o.ID] = i
	}
	itemRows, err := r.pool.Query(ctx,
		`SELECT id, order_id, product_id, name, price, quantity, enable_booking, duration_minutes
		 FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it model.OrderItem
		if err := itemRows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity,
			&it.EnableBooking, &it.DurationMinutes); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		idx := byID[it.OrderID]
		orders[idx].Items = append(orders[idx].Items, it)
	}
	return orders, itemRows.Err()
}

func scanOrder(row pgx.CollectableRow) (model.Order, error) {
	var o model.Order
	var visitDate, visitTime, notes, otp *string
	err := row.Scan(
		&o.ID, &o.ShopID, &o.CustomerID, &o.CustomerName, &o.CustomerMobile, &o.TotalAmount, &o.Status, &o.Kind,
		&o.PaymentMethod, &o.PaymentStatus, &o.AdvanceAmount, &o.IsDelivery, &o.DeliveryAddress,
		&visitDate, &visitTime, &notes, &otp, &o.IsFakeFlagged, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, fmt.Errorf("scan order: %w", err)
	}
	if visitDate != nil || otp != nil {
		o.Booking = &model.BookingDetails{
			VisitDate: deref(visitDate), VisitTime: deref(visitTime), Notes: deref(notes), OTP: deref(otp),
		}
	}
	return o, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
