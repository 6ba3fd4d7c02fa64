package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/flicky/haatbazar-api/internal/events"
	"github.com/flicky/haatbazar-api/internal/fulfillment"
	"github.com/flicky/haatbazar-api/internal/geo"
	"github.com/flicky/haatbazar-api/internal/metrics"
	"github.com/flicky/haatbazar-api/internal/model"
	"github.com/flicky/haatbazar-api/internal/payment"
	"github.com/flicky/haatbazar-api/internal/repository"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderAccessDenied = errors.New("access denied")
	ErrNoFulfillmentMode = errors.New("shop offers neither pickup nor delivery")
	ErrAddressRequired   = errors.New("delivery address is required")
	ErrContactRequired   = errors.New("customer name and mobile are required")
	ErrCashUnavailable   = errors.New("shop does not accept cash on delivery")
	ErrInvalidPayment    = errors.New("payment method must be CASH, UPI or QR")
	ErrConcurrentUpdate  = errors.New("order was modified concurrently")
	ErrInvalidTab        = errors.New("tab must be ALL, PENDING or BOOKING")
	ErrCartChanged       = errors.New("cart changed during checkout")
)

const unknownShopName = "Unknown Shop"

// Owner order list tabs.
const (
	TabAll     = "ALL"
	TabPending = "PENDING"
	TabBooking = "BOOKING"
)

type CheckoutInput struct {
	CustomerName    string
	CustomerMobile  string
	DeliveryAddress string
	DeliveryMode    model.DeliveryMode
	PaymentMethod   model.PaymentMethod
	AdvanceAmount   int64
	VisitDate       string
	VisitTime       string
	Notes           string
}

// OrderPolicy tunes the spam heuristic.
type OrderPolicy struct {
	SpamWindow    time.Duration
	SpamThreshold int
}

// OrderView is an order with the shop name and live booking countdown.
type OrderView struct {
	model.Order
	ShopName string
	TimeLeft string
	Next     []model.OrderStatus
}

type OrderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	shopRepo  repository.ShopRepository
	userRepo  repository.UserRepository
	settler   payment.Settler
	publisher events.Publisher
	metrics   *metrics.Metrics
	policy    OrderPolicy
	log       *slog.Logger
	now       func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	shopRepo repository.ShopRepository,
	userRepo repository.UserRepository,
	settler payment.Settler,
	publisher events.Publisher,
	m *metrics.Metrics,
	policy OrderPolicy,
	log *slog.Logger,
) *OrderService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{
		orderRepo: orderRepo, cartRepo: cartRepo, shopRepo: shopRepo, userRepo: userRepo,
		settler: settler, publisher: publisher, metrics: m, policy: policy, log: log, now: time.Now,
	}
}

// ResolveDeliveryMode falls back to whichever mode the shop supports.
func ResolveDeliveryMode(shop *model.Shop, requested model.DeliveryMode) (model.DeliveryMode, error) {
	switch {
	case requested == model.DeliveryModeDelivery && shop.IsDeliveryAvailable:
		return model.DeliveryModeDelivery, nil
	case requested != model.DeliveryModeDelivery && shop.IsPickupAvailable:
		return model.DeliveryModePickup, nil
	case shop.IsPickupAvailable:
		return model.DeliveryModePickup, nil
	case shop.IsDeliveryAvailable:
		return model.DeliveryModeDelivery, nil
	}
	return "", ErrNoFulfillmentMode
}

// Checkout validates the customer's cart and checkout choices, then places the order.
func (s *OrderService) Checkout(ctx context.Context, customerID uuid.UUID, in CheckoutInput) (*OrderView, error) {
	switch in.PaymentMethod {
	case model.PaymentCash, model.PaymentUPI, model.PaymentQR:
	default:
		return nil, ErrInvalidPayment
	}

	customer, err := s.userRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, ErrUserNotFound
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	cart, err = s.cartRepo.GetCartWithItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	shop, err := s.shopRepo.GetByID(ctx, cart.ShopID())
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	mode, err := ResolveDeliveryMode(shop, in.DeliveryMode)
	if err != nil {
		return nil, err
	}
	if in.DeliveryMode != "" && mode != in.DeliveryMode {
		s.log.Warn("delivery mode not offered, using shop default",
			"shop_id", shop.ID, "requested", in.DeliveryMode, "resolved", mode)
	}
	in.DeliveryMode = mode

	in.CustomerName = firstNonEmpty(in.CustomerName, customer.Name)
	in.CustomerMobile = firstNonEmpty(in.CustomerMobile, customer.Mobile)
	if in.CustomerName == "" || in.CustomerMobile == "" {
		return nil, ErrContactRequired
	}
	if mode == model.DeliveryModeDelivery {
		in.DeliveryAddress = firstNonEmpty(in.DeliveryAddress, customer.SavedAddress)
		if in.DeliveryAddress == "" {
			return nil, ErrAddressRequired
		}
	} else {
		in.DeliveryAddress = ""
	}
	if in.PaymentMethod == model.PaymentCash && !shop.IsCodAvailable {
		return nil, ErrCashUnavailable
	}

	order, err := s.place(ctx, customer, cart, shop, in)
	if err != nil {
		return nil, err
	}
	return &OrderView{
		Order:    *order,
		ShopName: shop.Name,
		TimeLeft: timeLeft(order, s.now()),
		Next:     fulfillment.Allowed(order.Status, order.Kind),
	}, nil
}

// place builds and persists the order from an already validated checkout.
func (s *OrderService) place(ctx context.Context, customer *model.User, cart *model.Cart, shop *model.Shop, in CheckoutInput) (*model.Order, error) {
	items := make([]model.OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		items = append(items, model.OrderItem{
			ProductID:       ci.ProductID,
			Name:            ci.Name,
			Price:           ci.Price,
			Quantity:        ci.Quantity,
			EnableBooking:   ci.EnableBooking,
			DurationMinutes: ci.DurationMinutes,
		})
	}
	total := model.Total(items)
	isDelivery := in.DeliveryMode == model.DeliveryModeDelivery
	kind := fulfillment.KindFor(shop.BusinessType, isDelivery)

	flagged, err := s.isSpam(ctx, in.CustomerMobile)
	if err != nil {
		return nil, err
	}

	settlement, err := s.settler.Settle(ctx, in.PaymentMethod, total, in.AdvanceAmount)
	if err != nil {
		return nil, fmt.Errorf("settle payment: %w", err)
	}

	order := &model.Order{
		ShopID:          shop.ID,
		CustomerID:      customer.ID,
		CustomerName:    in.CustomerName,
		CustomerMobile:  in.CustomerMobile,
		Items:           items,
		TotalAmount:     total,
		Status:          model.OrderStatusPending,
		Kind:            kind,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   settlement.Status,
		AdvanceAmount:   settlement.Advance,
		IsDelivery:      isDelivery,
		DeliveryAddress: in.DeliveryAddress,
		IsFakeFlagged:   flagged,
		CreatedAt:       s.now(),
	}
	if kind != model.FulfillmentHomeDelivery {
		otp, err := newOTP()
		if err != nil {
			return nil, fmt.Errorf("generate otp: %w", err)
		}
		order.Booking = &model.BookingDetails{
			VisitDate: firstNonEmpty(in.VisitDate, "Today"),
			VisitTime: firstNonEmpty(in.VisitTime, "ASAP"),
			Notes:     in.Notes,
			OTP:       otp,
		}
	}

	profile, err := s.profileChanges(ctx, customer, in)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.CreateAndClearCart(ctx, order, cart.ID, profile); err != nil {
		switch {
		case errors.Is(err, repository.ErrCartEmpty):
			return nil, ErrEmptyCart
		case errors.Is(err, repository.ErrCartChanged):
			return nil, ErrCartChanged
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.metrics.OrdersCreated.WithLabelValues(string(order.Kind), string(order.PaymentMethod)).Inc()
	if order.IsFakeFlagged {
		s.metrics.OrdersFlagged.Inc()
		s.log.Warn("order flagged as likely spam", "order_id", order.ID, "mobile", order.CustomerMobile)
	}
	s.publish(ctx, events.OrderCreated, order)
	return order, nil
}

// isSpam reports whether the mobile already placed SpamThreshold orders inside SpamWindow.
func (s *OrderService) isSpam(ctx context.Context, mobile string) (bool, error) {
	n, err := s.orderRepo.CountByMobileSince(ctx, mobile, s.now().Add(-s.policy.SpamWindow))
	if err != nil {
		return false, fmt.Errorf("check spam: %w", err)
	}
	return n >= s.policy.SpamThreshold, nil
}

// profileChanges returns the customer with the contact details changed at
// checkout, or nil when nothing changed. A mobile number already owned by
// another account is left on the order only.
func (s *OrderService) profileChanges(ctx context.Context, customer *model.User, in CheckoutInput) (*model.User, error) {
	updated := *customer
	changed := false
	if in.CustomerName != updated.Name {
		updated.Name = in.CustomerName
		changed = true
	}
	if in.DeliveryAddress != "" && in.DeliveryAddress != updated.SavedAddress {
		updated.SavedAddress = in.DeliveryAddress
		changed = true
	}
	if in.CustomerMobile != updated.Mobile {
		other, err := s.userRepo.GetByMobile(ctx, in.CustomerMobile)
		if err != nil {
			return nil, fmt.Errorf("check mobile: %w", err)
		}
		if other == nil {
			updated.Mobile = in.CustomerMobile
			changed = true
		}
	}
	if !changed {
		return nil, nil
	}
	return &updated, nil
}

// UpdateStatus moves an order one step along its path on behalf of the shop owner.
func (s *OrderService) UpdateStatus(ctx context.Context, ownerID, orderID uuid.UUID, target model.OrderStatus) (*OrderView, error) {
	order, shop, err := s.ownerOrder(ctx, ownerID, orderID)
	if err != nil {
		return nil, err
	}
	if target == model.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: only the customer can cancel", fulfillment.ErrInvalidTransition)
	}
	if err := s.transition(ctx, order, target); err != nil {
		return nil, err
	}
	return s.viewWithShop(order, shop), nil
}

// Cancel withdraws a customer's own pending order.
func (s *OrderService) Cancel(ctx context.Context, customerID, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.CustomerID != customerID {
		return nil, ErrOrderAccessDenied
	}
	target, err := fulfillment.Next(order.Status, order.Kind, fulfillment.ActionCancel)
	if err != nil {
		s.metrics.InvalidTransitions.WithLabelValues(string(order.Status), string(model.OrderStatusCancelled)).Inc()
		return nil, err
	}
	if err := s.transition(ctx, order, target); err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []model.Order{*order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *OrderService) transition(ctx context.Context, order *model.Order, target model.OrderStatus) error {
	from := order.Status
	if err := fulfillment.Advance(from, order.Kind, target); err != nil {
		s.metrics.InvalidTransitions.WithLabelValues(string(from), string(target)).Inc()
		return err
	}
	if err := s.orderRepo.UpdateStatus(ctx, order, target); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return ErrConcurrentUpdate
		}
		return fmt.Errorf("update status: %w", err)
	}
	s.metrics.StatusTransitions.WithLabelValues(string(from), string(target)).Inc()
	s.publish(ctx, events.OrderStatusChanged, order)
	return nil
}

// Get returns an order to its customer or to the owner of its shop.
func (s *OrderService) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	shop, err := s.shopRepo.GetByID(ctx, order.ShopID)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if order.CustomerID != userID && (shop == nil || shop.OwnerID != userID) {
		return nil, ErrOrderAccessDenied
	}
	return s.viewWithShop(order, shop), nil
}

func (s *OrderService) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]OrderView, error) {
	orders, err := s.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.views(ctx, orders)
}

// ListForShop returns the owner's orders filtered by tab, newest first.
func (s *OrderService) ListForShop(ctx context.Context, ownerID uuid.UUID, tab string) ([]OrderView, error) {
	if tab == "" {
		tab = TabAll
	}
	if tab != TabAll && tab != TabPending && tab != TabBooking {
		return nil, ErrInvalidTab
	}
	shop, err := s.shopRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get owner shop: %w", err)
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	orders, err := s.orderRepo.ListByShop(ctx, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("list shop orders: %w", err)
	}

	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		if tab == TabPending && o.Status != model.OrderStatusPending {
			continue
		}
		if tab == TabBooking && !o.IsBooking() {
			continue
		}
		out = append(out, *s.viewWithShop(o, shop))
	}
	return out, nil
}

func (s *OrderService) ownerOrder(ctx context.Context, ownerID, orderID uuid.UUID) (*model.Order, *model.Shop, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, nil, ErrOrderNotFound
	}
	shop, err := s.shopRepo.GetByID(ctx, order.ShopID)
	if err != nil {
		return nil, nil, fmt.Errorf("get shop: %w", err)
	}
	if shop == nil || shop.OwnerID != ownerID {
		return nil, nil, ErrOrderAccessDenied
	}
	return order, shop, nil
}

// views attaches shop names, resolving each shop once. Missing shops get a placeholder.
func (s *OrderService) views(ctx context.Context, orders []model.Order) ([]OrderView, error) {
	shops := make(map[uuid.UUID]*model.Shop)
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		shop, seen := shops[o.ShopID]
		if !seen {
			var err error
			shop, err = s.shopRepo.GetByID(ctx, o.ShopID)
			if err != nil {
				return nil, fmt.Errorf("get shop: %w", err)
			}
			shops[o.ShopID] = shop
		}
		out = append(out, *s.viewWithShop(o, shop))
	}
	return out, nil
}

func (s *OrderService) viewWithShop(o *model.Order, shop *model.Shop) *OrderView {
	name := unknownShopName
	if shop != nil {
		name = shop.Name
	}
	return &OrderView{
		Order:    *o,
		ShopName: name,
		TimeLeft: timeLeft(o, s.now()),
		Next:     fulfillment.Allowed(o.Status, o.Kind),
	}
}

func (s *OrderService) publish(ctx context.Context, t events.Type, o *model.Order) {
	ev := events.NewOrderEvent(t, o.ID, o.ShopID, string(o.Status), s.now())
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.metrics.EventsPublished.WithLabelValues(string(t), "error").Inc()
		s.log.Warn("publish order event", "error", err, "order_id", o.ID, "type", t)
		return
	}
	s.metrics.EventsPublished.WithLabelValues(string(t), "ok").Inc()
}

func timeLeft(o *model.Order, now time.Time) string {
	if o.Booking == nil || fulfillment.IsTerminal(o.Status) {
		return ""
	}
	left, ok := geo.FormatTimeLeft(o.Booking.VisitDate, o.Booking.VisitTime, now)
	if !ok {
		return ""
	}
	return left
}

func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
