package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/flicky/haatbazar-api/internal/model"
	"github.com/flicky/haatbazar-api/internal/repository"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartShopMismatch = errors.New("cart holds items from another shop")
	ErrInvalidQuantity  = errors.New("quantity must be between 1 and 99")
)

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, orderRepo repository.OrderRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo, orderRepo: orderRepo}
}

func (s *CartService) GetCart(ctx context.Context, customerID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	withItems, err := s.cartRepo.GetCartWithItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	if withItems == nil {
		return cart, nil
	}
	return withItems, nil
}

// AddItem snapshots the product into the cart. A cart holds one shop's items
// only: adding from another shop fails with ErrCartShopMismatch unless replace
// is set, in which case the cart is emptied first. The shop check and the
// write happen under one cart lock.
func (s *CartService) AddItem(ctx context.Context, customerID, productID uuid.UUID, quantity int, replace bool) (*model.Cart, error) {
	if !validQuantity(quantity) {
		return nil, ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	item := model.CartItem{
		CartID:          cart.ID,
		ProductID:       product.ID,
		ShopID:          product.ShopID,
		Name:            product.Name,
		Price:           product.Price,
		Quantity:        quantity,
		EnableBooking:   product.EnableBooking,
		DurationMinutes: product.DurationMinutes,
	}
	if err := s.cartRepo.AddItem(ctx, &item, replace); err != nil {
		switch {
		case errors.Is(err, repository.ErrCartOtherShop):
			return nil, ErrCartShopMismatch
		case errors.Is(err, repository.ErrQuantityLimit):
			return nil, ErrInvalidQuantity
		}
		return nil, fmt.Errorf("add item: %w", err)
	}
	return s.GetCart(ctx, customerID)
}

func validQuantity(q int) bool { return q >= 1 && q <= model.MaxItemQuantity }

func (s *CartService) UpdateItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*model.Cart, error) {
	if !validQuantity(quantity) {
		return nil, ErrInvalidQuantity
	}
	cart, err := s.cartRepo.GetOrCreateCart(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if err := s.cartRepo.UpdateQuantity(ctx, cart.ID, productID, quantity); err != nil {
		if errors.Is(err, repository.ErrCartItemMissing) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetCart(ctx, customerID)
}

func (s *CartService) DeleteItem(ctx context.Context, customerID, productID uuid.UUID) error {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, customerID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	if err := s.cartRepo.DeleteItem(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, repository.ErrCartItemMissing) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, customerID uuid.UUID) error {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, customerID)
	if err != nil {
		return fmt.Errorf("get cart: %w", err)
	}
	return s.cartRepo.ClearCart(ctx, cart.ID)
}

// Reorder replaces the cart with the items of a past order at the prices paid then.
func (s *CartService) Reorder(ctx context.Context, customerID, orderID uuid.UUID) (*model.Cart, error) {
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

	cart, err := s.cartRepo.GetOrCreateCart(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	items := make([]model.CartItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, model.CartItem{
			CartID:          cart.ID,
			ProductID:       it.ProductID,
			ShopID:          order.ShopID,
			Name:            it.Name,
			Price:           it.Price,
			Quantity:        it.Quantity,
			EnableBooking:   it.EnableBooking,
			DurationMinutes: it.DurationMinutes,
		})
	}
	if err := s.cartRepo.ReplaceItems(ctx, cart.ID, items); err != nil {
		return nil, fmt.Errorf("replace cart: %w", err)
	}
	return s.GetCart(ctx, customerID)
}
