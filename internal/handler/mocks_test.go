package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flicky/haatbazar-api/internal/model"
	"github.com/flicky/haatbazar-api/internal/repository"
)

type memShopRepo struct {
	shops []model.Shop
}

func (m *memShopRepo) Create(_ context.Context, shop *model.Shop) error {
	shop.ID = uuid.New()
	shop.CreatedAt = time.Now()
	m.shops = append(m.shops, *shop)
	return nil
}

func (m *memShopRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Shop, error) {
	for i := range m.shops {
		if m.shops[i].ID == id {
			c := m.shops[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memShopRepo) GetByOwnerID(_ context.Context, ownerID uuid.UUID) (*model.Shop, error) {
	for i := range m.shops {
		if m.shops[i].OwnerID == ownerID {
			c := m.shops[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memShopRepo) List(context.Context) ([]model.Shop, error) {
	return append([]model.Shop(nil), m.shops...), nil
}

func (m *memShopRepo) Update(_ context.Context, shop *model.Shop) error {
	for i := range m.shops {
		if m.shops[i].ID == shop.ID {
			m.shops[i] = *shop
		}
	}
	return nil
}

type memProductRepo struct {
	products []model.Product
}

func (m *memProductRepo) Create(_ context.Context, p *model.Product) error {
	p.ID = uuid.New()
	m.products = append(m.products, *p)
	return nil
}

func (m *memProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			c := m.products[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memProductRepo) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range m.products {
		if p.ShopID == shopID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProductRepo) ListAll(context.Context) ([]model.Product, error) {
	return append([]model.Product(nil), m.products...), nil
}

func (m *memProductRepo) Update(_ context.Context, p *model.Product) error {
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = *p
		}
	}
	return nil
}

type memCartRepo struct {
	carts map[uuid.UUID]uuid.UUID // cart id -> customer id
	items map[uuid.UUID][]model.CartItem
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[uuid.UUID]uuid.UUID), items: make(map[uuid.UUID][]model.CartItem)}
}

func (m *memCartRepo) GetOrCreateCart(_ context.Context, customerID uuid.UUID) (*model.Cart, error) {
	for id, owner := range m.carts {
		if owner == customerID {
			return &model.Cart{ID: id, CustomerID: customerID}, nil
		}
	}
	id := uuid.New()
	m.carts[id] = customerID
	return &model.Cart{ID: id, CustomerID: customerID}, nil
}

func (m *memCartRepo) GetCartWithItems(_ context.Context, cartID uuid.UUID) (*model.Cart, error) {
	owner, ok := m.carts[cartID]
	if !ok {
		return nil, nil
	}
	return &model.Cart{ID: cartID, CustomerID: owner, Items: append([]model.CartItem(nil), m.items[cartID]...)}, nil
}

func (m *memCartRepo) AddItem(_ context.Context, item *model.CartItem, replace bool) error {
	items := m.items[item.CartID]
	if len(items) > 0 && items[0].ShopID != item.ShopID {
		if !replace {
			return repository.ErrCartOtherShop
		}
		items = nil
	}
	for i := range items {
		if items[i].ProductID == item.ProductID {
			if items[i].Quantity+item.Quantity > model.MaxItemQuantity {
				return repository.ErrQuantityLimit
			}
			items[i].Quantity += item.Quantity
			m.items[item.CartID] = items
			return nil
		}
	}
	item.ID = uuid.New()
	m.items[item.CartID] = append(items, *item)
	return nil
}

func (m *memCartRepo) UpdateQuantity(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	for i := range m.items[cartID] {
		if m.items[cartID][i].ProductID == productID {
			m.items[cartID][i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrCartItemMissing
}

func (m *memCartRepo) DeleteItem(_ context.Context, cartID, productID uuid.UUID) error {
	items := m.items[cartID]
	for i := range items {
		if items[i].ProductID == productID {
			m.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return repository.ErrCartItemMissing
}

func (m *memCartRepo) ClearCart(_ context.Context, cartID uuid.UUID) error {
	delete(m.items, cartID)
	return nil
}

func (m *memCartRepo) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []model.CartItem) error {
	delete(m.items, cartID)
	for i := range items {
		it := items[i]
		it.CartID = cartID
		if err := m.AddItem(ctx, &it, true); err != nil {
			return err
		}
	}
	return nil
}

type memOrderRepo struct {
	carts  *memCartRepo
	orders []*model.Order
}

func (m *memOrderRepo) CreateAndClearCart(ctx context.Context, o *model.Order, cartID uuid.UUID, _ *model.User) error {
	if len(m.carts.items[cartID]) == 0 {
		return repository.ErrCartEmpty
	}
	o.ID = uuid.New()
	o.Version = 1
	c := *o
	m.orders = append(m.orders, &c)
	return m.carts.ClearCart(ctx, cartID)
}

func (m *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			c := *o
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memOrderRepo) filter(keep func(*model.Order) bool) []model.Order {
	var out []model.Order
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	return out
}

func (m *memOrderRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.Order, error) {
	return m.filter(func(o *model.Order) bool { return o.CustomerID == customerID }), nil
}

func (m *memOrderRepo) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.Order, error) {
	return m.filter(func(o *model.Order) bool { return o.ShopID == shopID }), nil
}

func (m *memOrderRepo) ListPendingSince(_ context.Context, shopID uuid.UUID, since time.Time) ([]model.Order, error) {
	return m.filter(func(o *model.Order) bool {
		return o.ShopID == shopID && o.Status == model.OrderStatusPending && o.CreatedAt.After(since)
	}), nil
}

func (m *memOrderRepo) ShopsWithPendingSince(_ context.Context, since time.Time) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, o := range m.filter(func(o *model.Order) bool {
		return o.Status == model.OrderStatusPending && o.CreatedAt.After(since)
	}) {
		out = append(out, o.ShopID)
	}
	return out, nil
}

func (m *memOrderRepo) CountByMobileSince(context.Context, string, time.Time) (int, error) {
	return 0, nil
}

func (m *memOrderRepo) UpdateStatus(_ context.Context, o *model.Order, status model.OrderStatus) error {
	for _, stored := range m.orders {
		if stored.ID != o.ID {
			continue
		}
		if stored.Version != o.Version {
			return repository.ErrVersionConflict
		}
		stored.Status = status
		stored.Version++
		o.Status = status
		o.Version = stored.Version
		return nil
	}
	return repository.ErrVersionConflict
}

type memPostRepo struct {
	posts []model.MarketingPost
}

func (m *memPostRepo) Create(_ context.Context, p *model.MarketingPost) error {
	p.ID = uuid.New()
	m.posts = append(m.posts, *p)
	return nil
}

func (m *memPostRepo) List(context.Context) ([]model.MarketingPost, error) {
	return append([]model.MarketingPost(nil), m.posts...), nil
}

func (m *memPostRepo) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.MarketingPost, error) {
	var out []model.MarketingPost
	for _, p := range m.posts {
		if p.ShopID == shopID {
			out = append(out, p)
		}
	}
	return out, nil
}
