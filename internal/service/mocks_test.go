package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flicky/haatbazar-api/internal/events"
	"github.com/flicky/haatbazar-api/internal/model"
	"github.com/flicky/haatbazar-api/internal/repository"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type mockUserRepo struct {
	byID     map[uuid.UUID]*model.User
	byMobile map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byID: make(map[uuid.UUID]*model.User), byMobile: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.byID[user.ID] = user
	m.byMobile[user.Mobile] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m.byID[id], nil
}

func (m *mockUserRepo) GetByMobile(_ context.Context, mobile string) (*model.User, error) {
	return m.byMobile[mobile], nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	for mobile, u := range m.byMobile {
		if u.ID == user.ID {
			delete(m.byMobile, mobile)
		}
	}
	m.byID[user.ID] = user
	m.byMobile[user.Mobile] = user
	return nil
}

// add stores a user directly, bypassing Register.
func (m *mockUserRepo) add(name, mobile string, role model.Role) *model.User {
	u := &model.User{Name: name, Mobile: mobile, Role: role}
	_ = m.Create(context.Background(), u)
	return u
}

type mockShopRepo struct {
	shops []*model.Shop
	// users, when set, receives the owner link that Create writes.
	users *mockUserRepo
}

func newMockShopRepo() *mockShopRepo { return &mockShopRepo{} }

func (m *mockShopRepo) Create(_ context.Context, shop *model.Shop) error {
	shop.ID = uuid.New()
	if m.users != nil {
		owner, ok := m.users.byID[shop.OwnerID]
		if !ok {
			return repository.ErrOwnerMissing
		}
		id := shop.ID
		owner.ShopID = &id
	}
	shop.CreatedAt = time.Now()
	m.shops = append(m.shops, shop)
	return nil
}

func (m *mockShopRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Shop, error) {
	for _, s := range m.shops {
		if s.ID == id {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockShopRepo) GetByOwnerID(_ context.Context, ownerID uuid.UUID) (*model.Shop, error) {
	for _, s := range m.shops {
		if s.OwnerID == ownerID {
			c := *s
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockShopRepo) List(context.Context) ([]model.Shop, error) {
	out := make([]model.Shop, 0, len(m.shops))
	for _, s := range m.shops {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockShopRepo) Update(_ context.Context, shop *model.Shop) error {
	for i, s := range m.shops {
		if s.ID == shop.ID {
			c := *shop
			m.shops[i] = &c
		}
	}
	return nil
}

// add registers a shop owned by ownerID with the given coordinates.
func (m *mockShopRepo) add(ownerID uuid.UUID, name string, lat, lng float64) *model.Shop {
	s := &model.Shop{
		OwnerID: ownerID, Name: name, BusinessType: model.BusinessRetail,
		Lat: lat, Lng: lng, IsPickupAvailable: true,
	}
	_ = m.Create(context.Background(), s)
	return s
}

type mockProductRepo struct {
	products []*model.Product
}

func newMockProductRepo() *mockProductRepo { return &mockProductRepo{} }

func (m *mockProductRepo) Create(_ context.Context, p *model.Product) error {
	p.ID = uuid.New()
	m.products = append(m.products, p)
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockProductRepo) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range m.products {
		if p.ShopID == shopID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) ListAll(context.Context) ([]model.Product, error) {
	out := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProductRepo) Update(_ context.Context, p *model.Product) error {
	for i, existing := range m.products {
		if existing.ID == p.ID {
			c := *p
			m.products[i] = &c
		}
	}
	return nil
}

func (m *mockProductRepo) add(shopID uuid.UUID, name string, price int64) *model.Product {
	p := &model.Product{ShopID: shopID, Name: name, Price: price, Stock: 10}
	_ = m.Create(context.Background(), p)
	return p
}

type mockCartRepo struct {
	carts map[uuid.UUID]*model.Cart
	items map[uuid.UUID][]model.CartItem
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[uuid.UUID]*model.Cart), items: make(map[uuid.UUID][]model.CartItem)}
}

func (m *mockCartRepo) GetOrCreateCart(_ context.Context, customerID uuid.UUID) (*model.Cart, error) {
	for _, c := range m.carts {
		if c.CustomerID == customerID {
			return &model.Cart{ID: c.ID, CustomerID: customerID}, nil
		}
	}
	cart := &model.Cart{ID: uuid.New(), CustomerID: customerID}
	m.carts[cart.ID] = cart
	return &model.Cart{ID: cart.ID, CustomerID: customerID}, nil
}

func (m *mockCartRepo) GetCartWithItems(_ context.Context, cartID uuid.UUID) (*model.Cart, error) {
	cart, ok := m.carts[cartID]
	if !ok {
		return nil, nil
	}
	return &model.Cart{ID: cart.ID, CustomerID: cart.CustomerID, Items: append([]model.CartItem(nil), m.items[cartID]...)}, nil
}

func (m *mockCartRepo) AddItem(_ context.Context, item *model.CartItem, replace bool) error {
	items := m.items[item.CartID]
	for _, it := range items {
		if it.ShopID != item.ShopID {
			if !replace {
				return repository.ErrCartOtherShop
			}
			items = nil
			break
		}
	}
	for i := range items {
		if items[i].ProductID == item.ProductID {
			if items[i].Quantity+item.Quantity > model.MaxItemQuantity {
				return repository.ErrQuantityLimit
			}
			items[i].Quantity += item.Quantity
			item.Quantity = items[i].Quantity
			m.items[item.CartID] = items
			return nil
		}
	}
	item.ID = uuid.New()
	m.items[item.CartID] = append(items, *item)
	return nil
}

func (m *mockCartRepo) UpdateQuantity(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	items := m.items[cartID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrCartItemMissing
}

func (m *mockCartRepo) DeleteItem(_ context.Context, cartID, productID uuid.UUID) error {
	items := m.items[cartID]
	for i := range items {
		if items[i].ProductID == productID {
			m.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return repository.ErrCartItemMissing
}

func (m *mockCartRepo) ClearCart(_ context.Context, cartID uuid.UUID) error {
	delete(m.items, cartID)
	return nil
}

func (m *mockCartRepo) ReplaceItems(_ context.Context, cartID uuid.UUID, items []model.CartItem) error {
	m.items[cartID] = nil
	for i := range items {
		it := items[i]
		it.CartID = cartID
		if err := m.AddItem(context.Background(), &it, true); err != nil {
			return err
		}
	}
	return nil
}

type mockOrderRepo struct {
	mu     sync.Mutex
	carts  *mockCartRepo
	users  *mockUserRepo
	orders map[uuid.UUID]*model.Order

	// beforeCreate runs ahead of the cart check, standing in for a concurrent request.
	beforeCreate func()
	createErr    error
}

func newMockOrderRepo(carts *mockCartRepo) *mockOrderRepo {
	return &mockOrderRepo{carts: carts, orders: make(map[uuid.UUID]*model.Order)}
}

// CreateAndClearCart checks the cart against the order like the SQL version
// when cartID names a known cart.
func (m *mockOrderRepo) CreateAndClearCart(ctx context.Context, o *model.Order, cartID uuid.UUID, profile *model.User) error {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, known := m.carts.carts[cartID]; known {
		lines := m.carts.items[cartID]
		if len(lines) == 0 {
			return repository.ErrCartEmpty
		}
		if len(lines) != len(o.Items) {
			return repository.ErrCartChanged
		}
		for i, l := range lines {
			if l.ProductID != o.Items[i].ProductID || l.Quantity != o.Items[i].Quantity || l.Price != o.Items[i].Price {
				return repository.ErrCartChanged
			}
		}
	}

	o.ID = uuid.New()
	o.Version = 1
	o.UpdatedAt = o.CreatedAt
	c := *o
	m.orders[o.ID] = &c
	if profile != nil && m.users != nil {
		u := *profile
		if err := m.users.Update(ctx, &u); err != nil {
			return err
		}
	}
	return m.carts.ClearCart(ctx, cartID)
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	c := *o
	return &c, nil
}

func (m *mockOrderRepo) filter(keep func(*model.Order) bool) []model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Order
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockOrderRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.Order, error) {
	return m.filter(func(o *model.Order) bool { return o.CustomerID == customerID }), nil
}

func (m *mockOrderRepo) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.Order, error) {
	return m.filter(func(o *model.Order) bool { return o.ShopID == shopID }), nil
}

func (m *mockOrderRepo) ListPendingSince(_ context.Context, shopID uuid.UUID, since time.Time) ([]model.Order, error) {
	return m.filter(func(o *model.Order) bool {
		return o.ShopID == shopID && o.Status == model.OrderStatusPending && o.CreatedAt.After(since)
	}), nil
}

func (m *mockOrderRepo) ShopsWithPendingSince(_ context.Context, since time.Time) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, o := range m.filter(func(o *model.Order) bool {
		return o.Status == model.OrderStatusPending && o.CreatedAt.After(since)
	}) {
		if !seen[o.ShopID] {
			seen[o.ShopID] = true
			out = append(out, o.ShopID)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) CountByMobileSince(_ context.Context, mobile string, since time.Time) (int, error) {
	return len(m.filter(func(o *model.Order) bool {
		return o.CustomerMobile == mobile && o.CreatedAt.After(since)
	})), nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, o *model.Order, status model.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[o.ID]
	if !ok || stored.Version != o.Version {
		return repository.ErrVersionConflict
	}
	stored.Status = status
	stored.Version++
	o.Status = status
	o.Version = stored.Version
	return nil
}

type mockReviewRepo struct {
	shops   *mockShopRepo
	reviews []model.Review
}

func (m *mockReviewRepo) Add(ctx context.Context, rv *model.Review, aggregate repository.Aggregator) (model.RatingSummary, error) {
	shop, _ := m.shops.GetByID(ctx, rv.ShopID)
	if shop == nil {
		return model.RatingSummary{}, repository.ErrShopMissing
	}
	rv.ID = uuid.New()
	m.reviews = append(m.reviews, *rv)

	var forShop []model.Review
	for _, r := range m.reviews {
		if r.ShopID == rv.ShopID {
			forShop = append(forShop, r)
		}
	}
	summary := aggregate(forShop)
	shop.Rating, shop.RatingCount = summary.Rating, summary.Count
	return summary, m.shops.Update(ctx, shop)
}

func (m *mockReviewRepo) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.Review, error) {
	var out []model.Review
	for i := len(m.reviews) - 1; i >= 0; i-- {
		if m.reviews[i].ShopID == shopID {
			out = append(out, m.reviews[i])
		}
	}
	return out, nil
}

type mockPostRepo struct {
	posts []model.MarketingPost
}

func (m *mockPostRepo) Create(_ context.Context, p *model.MarketingPost) error {
	p.ID = uuid.New()
	m.posts = append(m.posts, *p)
	return nil
}

func (m *mockPostRepo) List(context.Context) ([]model.MarketingPost, error) {
	return append([]model.MarketingPost(nil), m.posts...), nil
}

func (m *mockPostRepo) ListByShop(_ context.Context, shopID uuid.UUID) ([]model.MarketingPost, error) {
	var out []model.MarketingPost
	for _, p := range m.posts {
		if p.ShopID == shopID {
			out = append(out, p)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// clock is a settable time source for services with a now field.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
