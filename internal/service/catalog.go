package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/haatbazar-api/internal/geo"
	"github.com/flicky/haatbazar-api/internal/model"
	"github.com/flicky/haatbazar-api/internal/repository"
)

var (
	ErrShopNotFound        = errors.New("shop not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrNotShopOwner        = errors.New("not the shop owner")
	ErrNotAnOwner          = errors.New("account cannot own a shop")
	ErrShopAlreadyExists   = errors.New("owner already has a shop")
	ErrLocationRequired    = errors.New("location is required")
	ErrInvalidHours        = errors.New("opening and closing time must both be set as HH:MM")
	ErrInvalidPrice        = errors.New("price must not be negative")
	ErrInvalidBusinessType = errors.New("business type must be RETAIL or SERVICE")
)

const shopCacheTTL = 60 * time.Second

// ShopInput carries the editable shop profile.
type ShopInput struct {
	Name                string
	Category            string
	BusinessType        model.BusinessType
	Description         string
	ImageURL            string
	Phone               string
	Location            *model.Location
	Address             string
	OpeningTime         string
	ClosingTime         string
	IsPickupAvailable   bool
	IsDeliveryAvailable bool
	IsCodAvailable      bool
	UpiID               string
	RefundPolicy        model.RefundPolicy
	ExperienceYears     int
	VisitingCharge      int64
	PortfolioURLs       []string
	MaxBookingDistance  float64
	DeliveryPartnerName string
}

// ShopPatch is a partial profile update; nil fields keep their value.
type ShopPatch struct {
	Name                *string
	Category            *string
	Description         *string
	ImageURL            *string
	Phone               *string
	Location            *model.Location
	Address             *string
	OpeningTime         *string
	ClosingTime         *string
	IsPickupAvailable   *bool
	IsDeliveryAvailable *bool
	IsCodAvailable      *bool
	UpiID               *string
	RefundPolicy        *model.RefundPolicy
	ExperienceYears     *int
	VisitingCharge      *int64
	PortfolioURLs       []string
	MaxBookingDistance  *float64
	DeliveryPartnerName *string
}

type ProductInput struct {
	Name            string
	NameBn          string
	Description     string
	Price           int64
	Category        string
	Stock           int
	ImageURL        string
	EnableBooking   bool
	DurationMinutes *int
}

type ProductPatch struct {
	Name            *string
	NameBn          *string
	Description     *string
	Price           *int64
	Category        *string
	Stock           *int
	ImageURL        *string
	EnableBooking   *bool
	DurationMinutes *int
}

// NearbyQuery filters the shop directory around a point.
type NearbyQuery struct {
	Lat          float64
	Lng          float64
	Category     string
	BusinessType model.BusinessType
	Search       string
}

type ShopListing struct {
	Shop       model.Shop
	DistanceKm float64
	IsOpen     bool
	Products   []model.Product
}

type CatalogService struct {
	shopRepo    repository.ShopRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	redisClient *redis.Client
	now         func() time.Time
}

func NewCatalogService(
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	redisClient *redis.Client,
) *CatalogService {
	return &CatalogService{
		shopRepo: shopRepo, productRepo: productRepo, userRepo: userRepo,
		redisClient: redisClient, now: time.Now,
	}
}

func (s *CatalogService) RegisterShop(ctx context.Context, ownerID uuid.UUID, in ShopInput) (*model.Shop, error) {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}
	if !owner.Role.IsOwner() {
		return nil, ErrNotAnOwner
	}
	if in.Location == nil {
		return nil, ErrLocationRequired
	}
	if err := validateHours(in.OpeningTime, in.ClosingTime); err != nil {
		return nil, err
	}
	if in.BusinessType == "" {
		in.BusinessType = businessTypeFor(owner.Role)
	}
	if in.BusinessType != model.BusinessRetail && in.BusinessType != model.BusinessService {
		return nil, ErrInvalidBusinessType
	}
	existing, err := s.shopRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("check shop: %w", err)
	}
	if existing != nil {
		return nil, ErrShopAlreadyExists
	}
	if in.RefundPolicy == "" {
		in.RefundPolicy = model.RefundNone
	}

	shop := &model.Shop{
		OwnerID:             ownerID,
		Name:                in.Name,
		Category:            in.Category,
		BusinessType:        in.BusinessType,
		Description:         in.Description,
		ImageURL:            in.ImageURL,
		OwnerName:           owner.Name,
		Phone:               in.Phone,
		Lat:                 in.Location.Lat,
		Lng:                 in.Location.Lng,
		Address:             firstNonEmpty(in.Address, in.Location.Label),
		OpeningTime:         in.OpeningTime,
		ClosingTime:         in.ClosingTime,
		IsPickupAvailable:   in.IsPickupAvailable,
		IsDeliveryAvailable: in.IsDeliveryAvailable,
		IsCodAvailable:      in.IsCodAvailable,
		UpiID:               in.UpiID,
		RefundPolicy:        in.RefundPolicy,
		ExperienceYears:     in.ExperienceYears,
		VisitingCharge:      in.VisitingCharge,
		PortfolioURLs:       in.PortfolioURLs,
		MaxBookingDistance:  in.MaxBookingDistance,
		DeliveryPartnerName: in.DeliveryPartnerName,
	}
	if shop.Phone == "" {
		shop.Phone = owner.Mobile
	}
	if err := s.shopRepo.Create(ctx, shop); err != nil {
		if errors.Is(err, repository.ErrOwnerMissing) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("create shop: %w", err)
	}
	return shop, nil
}

func (s *CatalogService) UpdateShop(ctx context.Context, ownerID, shopID uuid.UUID, p ShopPatch) (*model.Shop, error) {
	shop, err := s.ownedShop(ctx, ownerID, shopID)
	if err != nil {
		return nil, err
	}

	setString(&shop.Name, p.Name)
	setString(&shop.Category, p.Category)
	setString(&shop.Description, p.Description)
	setString(&shop.ImageURL, p.ImageURL)
	setString(&shop.Phone, p.Phone)
	setString(&shop.Address, p.Address)
	setString(&shop.OpeningTime, p.OpeningTime)
	setString(&shop.ClosingTime, p.ClosingTime)
	setString(&shop.UpiID, p.UpiID)
	setString(&shop.DeliveryPartnerName, p.DeliveryPartnerName)
	if p.Location != nil {
		shop.Lat, shop.Lng = p.Location.Lat, p.Location.Lng
	}
	if p.IsPickupAvailable != nil {
		shop.IsPickupAvailable = *p.IsPickupAvailable
	}
	if p.IsDeliveryAvailable != nil {
		shop.IsDeliveryAvailable = *p.IsDeliveryAvailable
	}
	if p.IsCodAvailable != nil {
		shop.IsCodAvailable = *p.IsCodAvailable
	}
	if p.RefundPolicy != nil {
		shop.RefundPolicy = *p.RefundPolicy
	}
	if p.ExperienceYears != nil {
		shop.ExperienceYears = *p.ExperienceYears
	}
	if p.VisitingCharge != nil {
		shop.VisitingCharge = *p.VisitingCharge
	}
	if p.PortfolioURLs != nil {
		shop.PortfolioURLs = p.PortfolioURLs
	}
	if p.MaxBookingDistance != nil {
		shop.MaxBookingDistance = *p.MaxBookingDistance
	}
	if err := validateHours(shop.OpeningTime, shop.ClosingTime); err != nil {
		return nil, err
	}

	if err := s.shopRepo.Update(ctx, shop); err != nil {
		return nil, fmt.Errorf("update shop: %w", err)
	}
	s.InvalidateShop(ctx, shop.ID)
	return shop, nil
}

// GetShop reads through the Redis cache.
func (s *CatalogService) GetShop(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	cacheKey := shopCacheKey(id)

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var shop model.Shop
			if json.Unmarshal([]byte(cached), &shop) == nil {
				return &shop, nil
			}
		}
	}

	shop, err := s.shopRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(shop); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, shopCacheTTL)
		}
	}
	return shop, nil
}

func (s *CatalogService) InvalidateShop(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, shopCacheKey(id))
	}
}

func shopCacheKey(id uuid.UUID) string { return "shop:" + id.String() }

// ShopForOwner returns the shop an owner runs.
func (s *CatalogService) ShopForOwner(ctx context.Context, ownerID uuid.UUID) (*model.Shop, error) {
	shop, err := s.shopRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get owner shop: %w", err)
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	return shop, nil
}

func (s *CatalogService) AddProduct(ctx context.Context, ownerID, shopID uuid.UUID, in ProductInput) (*model.Product, error) {
	if _, err := s.ownedShop(ctx, ownerID, shopID); err != nil {
		return nil, err
	}
	if in.Price < 0 {
		return nil, ErrInvalidPrice
	}
	p := &model.Product{
		ShopID:          shopID,
		Name:            in.Name,
		NameBn:          in.NameBn,
		Description:     in.Description,
		Price:           in.Price,
		Category:        in.Category,
		Stock:           in.Stock,
		ImageURL:        in.ImageURL,
		EnableBooking:   in.EnableBooking,
		DurationMinutes: in.DurationMinutes,
	}
	normalizeProduct(p)
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, ownerID, productID uuid.UUID, in ProductPatch) (*model.Product, error) {
	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	if _, err := s.ownedShop(ctx, ownerID, p.ShopID); err != nil {
		return nil, err
	}

	setString(&p.Name, in.Name)
	setString(&p.NameBn, in.NameBn)
	setString(&p.Description, in.Description)
	setString(&p.Category, in.Category)
	setString(&p.ImageURL, in.ImageURL)
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, ErrInvalidPrice
		}
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.EnableBooking != nil {
		p.EnableBooking = *in.EnableBooking
	}
	if in.DurationMinutes != nil {
		p.DurationMinutes = in.DurationMinutes
	}
	normalizeProduct(p)

	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) ListProductsForShop(ctx context.Context, shopID uuid.UUID) ([]model.Product, error) {
	products, err := s.productRepo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// ListNearbyShops attaches distance and opening state to every shop matching
// q and orders them nearest first. Equal distances keep registration order.
// Origin is the point a listing is ranked around: the explicit coordinates
// when both are given, then the signed-in user's saved location, then the
// default city.
func (s *CatalogService) Origin(ctx context.Context, userID uuid.UUID, lat, lng *float64) geo.Location {
	if lat != nil && lng != nil {
		return geo.Location{Lat: *lat, Lng: *lng}
	}
	saved := func(ctx context.Context) (geo.Location, error) {
		if userID == uuid.Nil {
			return geo.Location{}, ErrLocationRequired
		}
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return geo.Location{}, fmt.Errorf("get user: %w", err)
		}
		if user == nil || user.Location == nil {
			return geo.Location{}, ErrLocationRequired
		}
		return geo.Location{Lat: user.Location.Lat, Lng: user.Location.Lng, Label: user.Location.Label}, nil
	}
	return geo.Resolve(ctx, saved)
}

func (s *CatalogService) ListNearbyShops(ctx context.Context, q NearbyQuery) ([]ShopListing, error) {
	shops, err := s.shopRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	byShop := make(map[uuid.UUID][]model.Product, len(shops))
	for _, p := range products {
		byShop[p.ShopID] = append(byShop[p.ShopID], p)
	}

	now := s.now()
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]ShopListing, 0, len(shops))
	for _, shop := range shops {
		if q.Category != "" && shop.Category != q.Category {
			continue
		}
		if q.BusinessType != "" && shop.BusinessType != q.BusinessType {
			continue
		}
		items := byShop[shop.ID]
		if search != "" && !matchesSearch(shop, items, search) {
			continue
		}
		out = append(out, ShopListing{
			Shop:       shop,
			DistanceKm: geo.DistanceKm(q.Lat, q.Lng, shop.Lat, shop.Lng),
			IsOpen:     geo.IsOpen(shop.OpeningTime, shop.ClosingTime, now),
			Products:   items,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}

func matchesSearch(shop model.Shop, products []model.Product, term string) bool {
	if strings.Contains(strings.ToLower(shop.Name), term) {
		return true
	}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			return true
		}
	}
	return false
}

func (s *CatalogService) ownedShop(ctx context.Context, ownerID, shopID uuid.UUID) (*model.Shop, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if shop == nil {
		return nil, ErrShopNotFound
	}
	if shop.OwnerID != ownerID {
		return nil, ErrNotShopOwner
	}
	return shop, nil
}

func normalizeProduct(p *model.Product) {
	if p.EnableBooking && p.Stock == 0 {
		p.Stock = model.UnlimitedStock
	}
	if !p.EnableBooking {
		p.DurationMinutes = nil
	}
}

func validateHours(opening, closing string) error {
	if opening == "" && closing == "" {
		return nil
	}
	if !geo.ValidClock(opening) || !geo.ValidClock(closing) {
		return ErrInvalidHours
	}
	return nil
}

func businessTypeFor(r model.Role) model.BusinessType {
	if r == model.RoleServiceProvider {
		return model.BusinessService
	}
	return model.BusinessRetail
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
