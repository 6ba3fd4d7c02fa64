package model

import (
	"time"

	"github.com/google/uuid"
)

// UnlimitedStock marks bookable services that are never out of stock.
const UnlimitedStock = 999

// MaxItemQuantity caps a single cart line.
const MaxItemQuantity = 99

type Role string

const (
	RoleShopkeeper      Role = "SHOPKEEPER"
	RoleServiceProvider Role = "SERVICE_PROVIDER"
	RoleCustomer        Role = "CUSTOMER"
)

// IsOwner reports whether the role runs a shop.
func (r Role) IsOwner() bool {
	return r == RoleShopkeeper || r == RoleServiceProvider
}

type BusinessType string

const (
	BusinessRetail  BusinessType = "RETAIL"
	BusinessService BusinessType = "SERVICE"
)

type RefundPolicy string

const (
	RefundNone RefundPolicy = "NO_REFUND"
	RefundHalf RefundPolicy = "50_PERCENT"
	RefundFull RefundPolicy = "FULL_REFUND"
)

type Location struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label"`
}

type User struct {
	ID           uuid.UUID
	Name         string
	Mobile       string
	Role         Role
	ShopID       *uuid.UUID
	Location     *Location
	SavedAddress string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Shop struct {
	ID                  uuid.UUID
	OwnerID             uuid.UUID
	Name                string
	Category            string
	BusinessType        BusinessType
	Description         string
	ImageURL            string
	OwnerName           string
	Phone               string
	Lat                 float64
	Lng                 float64
	Address             string
	OpeningTime         string
	ClosingTime         string
	IsPickupAvailable   bool
	IsDeliveryAvailable bool
	IsCodAvailable      bool
	UpiID               string
	RefundPolicy        RefundPolicy
	Rating              float64
	RatingCount         int
	ExperienceYears     int
	VisitingCharge      int64
	PortfolioURLs       []string
	MaxBookingDistance  float64
	IsVerified          bool
	DeliveryPartnerName string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Product struct {
	ID              uuid.UUID
	ShopID          uuid.UUID
	Name            string
	NameBn          string
	Description     string
	Price           int64
	Category        string
	Stock           int
	ImageURL        string
	EnableBooking   bool
	DurationMinutes *int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Cart struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Items      []CartItem
}

// ShopID returns the shop every item belongs to, or uuid.Nil for an empty cart.
func (c *Cart) ShopID() uuid.UUID {
	if c == nil || len(c.Items) == 0 {
		return uuid.Nil
	}
	return c.Items[0].ShopID
}

// CartItem holds a price snapshot taken when the item was added.
type CartItem struct {
	ID              uuid.UUID
	CartID          uuid.UUID
	ProductID       uuid.UUID
	ShopID          uuid.UUID
	Name            string
	Price           int64
	Quantity        int
	EnableBooking   bool
	DurationMinutes *int
	CreatedAt       time.Time
}

type Review struct {
	ID        uuid.UUID
	ShopID    uuid.UUID
	UserID    uuid.UUID
	OrderID   *uuid.UUID
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// RatingSummary is the derived reputation of a shop.
type RatingSummary struct {
	Rating float64
	Count  int
}

type PostType string

const (
	PostPoster      PostType = "POSTER"
	PostTextOffer   PostType = "TEXT_OFFER"
	PostVideoScript PostType = "VIDEO_SCRIPT"
)

type MarketingPost struct {
	ID           uuid.UUID
	ShopID       uuid.UUID
	Type         PostType
	Content      string
	SummaryBn    string
	ImageURL     string
	OfferDetails string
	Channels     []string
	CreatedAt    time.Time
	ExpiresAt    *time.Time
}

type Notification struct {
	OrderID   uuid.UUID `json:"order_id"`
	ShopID    uuid.UUID `json:"shop_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
