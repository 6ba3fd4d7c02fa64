package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/flicky/haatbazar-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Name               string          `json:"name" binding:"required"`
	Mobile             string          `json:"mobile" binding:"required,min=6,max=20"`
	Role               model.Role      `json:"role" binding:"required,oneof=CUSTOMER SHOPKEEPER SERVICE_PROVIDER"`
	Location           *model.Location `json:"location"`
	SavedAddress       string          `json:"saved_address"`
	UseDefaultLocation bool            `json:"use_default_location"`
}

type LoginRequest struct {
	Mobile string `json:"mobile" binding:"required"`
}

type UpdateProfileRequest struct {
	Name         *string         `json:"name"`
	SavedAddress *string         `json:"saved_address"`
	Location     *model.Location `json:"location"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Mobile       string          `json:"mobile"`
	Role         model.Role      `json:"role"`
	ShopID       *uuid.UUID      `json:"shop_id,omitempty"`
	Location     *model.Location `json:"location,omitempty"`
	SavedAddress string          `json:"saved_address,omitempty"`
}

// --- Shop ---

type ShopRequest struct {
	Name                string             `json:"name" binding:"required"`
	Category            string             `json:"category" binding:"required"`
	BusinessType        model.BusinessType `json:"business_type" binding:"omitempty,oneof=RETAIL SERVICE"`
	Description         string             `json:"description"`
	ImageURL            string             `json:"image_url"`
	Phone               string             `json:"phone"`
	Location            *model.Location    `json:"location" binding:"required"`
	Address             string             `json:"address"`
	OpeningTime         string             `json:"opening_time"`
	ClosingTime         string             `json:"closing_time"`
	IsPickupAvailable   bool               `json:"is_pickup_available"`
	IsDeliveryAvailable bool               `json:"is_delivery_available"`
	IsCodAvailable      bool               `json:"is_cod_available"`
	UpiID               string             `json:"upi_id"`
	RefundPolicy        model.RefundPolicy `json:"refund_policy" binding:"omitempty,oneof=NO_REFUND 50_PERCENT FULL_REFUND"`
	ExperienceYears     int                `json:"experience_years" binding:"min=0"`
	VisitingCharge      int64              `json:"visiting_charge" binding:"min=0"`
	PortfolioURLs       []string           `json:"portfolio_urls"`
	MaxBookingDistance  float64            `json:"max_booking_distance" binding:"min=0"`
	DeliveryPartnerName string             `json:"delivery_partner_name"`
}

type UpdateShopRequest struct {
	Name                *string             `json:"name"`
	Category            *string             `json:"category"`
	Description         *string             `json:"description"`
	ImageURL            *string             `json:"image_url"`
	Phone               *string             `json:"phone"`
	Location            *model.Location     `json:"location"`
	Address             *string             `json:"address"`
	OpeningTime         *string             `json:"opening_time"`
	ClosingTime         *string             `json:"closing_time"`
	IsPickupAvailable   *bool               `json:"is_pickup_available"`
	IsDeliveryAvailable *bool               `json:"is_delivery_available"`
	IsCodAvailable      *bool               `json:"is_cod_available"`
	UpiID               *string             `json:"upi_id"`
	RefundPolicy        *model.RefundPolicy `json:"refund_policy"`
	ExperienceYears     *int                `json:"experience_years"`
	VisitingCharge      *int64              `json:"visiting_charge"`
	PortfolioURLs       []string            `json:"portfolio_urls"`
	MaxBookingDistance  *float64            `json:"max_booking_distance"`
	DeliveryPartnerName *string             `json:"delivery_partner_name"`
}

// NearbyShopsRequest ranks around lat/lng when both are given, otherwise
// around the caller's saved location.
type NearbyShopsRequest struct {
	Lat          *float64 `form:"lat" binding:"required_with=Lng"`
	Lng          *float64 `form:"lng" binding:"required_with=Lat"`
	Category     string   `form:"category"`
	BusinessType string   `form:"business_type" binding:"omitempty,oneof=RETAIL SERVICE"`
	Search       string   `form:"search"`
}

type ShopResponse struct {
	ID                  uuid.UUID          `json:"id"`
	OwnerID             uuid.UUID          `json:"owner_id"`
	Name                string             `json:"name"`
	Category            string             `json:"category"`
	BusinessType        model.BusinessType `json:"business_type"`
	Description         string             `json:"description"`
	ImageURL            string             `json:"image_url"`
	OwnerName           string             `json:"owner_name"`
	Phone               string             `json:"phone"`
	Location            model.Location     `json:"location"`
	OpeningTime         string             `json:"opening_time"`
	ClosingTime         string             `json:"closing_time"`
	IsPickupAvailable   bool               `json:"is_pickup_available"`
	IsDeliveryAvailable bool               `json:"is_delivery_available"`
	IsCodAvailable      bool               `json:"is_cod_available"`
	UpiID               string             `json:"upi_id,omitempty"`
	RefundPolicy        model.RefundPolicy `json:"refund_policy"`
	Rating              float64            `json:"rating"`
	RatingCount         int                `json:"rating_count"`
	ExperienceYears     int                `json:"experience_years,omitempty"`
	VisitingCharge      int64              `json:"visiting_charge,omitempty"`
	PortfolioURLs       []string           `json:"portfolio_urls,omitempty"`
	MaxBookingDistance  float64            `json:"max_booking_distance,omitempty"`
	IsVerified          bool               `json:"is_verified"`
	DeliveryPartnerName string             `json:"delivery_partner_name,omitempty"`
	IsOpen              bool               `json:"is_open"`
}

type ShopListingResponse struct {
	ShopResponse
	DistanceKm float64           `json:"distance_km"`
	Products   []ProductResponse `json:"products"`
}

type ShopDetailResponse struct {
	Shop     ShopResponse      `json:"shop"`
	Products []ProductResponse `json:"products"`
}

// --- Product ---

type CreateProductRequest struct {
	Name            string `json:"name" binding:"required"`
	NameBn          string `json:"name_bn"`
	Description     string `json:"description"`
	Price           int64  `json:"price" binding:"min=0"`
	Category        string `json:"category"`
	Stock           int    `json:"stock" binding:"min=0"`
	ImageURL        string `json:"image_url"`
	EnableBooking   bool   `json:"enable_booking"`
	DurationMinutes *int   `json:"duration_minutes" binding:"omitempty,min=1"`
}

type UpdateProductRequest struct {
	Name            *string `json:"name"`
	NameBn          *string `json:"name_bn"`
	Description     *string `json:"description"`
	Price           *int64  `json:"price" binding:"omitempty,min=0"`
	Category        *string `json:"category"`
	Stock           *int    `json:"stock" binding:"omitempty,min=0"`
	ImageURL        *string `json:"image_url"`
	EnableBooking   *bool   `json:"enable_booking"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=1"`
}

type ProductResponse struct {
	ID              uuid.UUID `json:"id"`
	ShopID          uuid.UUID `json:"shop_id"`
	Name            string    `json:"name"`
	NameBn          string    `json:"name_bn,omitempty"`
	Description     string    `json:"description"`
	Price           int64     `json:"price"`
	Category        string    `json:"category"`
	Stock           int       `json:"stock"`
	ImageURL        string    `json:"image_url"`
	EnableBooking   bool      `json:"enable_booking"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=99"`
	Replace   bool      `json:"replace"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=99"`
}

type CartResponse struct {
	ID     uuid.UUID          `json:"id"`
	ShopID *uuid.UUID         `json:"shop_id"`
	Items  []CartItemResponse `json:"items"`
	Total  int64              `json:"total"`
}

type CartItemResponse struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	Name            string    `json:"name"`
	Price           int64     `json:"price"`
	Quantity        int       `json:"quantity"`
	EnableBooking   bool      `json:"enable_booking"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
}

// --- Order ---

type CheckoutRequest struct {
	CustomerName    string              `json:"customer_name"`
	CustomerMobile  string              `json:"customer_mobile"`
	DeliveryAddress string              `json:"delivery_address"`
	DeliveryMode    model.DeliveryMode  `json:"delivery_mode" binding:"omitempty,oneof=PICKUP DELIVERY"`
	PaymentMethod   model.PaymentMethod `json:"payment_method" binding:"required,oneof=CASH UPI QR"`
	AdvanceAmount   int64               `json:"advance_amount" binding:"min=0"`
	VisitDate       string              `json:"visit_date"`
	VisitTime       string              `json:"visit_time"`
	Notes           string              `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

type OrderListRequest struct {
	Tab string `form:"tab,default=ALL" binding:"oneof=ALL PENDING BOOKING"`
}

type BookingResponse struct {
	VisitDate string `json:"visit_date"`
	VisitTime string `json:"visit_time"`
	Notes     string `json:"notes,omitempty"`
	OTP       string `json:"otp"`
}

type OrderResponse struct {
	ID              uuid.UUID             `json:"id"`
	ShopID          uuid.UUID             `json:"shop_id"`
	ShopName        string                `json:"shop_name"`
	CustomerID      uuid.UUID             `json:"customer_id"`
	CustomerName    string                `json:"customer_name"`
	CustomerMobile  string                `json:"customer_mobile"`
	Items           []OrderItemResponse   `json:"items"`
	TotalAmount     int64                 `json:"total_amount"`
	Status          model.OrderStatus     `json:"status"`
	Kind            model.FulfillmentKind `json:"fulfillment_kind"`
	PaymentMethod   model.PaymentMethod   `json:"payment_method"`
	PaymentStatus   model.PaymentStatus   `json:"payment_status"`
	AdvanceAmount   int64                 `json:"advance_amount"`
	IsDelivery      bool                  `json:"is_delivery"`
	DeliveryAddress string                `json:"delivery_address,omitempty"`
	Booking         *BookingResponse      `json:"booking_details,omitempty"`
	IsFakeFlagged   bool                  `json:"is_fake_flagged"`
	TimeLeft        string                `json:"time_left,omitempty"`
	NextStatuses    []model.OrderStatus   `json:"next_statuses"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type OrderItemResponse struct {
	ProductID       uuid.UUID `json:"product_id"`
	Name            string    `json:"name"`
	Price           int64     `json:"price"`
	Quantity        int       `json:"quantity"`
	EnableBooking   bool      `json:"enable_booking"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
}

type OrderListResponse struct {
	Orders           []OrderResponse `json:"orders"`
	Total            int             `json:"total"`
	PollAfterSeconds int             `json:"poll_after_seconds,omitempty"`
}

type NotificationListResponse struct {
	Notifications    []model.Notification `json:"notifications"`
	PollAfterSeconds int                  `json:"poll_after_seconds"`
}

// --- Review ---

type CreateReviewRequest struct {
	OrderID *uuid.UUID `json:"order_id"`
	Rating  int        `json:"rating" binding:"required,min=1,max=5"`
	Comment string     `json:"comment"`
}

type ReviewResponse struct {
	ID        uuid.UUID  `json:"id"`
	ShopID    uuid.UUID  `json:"shop_id"`
	UserID    uuid.UUID  `json:"user_id"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	UserName  string     `json:"user_name"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
}

type AddReviewResponse struct {
	Review      ReviewResponse `json:"review"`
	Rating      float64        `json:"rating"`
	RatingCount int            `json:"rating_count"`
}

// --- Feed ---

type FeedRequest struct {
	Lat    *float64 `form:"lat" binding:"required_with=Lng"`
	Lng    *float64 `form:"lng" binding:"required_with=Lat"`
	Search string   `form:"search"`
}

type CreatePostRequest struct {
	Type         model.PostType `json:"type" binding:"omitempty,oneof=POSTER TEXT_OFFER VIDEO_SCRIPT"`
	Content      string         `json:"content"`
	SummaryBn    string         `json:"summary_bn"`
	ImageURL     string         `json:"image_url"`
	OfferDetails string         `json:"offer_details"`
	Channels     []string       `json:"channels"`
	ExpiresAt    *time.Time     `json:"expires_at"`
	ProductID    *uuid.UUID     `json:"product_id"`
}

type PostResponse struct {
	ID           uuid.UUID      `json:"id"`
	ShopID       uuid.UUID      `json:"shop_id"`
	Type         model.PostType `json:"type"`
	Content      string         `json:"content"`
	SummaryBn    string         `json:"summary_bn,omitempty"`
	ImageURL     string         `json:"image_url,omitempty"`
	OfferDetails string         `json:"offer_details,omitempty"`
	Channels     []string       `json:"channels,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
}

type FeedItemResponse struct {
	Post       PostResponse `json:"post"`
	ShopID     uuid.UUID    `json:"shop_id"`
	ShopName   string       `json:"shop_name"`
	ShopImage  string       `json:"shop_image,omitempty"`
	DistanceKm float64      `json:"distance_km"`
}

// --- Assist ---

type VoiceGuidanceRequest struct {
	Context string `form:"context" binding:"required"`
}
