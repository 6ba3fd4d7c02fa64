package model

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusReady          OrderStatus = "READY"
	OrderStatusDispatched     OrderStatus = "DISPATCHED"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusAccepted       OrderStatus = "ACCEPTED"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusRejected       OrderStatus = "REJECTED"
)

// FulfillmentKind is fixed when the order is created.
type FulfillmentKind string

const (
	FulfillmentPickup       FulfillmentKind = "PICKUP"
	FulfillmentHomeDelivery FulfillmentKind = "HOME_DELIVERY"
	FulfillmentServiceVisit FulfillmentKind = "SERVICE_VISIT"
)

type DeliveryMode string

const (
	DeliveryModePickup   DeliveryMode = "PICKUP"
	DeliveryModeDelivery DeliveryMode = "DELIVERY"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentUPI  PaymentMethod = "UPI"
	PaymentQR   PaymentMethod = "QR"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

type BookingDetails struct {
	VisitDate string
	VisitTime string
	Notes     string
	OTP       string
}

type Order struct {
	ID              uuid.UUID
	ShopID          uuid.UUID
	CustomerID      uuid.UUID
	CustomerName    string
	CustomerMobile  string
	Items           []OrderItem
	TotalAmount     int64
	Status          OrderStatus
	Kind            FulfillmentKind
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	AdvanceAmount   int64
	IsDelivery      bool
	DeliveryAddress string
	Booking         *BookingDetails
	IsFakeFlagged   bool
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsBooking reports whether the order is a scheduled visit or slot.
func (o *Order) IsBooking() bool { return o.Booking != nil }

// OrderItem is an immutable snapshot of a cart line.
type OrderItem struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	Name            string
	Price           int64
	Quantity        int
	EnableBooking   bool
	DurationMinutes *int
}

// Total sums price times quantity over the items.
func Total(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}
