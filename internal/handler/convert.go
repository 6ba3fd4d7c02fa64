package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/flicky/haatbazar-api/internal/dto"
	"github.com/flicky/haatbazar-api/internal/geo"
	"github.com/flicky/haatbazar-api/internal/model"
	"github.com/flicky/haatbazar-api/internal/service"
)

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Mobile:       u.Mobile,
		Role:         u.Role,
		ShopID:       u.ShopID,
		Location:     u.Location,
		SavedAddress: u.SavedAddress,
	}
}

func toShopResponse(s *model.Shop, now time.Time) dto.ShopResponse {
	return dto.ShopResponse{
		ID:                  s.ID,
		OwnerID:             s.OwnerID,
		Name:                s.Name,
		Category:            s.Category,
		BusinessType:        s.BusinessType,
		Description:         s.Description,
		ImageURL:            s.ImageURL,
		OwnerName:           s.OwnerName,
		Phone:               s.Phone,
		Location:            model.Location{Lat: s.Lat, Lng: s.Lng, Label: s.Address},
		OpeningTime:         s.OpeningTime,
		ClosingTime:         s.ClosingTime,
		IsPickupAvailable:   s.IsPickupAvailable,
		IsDeliveryAvailable: s.IsDeliveryAvailable,
		IsCodAvailable:      s.IsCodAvailable,
		UpiID:               s.UpiID,
		RefundPolicy:        s.RefundPolicy,
		Rating:              s.Rating,
		RatingCount:         s.RatingCount,
		ExperienceYears:     s.ExperienceYears,
		VisitingCharge:      s.VisitingCharge,
		PortfolioURLs:       s.PortfolioURLs,
		MaxBookingDistance:  s.MaxBookingDistance,
		IsVerified:          s.IsVerified,
		DeliveryPartnerName: s.DeliveryPartnerName,
		IsOpen:              geo.IsOpen(s.OpeningTime, s.ClosingTime, now),
	}
}

func toListingResponse(l service.ShopListing, now time.Time) dto.ShopListingResponse {
	resp := dto.ShopListingResponse{
		ShopResponse: toShopResponse(&l.Shop, now),
		DistanceKm:   l.DistanceKm,
		Products:     toProductResponses(l.Products),
	}
	resp.IsOpen = l.IsOpen
	return resp
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:              p.ID,
		ShopID:          p.ShopID,
		Name:            p.Name,
		NameBn:          p.NameBn,
		Description:     p.Description,
		Price:           p.Price,
		Category:        p.Category,
		Stock:           p.Stock,
		ImageURL:        p.ImageURL,
		EnableBooking:   p.EnableBooking,
		DurationMinutes: p.DurationMinutes,
		CreatedAt:       p.CreatedAt,
	}
}

func toProductResponses(products []model.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out
}

func toCartResponse(cart *model.Cart) dto.CartResponse {
	resp := dto.CartResponse{ID: cart.ID, Items: make([]dto.CartItemResponse, 0, len(cart.Items))}
	if shopID := cart.ShopID(); shopID != uuid.Nil {
		resp.ShopID = &shopID
	}
	for _, it := range cart.Items {
		resp.Items = append(resp.Items, dto.CartItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			Name:            it.Name,
			Price:           it.Price,
			Quantity:        it.Quantity,
			EnableBooking:   it.EnableBooking,
			DurationMinutes: it.DurationMinutes,
		})
		resp.Total += it.Price * int64(it.Quantity)
	}
	return resp
}

func toOrderResponse(v *service.OrderView) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:       it.ProductID,
			Name:            it.Name,
			Price:           it.Price,
			Quantity:        it.Quantity,
			EnableBooking:   it.EnableBooking,
			DurationMinutes: it.DurationMinutes,
		})
	}
	resp := dto.OrderResponse{
		ID:              v.ID,
		ShopID:          v.ShopID,
		ShopName:        v.ShopName,
		CustomerID:      v.CustomerID,
		CustomerName:    v.CustomerName,
		CustomerMobile:  v.CustomerMobile,
		Items:           items,
		TotalAmount:     v.TotalAmount,
		Status:          v.Status,
		Kind:            v.Kind,
		PaymentMethod:   v.PaymentMethod,
		PaymentStatus:   v.PaymentStatus,
		AdvanceAmount:   v.AdvanceAmount,
		IsDelivery:      v.IsDelivery,
		DeliveryAddress: v.DeliveryAddress,
		IsFakeFlagged:   v.IsFakeFlagged,
		TimeLeft:        v.TimeLeft,
		NextStatuses:    v.Next,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
	if resp.NextStatuses == nil {
		resp.NextStatuses = []model.OrderStatus{}
	}
	if b := v.Booking; b != nil {
		resp.Booking = &dto.BookingResponse{VisitDate: b.VisitDate, VisitTime: b.VisitTime, Notes: b.Notes, OTP: b.OTP}
	}
	return resp
}

func toOrderResponses(views []service.OrderView) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(views))
	for i := range views {
		out = append(out, toOrderResponse(&views[i]))
	}
	return out
}

func toReviewResponse(r *model.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:        r.ID,
		ShopID:    r.ShopID,
		UserID:    r.UserID,
		OrderID:   r.OrderID,
		UserName:  r.UserName,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func toPostResponse(p *model.MarketingPost) dto.PostResponse {
	return dto.PostResponse{
		ID:           p.ID,
		ShopID:       p.ShopID,
		Type:         p.Type,
		Content:      p.Content,
		SummaryBn:    p.SummaryBn,
		ImageURL:     p.ImageURL,
		OfferDetails: p.OfferDetails,
		Channels:     p.Channels,
		CreatedAt:    p.CreatedAt,
		ExpiresAt:    p.ExpiresAt,
	}
}
