package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flicky/haatbazar-api/internal/dto"
	"github.com/flicky/haatbazar-api/internal/middleware"
	"github.com/flicky/haatbazar-api/internal/model"
	"github.com/flicky/haatbazar-api/internal/service"
)

// ShopHandler serves the public directory and the owner's shop and catalog.
type ShopHandler struct {
	catalog *service.CatalogService
}

func NewShopHandler(catalog *service.CatalogService) *ShopHandler {
	return &ShopHandler{catalog: catalog}
}

func (h *ShopHandler) ListNearby(c *gin.Context) {
	var req dto.NearbyShopsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	origin := h.catalog.Origin(c.Request.Context(), middleware.GetUserID(c), req.Lat, req.Lng)
	listings, err := h.catalog.ListNearbyShops(c.Request.Context(), service.NearbyQuery{
		Lat:          origin.Lat,
		Lng:          origin.Lng,
		Category:     req.Category,
		BusinessType: model.BusinessType(req.BusinessType),
		Search:       req.Search,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	now := time.Now()
	out := make([]dto.ShopListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l, now))
	}
	c.JSON(http.StatusOK, gin.H{"shops": out, "total": len(out)})
}

func (h *ShopHandler) GetShop(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	shop, err := h.catalog.GetShop(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	products, err := h.catalog.ListProductsForShop(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ShopDetailResponse{
		Shop:     toShopResponse(shop, time.Now()),
		Products: toProductResponses(products),
	})
}

func (h *ShopHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ShopHandler) RegisterShop(c *gin.Context) {
	var req dto.ShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shop, err := h.catalog.RegisterShop(c.Request.Context(), middleware.GetUserID(c), service.ShopInput{
		Name:                req.Name,
		Category:            req.Category,
		BusinessType:        req.BusinessType,
		Description:         req.Description,
		ImageURL:            req.ImageURL,
		Phone:               req.Phone,
		Location:            req.Location,
		Address:             req.Address,
		OpeningTime:         req.OpeningTime,
		ClosingTime:         req.ClosingTime,
		IsPickupAvailable:   req.IsPickupAvailable,
		IsDeliveryAvailable: req.IsDeliveryAvailable,
		IsCodAvailable:      req.IsCodAvailable,
		UpiID:               req.UpiID,
		RefundPolicy:        req.RefundPolicy,
		ExperienceYears:     req.ExperienceYears,
		VisitingCharge:      req.VisitingCharge,
		PortfolioURLs:       req.PortfolioURLs,
		MaxBookingDistance:  req.MaxBookingDistance,
		DeliveryPartnerName: req.DeliveryPartnerName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toShopResponse(shop, time.Now()))
}

func (h *ShopHandler) MyShop(c *gin.Context) {
	shop, err := h.catalog.ShopForOwner(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShopResponse(shop, time.Now()))
}

func (h *ShopHandler) UpdateMyShop(c *gin.Context) {
	var req dto.UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ownerID := middleware.GetUserID(c)
	current, err := h.catalog.ShopForOwner(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, err)
		return
	}

	shop, err := h.catalog.UpdateShop(c.Request.Context(), ownerID, current.ID, service.ShopPatch{
		Name:                req.Name,
		Category:            req.Category,
		Description:         req.Description,
		ImageURL:            req.ImageURL,
		Phone:               req.Phone,
		Location:            req.Location,
		Address:             req.Address,
		OpeningTime:         req.OpeningTime,
		ClosingTime:         req.ClosingTime,
		IsPickupAvailable:   req.IsPickupAvailable,
		IsDeliveryAvailable: req.IsDeliveryAvailable,
		IsCodAvailable:      req.IsCodAvailable,
		UpiID:               req.UpiID,
		RefundPolicy:        req.RefundPolicy,
		ExperienceYears:     req.ExperienceYears,
		VisitingCharge:      req.VisitingCharge,
		PortfolioURLs:       req.PortfolioURLs,
		MaxBookingDistance:  req.MaxBookingDistance,
		DeliveryPartnerName: req.DeliveryPartnerName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShopResponse(shop, time.Now()))
}

func (h *ShopHandler) AddProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ownerID := middleware.GetUserID(c)
	shop, err := h.catalog.ShopForOwner(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, err)
		return
	}

	p, err := h.catalog.AddProduct(c.Request.Context(), ownerID, shop.ID, service.ProductInput{
		Name:            req.Name,
		NameBn:          req.NameBn,
		Description:     req.Description,
		Price:           req.Price,
		Category:        req.Category,
		Stock:           req.Stock,
		ImageURL:        req.ImageURL,
		EnableBooking:   req.EnableBooking,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *ShopHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.catalog.UpdateProduct(c.Request.Context(), middleware.GetUserID(c), id, service.ProductPatch{
		Name:            req.Name,
		NameBn:          req.NameBn,
		Description:     req.Description,
		Price:           req.Price,
		Category:        req.Category,
		Stock:           req.Stock,
		ImageURL:        req.ImageURL,
		EnableBooking:   req.EnableBooking,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(p))
}
