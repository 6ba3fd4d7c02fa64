package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/haatbazar-api/internal/dto"
	"github.com/flicky/haatbazar-api/internal/middleware"
	"github.com/flicky/haatbazar-api/internal/service"
)

type FeedHandler struct {
	feed    *service.FeedService
	catalog *service.CatalogService
}

func NewFeedHandler(feed *service.FeedService, catalog *service.CatalogService) *FeedHandler {
	return &FeedHandler{feed: feed, catalog: catalog}
}

func (h *FeedHandler) Nearby(c *gin.Context) {
	var req dto.FeedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	origin := h.catalog.Origin(c.Request.Context(), middleware.GetUserID(c), req.Lat, req.Lng)
	items, err := h.feed.Nearby(c.Request.Context(), origin.Lat, origin.Lng, req.Search)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]dto.FeedItemResponse, 0, len(items))
	for i := range items {
		it := &items[i]
		out = append(out, dto.FeedItemResponse{
			Post:       toPostResponse(&it.Post),
			ShopID:     it.Shop.ID,
			ShopName:   it.Shop.Name,
			ShopImage:  it.Shop.ImageURL,
			DistanceKm: it.DistanceKm,
		})
	}
	c.JSON(http.StatusOK, gin.H{"posts": out, "total": len(out)})
}

func (h *FeedHandler) Publish(c *gin.Context) {
	var req dto.CreatePostRequest
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

	post, err := h.feed.Publish(c.Request.Context(), ownerID, shop.ID, service.PostInput{
		Type:         req.Type,
		Content:      req.Content,
		SummaryBn:    req.SummaryBn,
		ImageURL:     req.ImageURL,
		OfferDetails: req.OfferDetails,
		Channels:     req.Channels,
		ExpiresAt:    req.ExpiresAt,
		ProductID:    req.ProductID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPostResponse(post))
}
