package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/haatbazar-api/internal/dto"
	"github.com/flicky/haatbazar-api/internal/middleware"
	"github.com/flicky/haatbazar-api/internal/service"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) Add(c *gin.Context) {
	shopID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, summary, err := h.reviews.AddReview(c.Request.Context(), middleware.GetUserID(c), service.ReviewInput{
		ShopID: shopID, OrderID: req.OrderID, Rating: req.Rating, Comment: req.Comment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AddReviewResponse{
		Review: toReviewResponse(review), Rating: summary.Rating, RatingCount: summary.Count,
	})
}

func (h *ReviewHandler) List(c *gin.Context) {
	shopID, ok := parseID(c, "id")
	if !ok {
		return
	}
	reviews, err := h.reviews.ListForShop(c.Request.Context(), shopID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewResponse(&reviews[i]))
	}
	c.JSON(http.StatusOK, gin.H{"reviews": out, "total": len(out)})
}
