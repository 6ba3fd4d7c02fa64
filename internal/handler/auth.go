package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/haatbazar-api/internal/dto"
	"github.com/flicky/haatbazar-api/internal/middleware"
	"github.com/flicky/haatbazar-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:               req.Name,
		Mobile:             req.Mobile,
		Role:               req.Role,
		Location:           req.Location,
		SavedAddress:       req.SavedAddress,
		UseDefaultLocation: req.UseDefaultLocation,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AuthResponse{Token: sess.Token, User: toUserResponse(sess.User)})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.authService.Login(c.Request.Context(), req.Mobile)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{Token: sess.Token, User: toUserResponse(sess.User)})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Profile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), service.ProfileInput{
		Name: req.Name, SavedAddress: req.SavedAddress, Location: req.Location,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
